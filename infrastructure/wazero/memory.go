package wazero

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// PageSize is the size of one linear memory page.
const PageSize = 65536

// MemoryConfig holds configuration for a simulated memory.
type MemoryConfig struct {
	// ModuleName names the instantiated module (default: "magnolia_job").
	ModuleName string

	// InitialPages is the size at instantiation (default: 1).
	InitialPages uint32

	// MaxPages caps growth (default: 16).
	MaxPages uint32

	// WordSize is the stored pointer width, 4 or 8 (default: 4).
	WordSize uintptr
}

// MemoryOption configures a Memory.
type MemoryOption func(*MemoryConfig)

// WithModuleName sets the module name.
func WithModuleName(name string) MemoryOption {
	return func(c *MemoryConfig) {
		c.ModuleName = name
	}
}

// WithInitialPages sets the initial size in pages.
func WithInitialPages(pages uint32) MemoryOption {
	return func(c *MemoryConfig) {
		c.InitialPages = pages
	}
}

// WithMaxPages sets the growth limit in pages.
func WithMaxPages(pages uint32) MemoryOption {
	return func(c *MemoryConfig) {
		c.MaxPages = pages
	}
}

// WithWordSize sets the width of stored pointers.
func WithWordSize(size uintptr) MemoryOption {
	return func(c *MemoryConfig) {
		c.WordSize = size
	}
}

// defaultMemoryConfig returns the default memory configuration.
func defaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		ModuleName:   "magnolia_job",
		InitialPages: 1,
		MaxPages:     16,
		WordSize:     4,
	}
}

// Memory is a job address space in a wazero linear memory.
type Memory struct {
	runtime wazero.Runtime
	mem     api.Memory
	cfg     MemoryConfig
}

var _ ports.Memory = (*Memory)(nil)

// NewMemory instantiates a fresh linear memory.
func NewMemory(ctx context.Context, opts ...MemoryOption) (*Memory, error) {
	cfg := defaultMemoryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.WordSize != 4 && cfg.WordSize != 8:
		return nil, fmt.Errorf("wazero: word size %d not supported", cfg.WordSize)
	case cfg.InitialPages == 0 || cfg.MaxPages < cfg.InitialPages || cfg.MaxPages > 65536:
		return nil, fmt.Errorf("wazero: invalid page limits %d..%d", cfg.InitialPages, cfg.MaxPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx,
		wazero.NewRuntimeConfig().WithMemoryLimitPages(cfg.MaxPages))

	mod, err := runtime.InstantiateWithConfig(ctx,
		memoryModule(cfg.InitialPages, cfg.MaxPages),
		wazero.NewModuleConfig().WithName(cfg.ModuleName))
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("wazero: failed to instantiate memory module: %w", err)
	}

	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("wazero: module %q exports no memory", cfg.ModuleName)
	}
	return &Memory{runtime: runtime, mem: mem, cfg: cfg}, nil
}

// Close releases the runtime and its memory.
func (m *Memory) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}

// Size returns the current size in bytes.
func (m *Memory) Size() uint32 {
	return m.mem.Size()
}

// Pages returns the current size in pages.
func (m *Memory) Pages() uint32 {
	return m.mem.Size() / PageSize
}

// MaxPages returns the growth limit.
func (m *Memory) MaxPages() uint32 {
	return m.cfg.MaxPages
}

// Grow adds delta pages and returns the previous size in pages. It fails
// once the limit would be exceeded. Borrowed views taken before a grow
// must not be used after it.
func (m *Memory) Grow(delta uint32) (uint32, bool) {
	return m.mem.Grow(delta)
}

// WordSize implements ports.Memory.
func (m *Memory) WordSize() uintptr {
	return m.cfg.WordSize
}

// ReadWord implements ports.Memory.
func (m *Memory) ReadWord(addr uintptr) (uintptr, bool) {
	off, ok := offset(addr)
	if !ok {
		return 0, false
	}
	if m.cfg.WordSize == 8 {
		v, ok := m.mem.ReadUint64Le(off)
		return uintptr(v), ok
	}
	v, ok := m.mem.ReadUint32Le(off)
	return uintptr(v), ok
}

// WriteWord implements ports.Memory.
func (m *Memory) WriteWord(addr uintptr, v uintptr) bool {
	off, ok := offset(addr)
	if !ok {
		return false
	}
	if m.cfg.WordSize == 8 {
		return m.mem.WriteUint64Le(off, uint64(v))
	}
	if uint64(v) > math.MaxUint32 {
		return false
	}
	return m.mem.WriteUint32Le(off, uint32(v))
}

// Slice implements ports.Memory.
func (m *Memory) Slice(addr, n uintptr) ([]byte, bool) {
	off, ok := offset(addr)
	if !ok || uint64(n) > math.MaxUint32 {
		return nil, false
	}
	b, ok := m.mem.Read(off, uint32(n))
	if !ok {
		return nil, false
	}
	return b[:n:n], true
}

// CString implements ports.Memory.
func (m *Memory) CString(addr uintptr) ([]byte, bool) {
	off, ok := offset(addr)
	if !ok || off >= m.mem.Size() {
		return nil, false
	}
	rest, ok := m.mem.Read(off, m.mem.Size()-off)
	if !ok {
		return nil, false
	}
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return nil, false
	}
	return rest[:end:end], true
}

// Write copies p into memory at addr.
func (m *Memory) Write(addr uintptr, p []byte) bool {
	off, ok := offset(addr)
	if !ok {
		return false
	}
	return m.mem.Write(off, p)
}

func offset(addr uintptr) (uint32, bool) {
	if addr == 0 || uint64(addr) > math.MaxUint32 {
		return 0, false
	}
	return uint32(addr), true //nolint:gosec // G115: bounds checked above
}
