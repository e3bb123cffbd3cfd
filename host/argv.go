package host

import (
	"fmt"

	"github.com/magnolia-os/magnolia-go/infrastructure/sim"
)

// placedArgs is an argument vector written into job memory.
type placedArgs struct {
	blocks []uintptr
	argv   uintptr
	argc   int32
}

// placeArgs copies argv into the simulated heap as NUL-terminated strings
// followed by the pointer array, as the firmware loader lays them out. A
// nil entry is stored as a null pointer.
func placeArgs(s *sim.Sim, argv [][]byte) (*placedArgs, error) {
	p := &placedArgs{argc: int32(len(argv))} //nolint:gosec // G115: bounded by heap size
	if len(argv) == 0 {
		return p, nil
	}
	mem := s.LinearMemory()

	ptrs := make([]uintptr, len(argv))
	for i, a := range argv {
		if a == nil {
			continue
		}
		addr := s.Malloc(uintptr(len(a)) + 1)
		if addr == 0 || !mem.Write(addr, append(a[:len(a):len(a)], 0)) {
			p.release(s)
			return nil, fmt.Errorf("%w: argument %d", ErrArgsTooLarge, i)
		}
		p.blocks = append(p.blocks, addr)
		ptrs[i] = addr
	}

	word := mem.WordSize()
	p.argv = s.Malloc(uintptr(len(argv)) * word)
	if p.argv == 0 {
		p.release(s)
		return nil, fmt.Errorf("%w: pointer array", ErrArgsTooLarge)
	}
	p.blocks = append(p.blocks, p.argv)
	for i, addr := range ptrs {
		mem.WriteWord(p.argv+uintptr(i)*word, addr)
	}
	return p, nil
}

// release frees the vector so that only the job's own blocks stay live.
func (p *placedArgs) release(s *sim.Sim) {
	for _, addr := range p.blocks {
		s.Free(addr)
	}
	p.blocks = nil
}
