package entities

// DefaultAbortStatus is the exit status Magnolia reports for abort().
const DefaultAbortStatus int32 = 134

// HostProfile captures the numeric contract of one host build: word size,
// open-flag bits, error numbering and abort status. The simulator also reads
// its heap bounds from here.
type HostProfile struct {
	Name        string     `yaml:"name" json:"name" validate:"required"`
	Errno       ErrnoTable `yaml:"errno" json:"errno" validate:"required,min=1,dive"`
	Flags       OpenFlags  `yaml:"open_flags" json:"open_flags"`
	Heap        HeapLimits `yaml:"heap" json:"heap"`
	WordSize    int        `yaml:"word_size" json:"word_size" validate:"oneof=4 8" jsonschema:"enum=4,enum=8"`
	AbortStatus int32      `yaml:"abort_status" json:"abort_status" validate:"ne=0"`
}

// HeapLimits bounds the simulated job heap, in 64 KiB wasm pages.
type HeapLimits struct {
	InitialPages uint32 `yaml:"initial_pages" json:"initial_pages" validate:"gte=1" jsonschema:"minimum=1"`
	MaxPages     uint32 `yaml:"max_pages" json:"max_pages" validate:"gtefield=InitialPages,lte=65536" jsonschema:"minimum=1,maximum=65536"`
}
