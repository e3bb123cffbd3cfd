package entities

import "fmt"

// Layout is the size and alignment of an allocation request.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// NewLayout returns a layout, rejecting alignments that are not a power of two.
func NewLayout(size, align uintptr) (Layout, error) {
	if align == 0 || align&(align-1) != 0 {
		return Layout{}, fmt.Errorf("alignment %d is not a power of two", align)
	}
	return Layout{Size: size, Align: align}, nil
}

func (l Layout) String() string {
	return fmt.Sprintf("%d bytes (align %d)", l.Size, l.Align)
}
