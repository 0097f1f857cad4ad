// Package image recognizes and parses the binary image formats the kernel can
// load into a fresh address space.
//
// Two formats are recognized by their 4-byte magic at offset 0:
//
//   - 0x7F 'E' 'L' 'F': a standard ELF executable. The program header table
//     drives loading - each PT_LOAD segment contributes its file bytes at its
//     virtual address, and the entry point comes from the ELF header.
//   - 0x7F 'B' 'I' 'N': a flat image. The whole buffer is copied verbatim to
//     the base of the code region and execution starts at that base.
//
// Any other leading bytes are rejected with ErrBadMagic. Segment addresses
// and the entry point are offsets relative to wherever the loader places the
// image; the image itself is position-blind.
package image

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
)

var (
	// ELFMagic is the four-byte signature of an ELF executable.
	ELFMagic = []byte{0x7F, 'E', 'L', 'F'}

	// BINMagic is the four-byte signature of a flat binary image.
	BINMagic = []byte{0x7F, 'B', 'I', 'N'}
)

var (
	// ErrBadMagic indicates the buffer starts with neither recognized magic.
	ErrBadMagic = errors.New("image: unrecognized format magic")

	// ErrMalformed indicates a recognized magic with an unparseable body.
	ErrMalformed = errors.New("image: malformed image")
)

// Segment is one loadable chunk of an image: raw bytes to be copied at Addr
// bytes past the code region base.
type Segment struct {
	Addr uintptr
	Data []byte
}

// Image is a parsed binary image ready for loading.
type Image struct {
	// Entry is the execution start, relative to the code region base.
	Entry uintptr

	// Segments are the loadable chunks in file order.
	Segments []Segment
}

// Parse inspects the magic at offset 0 and parses the buffer accordingly.
func Parse(bin []byte) (*Image, error) {
	switch {
	case bytes.HasPrefix(bin, ELFMagic):
		return parseELF(bin)
	case bytes.HasPrefix(bin, BINMagic):
		// Flat copy, implicit entry at the region base.
		return &Image{
			Entry:    0,
			Segments: []Segment{{Addr: 0, Data: bin}},
		}, nil
	default:
		return nil, ErrBadMagic
	}
}

// parseELF extracts the entry point and the PT_LOAD segments.
func parseELF(bin []byte) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(bin))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()

	img := &Image{Entry: uintptr(f.Entry)}
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data, err := io.ReadAll(prog.Open())
		if err != nil {
			return nil, fmt.Errorf("%w: segment at %#x: %v", ErrMalformed, prog.Vaddr, err)
		}
		img.Segments = append(img.Segments, Segment{
			Addr: uintptr(prog.Vaddr),
			Data: data,
		})
	}
	return img, nil
}
