package image

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	elfHeaderSize = 64
	progEntrySize = 56
)

// buildELF assembles a minimal ELF64 executable with one PT_LOAD segment per
// payload, laid out back to back after the headers.
func buildELF(t *testing.T, entry uint64, segs []Segment) []byte {
	t.Helper()

	var buf bytes.Buffer
	le := binary.LittleEndian

	phoff := uint64(elfHeaderSize)
	dataOff := phoff + uint64(len(segs))*progEntrySize

	// ELF header
	ident := [16]byte{0x7F, 'E', 'L', 'F', 2 /* 64-bit */, 1 /* LE */, 1 /* current */}
	buf.Write(ident[:])
	binary.Write(&buf, le, uint16(2))    // e_type: ET_EXEC
	binary.Write(&buf, le, uint16(0x3E)) // e_machine: x86-64
	binary.Write(&buf, le, uint32(1))    // e_version
	binary.Write(&buf, le, entry)        // e_entry
	binary.Write(&buf, le, phoff)        // e_phoff
	binary.Write(&buf, le, uint64(0))    // e_shoff
	binary.Write(&buf, le, uint32(0))    // e_flags
	binary.Write(&buf, le, uint16(elfHeaderSize))
	binary.Write(&buf, le, uint16(progEntrySize))
	binary.Write(&buf, le, uint16(len(segs))) // e_phnum
	binary.Write(&buf, le, uint16(0))         // e_shentsize
	binary.Write(&buf, le, uint16(0))         // e_shnum
	binary.Write(&buf, le, uint16(0))         // e_shstrndx

	// Program headers
	off := dataOff
	for _, seg := range segs {
		binary.Write(&buf, le, uint32(1)) // p_type: PT_LOAD
		binary.Write(&buf, le, uint32(5)) // p_flags: R+X
		binary.Write(&buf, le, off)
		binary.Write(&buf, le, uint64(seg.Addr)) // p_vaddr
		binary.Write(&buf, le, uint64(seg.Addr)) // p_paddr
		binary.Write(&buf, le, uint64(len(seg.Data)))
		binary.Write(&buf, le, uint64(len(seg.Data)))
		binary.Write(&buf, le, uint64(0x1000)) // p_align
		off += uint64(len(seg.Data))
	}
	for _, seg := range segs {
		buf.Write(seg.Data)
	}
	return buf.Bytes()
}

// Test_ParseELF verifies entry point and loadable segments come back.
func Test_ParseELF(t *testing.T) {
	want := []Segment{
		{Addr: 0x100, Data: []byte("code bytes here")},
		{Addr: 0x800, Data: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
	}
	bin := buildELF(t, 0x120, want)

	img, err := Parse(bin)
	require.NoError(t, err)
	require.Equal(t, uintptr(0x120), img.Entry)
	require.Len(t, img.Segments, 2)
	for i, seg := range img.Segments {
		require.Equal(t, want[i].Addr, seg.Addr)
		require.Equal(t, want[i].Data, seg.Data)
	}
}

// Test_ParseFlat verifies the flat format: one segment at the base, implicit
// entry at the base.
func Test_ParseFlat(t *testing.T) {
	bin := append([]byte{0x7F, 'B', 'I', 'N'}, []byte("flat payload")...)

	img, err := Parse(bin)
	require.NoError(t, err)
	require.Zero(t, img.Entry)
	require.Len(t, img.Segments, 1)
	require.Zero(t, img.Segments[0].Addr)
	require.Equal(t, bin, img.Segments[0].Data, "the whole buffer is copied verbatim")
}

// Test_RejectUnknownMagic verifies anything else is refused.
func Test_RejectUnknownMagic(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{0x7F},
		[]byte("MZ482910"),
		{0x7F, 'E', 'L', 'Z', 0, 0},
		[]byte("#!/bin/sh\n"),
	}
	for _, bin := range cases {
		_, err := Parse(bin)
		require.ErrorIs(t, err, ErrBadMagic)
	}
}

// Test_MalformedELF verifies a valid magic with a garbage body reports
// ErrMalformed rather than a raw parser error.
func Test_MalformedELF(t *testing.T) {
	bin := append([]byte{0x7F, 'E', 'L', 'F'}, bytes.Repeat([]byte{0xFF}, 16)...)

	_, err := Parse(bin)
	require.ErrorIs(t, err, ErrMalformed)
}
