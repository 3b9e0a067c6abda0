// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziplite

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/svaarala/lowzip/flate"
)

// entrySpec describes one archive member for buildArchive to lay out,
// mirroring the fields test_lowzip.c's driver would set up by hand before
// calling into the library.
type entrySpec struct {
	name              string
	method            uint16
	data              []byte // the on-disk (compressed) bytes
	uncompressedSize  uint32
	crc32             uint32
	hasDataDescriptor bool
	descriptorHasSig  bool
}

// storedDeflateBlock returns a raw DEFLATE stream consisting of a single
// final stored block carrying payload, valid input for method=DEFLATE
// even though the block itself performs no compression.
func storedDeflateBlock(payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x01) // BFINAL=1, BTYPE=0, remaining bits zero padding
	n := uint16(len(payload))
	binary.Write(&buf, binary.LittleEndian, n)
	binary.Write(&buf, binary.LittleEndian, ^n)
	buf.Write(payload)
	return buf.Bytes()
}

// buildArchive assembles a minimal, valid ZIP archive (local headers +
// data [+ data descriptors] followed by a central directory and EOCD) and
// returns its bytes along with a ReadFunc over them.
func buildArchive(t *testing.T, entries []entrySpec, comment []byte) ([]byte, flate.ReadFunc) {
	t.Helper()
	var buf bytes.Buffer
	localOffsets := make([]uint32, len(entries))

	for i, e := range entries {
		localOffsets[i] = uint32(buf.Len())
		binary.Write(&buf, binary.LittleEndian, uint32(sigLocalHeader))
		binary.Write(&buf, binary.LittleEndian, uint16(20)) // version needed
		var flags uint16
		if e.hasDataDescriptor {
			flags |= 0x8
		}
		binary.Write(&buf, binary.LittleEndian, flags)
		binary.Write(&buf, binary.LittleEndian, e.method)
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // mod time
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // mod date

		// Per the local-header field layout this package reads (sizes at
		// +18/+22, CRC at +14), only the CRC is genuinely unknown when
		// bit 3 is set; a real writer still commits to the sizes. The
		// CRC is zeroed here to prove Extract truly consults the
		// descriptor rather than the (wrong) local-header value.
		lfhCRC := e.crc32
		if e.hasDataDescriptor {
			lfhCRC = 0
		}
		binary.Write(&buf, binary.LittleEndian, lfhCRC)
		binary.Write(&buf, binary.LittleEndian, uint32(len(e.data)))
		binary.Write(&buf, binary.LittleEndian, e.uncompressedSize)
		binary.Write(&buf, binary.LittleEndian, uint16(len(e.name)))
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // extra length
		buf.WriteString(e.name)
		buf.Write(e.data)

		if e.hasDataDescriptor {
			if e.descriptorHasSig {
				binary.Write(&buf, binary.LittleEndian, uint32(sigDataDescriptor))
			}
			binary.Write(&buf, binary.LittleEndian, e.crc32)
			binary.Write(&buf, binary.LittleEndian, uint32(len(e.data)))
			binary.Write(&buf, binary.LittleEndian, e.uncompressedSize)
		}
	}

	centralDirOffset := uint32(buf.Len())
	for i, e := range entries {
		binary.Write(&buf, binary.LittleEndian, uint32(sigCentralDir))
		binary.Write(&buf, binary.LittleEndian, uint16(20)) // version made by
		binary.Write(&buf, binary.LittleEndian, uint16(20)) // version needed
		var flags uint16
		if e.hasDataDescriptor {
			flags |= 0x8
		}
		binary.Write(&buf, binary.LittleEndian, flags)
		binary.Write(&buf, binary.LittleEndian, e.method)
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // mod time
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // mod date
		binary.Write(&buf, binary.LittleEndian, e.crc32)
		binary.Write(&buf, binary.LittleEndian, uint32(len(e.data)))
		binary.Write(&buf, binary.LittleEndian, e.uncompressedSize)
		binary.Write(&buf, binary.LittleEndian, uint16(len(e.name)))
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // extra length
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // comment length
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // disk number start
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // internal attrs
		binary.Write(&buf, binary.LittleEndian, uint32(0)) // external attrs
		binary.Write(&buf, binary.LittleEndian, localOffsets[i])
		buf.WriteString(e.name)
	}
	centralDirSize := uint32(buf.Len()) - centralDirOffset

	binary.Write(&buf, binary.LittleEndian, uint32(sigEOCD))
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // disk number
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // disk with central dir
	binary.Write(&buf, binary.LittleEndian, uint16(len(entries)))
	binary.Write(&buf, binary.LittleEndian, uint16(len(entries)))
	binary.Write(&buf, binary.LittleEndian, centralDirSize)
	binary.Write(&buf, binary.LittleEndian, centralDirOffset)
	binary.Write(&buf, binary.LittleEndian, uint16(len(comment)))
	buf.Write(comment)

	data := buf.Bytes()
	return data, func(offset uint32) uint32 {
		if offset >= uint32(len(data)) {
			return flate.OOB
		}
		return uint32(data[offset])
	}
}

func TestArchiveLocateByName(t *testing.T) {
	entries := []entrySpec{
		{name: "a.txt", method: MethodStore, data: []byte("a"), uncompressedSize: 1, crc32: flate.CRC32([]byte("a"))},
		{name: "b.txt", method: MethodStore, data: []byte("bb"), uncompressedSize: 2, crc32: flate.CRC32([]byte("bb"))},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	fi, err := a.Locate(0, "b.txt")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fi.Name != "b.txt" || fi.UncompressedSize != 2 {
		t.Fatalf("fi = %+v", fi)
	}

	out := make([]byte, fi.UncompressedSize)
	n, err := a.Extract(fi, out)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(out[:n]) != "bb" {
		t.Fatalf("out = %q, want %q", out[:n], "bb")
	}
}

func TestArchiveLocateByIndex(t *testing.T) {
	entries := []entrySpec{
		{name: "a.txt", method: MethodStore, data: []byte("a"), uncompressedSize: 1, crc32: flate.CRC32([]byte("a"))},
		{name: "b.txt", method: MethodStore, data: []byte("bb"), uncompressedSize: 2, crc32: flate.CRC32([]byte("bb"))},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	fi, err := a.Locate(1, "")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fi.Name != "b.txt" {
		t.Fatalf("fi.Name = %q, want %q", fi.Name, "b.txt")
	}
}

func TestArchiveLocateMissingName(t *testing.T) {
	entries := []entrySpec{
		{name: "a.txt", method: MethodStore, data: []byte("a"), uncompressedSize: 1, crc32: flate.CRC32([]byte("a"))},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := a.Locate(0, "missing.txt"); err != ErrNoSuchEntry {
		t.Fatalf("err = %v, want ErrNoSuchEntry", err)
	}
}

func TestArchiveExtractDeflate(t *testing.T) {
	payload := []byte("hello")
	entries := []entrySpec{
		{
			name:             "hello.txt",
			method:           MethodDeflate,
			data:             storedDeflateBlock(payload),
			uncompressedSize: uint32(len(payload)),
			crc32:            flate.CRC32(payload),
		},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	fi, err := a.Locate(0, "hello.txt")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	out := make([]byte, fi.UncompressedSize)
	n, err := a.Extract(fi, out)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(out[:n]) != "hello" {
		t.Fatalf("out = %q, want %q", out[:n], "hello")
	}
}

func TestArchiveExtractStoreEmpty(t *testing.T) {
	entries := []entrySpec{
		{name: "empty.bin", method: MethodStore, data: nil, uncompressedSize: 0, crc32: flate.CRC32(nil)},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	fi, err := a.Locate(0, "empty.bin")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	n, err := a.Extract(fi, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
}

func TestArchiveExtractCRCMismatch(t *testing.T) {
	entries := []entrySpec{
		{name: "a.txt", method: MethodStore, data: []byte("a"), uncompressedSize: 1, crc32: 0xdeadbeef},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	fi, err := a.Locate(0, "a.txt")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	out := make([]byte, fi.UncompressedSize)
	if _, err := a.Extract(fi, out); err != ErrIntegrity {
		t.Fatalf("err = %v, want ErrIntegrity", err)
	}
}

func TestArchiveExtractDataDescriptorWithSignature(t *testing.T) {
	payload := []byte("descriptor-carried")
	entries := []entrySpec{
		{
			name:              "d.bin",
			method:            MethodStore,
			data:              payload,
			uncompressedSize:  uint32(len(payload)),
			crc32:             flate.CRC32(payload),
			hasDataDescriptor: true,
			descriptorHasSig:  true,
		},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	fi, err := a.Locate(0, "d.bin")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if !fi.HasDataDescriptor {
		t.Fatalf("HasDataDescriptor = false, want true")
	}
	out := make([]byte, fi.UncompressedSize)
	n, err := a.Extract(fi, out)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(out[:n]) != string(payload) {
		t.Fatalf("out = %q, want %q", out[:n], payload)
	}
}

func TestArchiveExtractDataDescriptorWithoutSignature(t *testing.T) {
	payload := []byte("no-sig")
	entries := []entrySpec{
		{
			name:              "e.bin",
			method:            MethodStore,
			data:              payload,
			uncompressedSize:  uint32(len(payload)),
			crc32:             flate.CRC32(payload),
			hasDataDescriptor: true,
			descriptorHasSig:  false,
		},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	fi, err := a.Locate(0, "e.bin")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	out := make([]byte, fi.UncompressedSize)
	n, err := a.Extract(fi, out)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(out[:n]) != string(payload) {
		t.Fatalf("out = %q, want %q", out[:n], payload)
	}
}

func TestArchiveWithMaxLengthComment(t *testing.T) {
	entries := []entrySpec{
		{name: "a.txt", method: MethodStore, data: []byte("a"), uncompressedSize: 1, crc32: flate.CRC32([]byte("a"))},
	}
	comment := bytes.Repeat([]byte("x"), 65535)
	data, read := buildArchive(t, entries, comment)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := a.Locate(0, "a.txt"); err != nil {
		t.Fatalf("Locate: %v", err)
	}
}

func TestArchiveExtractShortBuffer(t *testing.T) {
	entries := []entrySpec{
		{name: "a.txt", method: MethodStore, data: []byte("abcd"), uncompressedSize: 4, crc32: flate.CRC32([]byte("abcd"))},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	fi, err := a.Locate(0, "a.txt")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if _, err := a.Extract(fi, make([]byte, 2)); err != ErrShortBuffer {
		t.Fatalf("err = %v, want ErrShortBuffer", err)
	}
}

func TestArchiveFilenameTruncation(t *testing.T) {
	name255 := bytes.Repeat([]byte("x"), 255)
	name300 := bytes.Repeat([]byte("y"), 300)
	entries := []entrySpec{
		{name: string(name255), method: MethodStore, data: []byte("a"), uncompressedSize: 1, crc32: flate.CRC32([]byte("a"))},
		{name: string(name300), method: MethodStore, data: []byte("b"), uncompressedSize: 1, crc32: flate.CRC32([]byte("b"))},
	}
	data, read := buildArchive(t, entries, nil)
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	fi, err := a.Locate(0, "")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if fi.Name != string(name255) {
		t.Fatalf("Name length = %d, want unmodified 255-byte name", len(fi.Name))
	}

	fi, err = a.Locate(1, "")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(fi.Name) != 255 || fi.Name != string(name300[:255]) {
		t.Fatalf("Name = %q (len %d), want first 255 bytes of the 300-byte name", fi.Name, len(fi.Name))
	}
}

func TestArchiveInitNoEOCD(t *testing.T) {
	data := []byte("not a zip file")
	read := func(offset uint32) uint32 {
		if offset >= uint32(len(data)) {
			return flate.OOB
		}
		return uint32(data[offset])
	}
	a := NewArchive(read, uint32(len(data)))
	if err := a.Init(); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
