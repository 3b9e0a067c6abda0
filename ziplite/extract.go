// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziplite

import "github.com/svaarala/lowzip/flate"

// Extract decompresses or copies the entry described by fi into out,
// which must be at least fi.UncompressedSize bytes long, and verifies the
// result's length and CRC-32 against the values recorded in the archive.
//
// On success, Extract returns int(fi.UncompressedSize) and a nil error.
// On any error, the returned count is 0 and the caller must discard out,
// which may already be partially written; an integrity failure
// in particular leaves out fully written but untrusted, matching the
// original's "the buffer is populated but must not be trusted" contract.
func (a *Archive) Extract(fi *FileInfo, out []byte) (n int, err error) {
	defer errRecover(&err)
	if uint32(len(out)) < fi.UncompressedSize {
		panic(ErrShortBuffer)
	}
	out = out[:fi.UncompressedSize]

	var next, readOffset uint32
	switch fi.Method {
	case MethodStore:
		next = a.copyStored(fi, out)
		readOffset = fi.DataOffset + next
	case MethodDeflate:
		d := flate.NewDecoder()
		got, derr := d.InflateRaw(a.read, a.length, fi.DataOffset, out)
		if derr != nil {
			panic(wrapFlateErr(derr))
		}
		next = uint32(got)
		readOffset = d.Offset()
	default:
		panic(ErrMethod)
	}

	if next != fi.UncompressedSize {
		panic(ErrIntegrity)
	}
	if flate.CRC32(out[:next]) != a.expectedCRC(fi, readOffset) {
		panic(ErrIntegrity)
	}
	return int(next), nil
}

// copyStored copies a STORE entry's bytes directly from the input.
func (a *Archive) copyStored(fi *FileInfo, out []byte) uint32 {
	src := a.source()
	var i uint32
	for ; i < fi.UncompressedSize; i++ {
		out[i] = src.readAt(fi.DataOffset + i)
	}
	return i
}

// expectedCRC resolves the CRC-32 to check the extracted data against.
// Ordinarily this is the value recorded in the local header, but when the
// general-purpose flags indicated a trailing data descriptor (its sizes
// and CRC were unknown when the local header was written), the CRC is
// read from just past the compressed stream instead; the optional
// descriptor signature, if present, shifts the CRC field by 4 bytes. The
// descriptor's length fields, if any, are never consulted.
func (a *Archive) expectedCRC(fi *FileInfo, readOffset uint32) uint32 {
	if !fi.HasDataDescriptor {
		return fi.CRC32
	}
	src := a.source()
	if src.read4(readOffset) == sigDataDescriptor {
		return src.read4(readOffset + 4)
	}
	return src.read4(readOffset)
}
