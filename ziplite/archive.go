// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziplite

import "github.com/svaarala/lowzip/flate"

// ZIP (PKWARE APPNOTE) record signatures, all little-endian uint32s as
// they appear on the wire.
const (
	sigEOCD           = 0x06054b50
	sigCentralDir     = 0x02014b50
	sigLocalHeader    = 0x04034b50
	sigDataDescriptor = 0x08074b50
)

// Compression methods this package understands; any other value in a
// local header is an error at extraction time.
const (
	MethodStore   = 0
	MethodDeflate = 8
)

const (
	eocdSize        = 22
	maxCommentLen   = 65535
	localHeaderSize = 30
)

// Archive represents one ZIP container accessed through a caller-supplied
// read callback, the same ReadFunc convention flate uses. It holds no
// output buffer of its own; Extract writes into whatever buffer the
// caller passes it.
//
// An Archive is not safe for concurrent use. It carries no heap-backed
// buffers of its own. Locate allocates the FileInfo it returns (a small
// struct plus its Name string), and Extract allocates a new
// flate.Decoder for each DEFLATE entry it decodes.
type Archive struct {
	read             flate.ReadFunc
	length           uint32
	centralDirOffset uint32
	ready            bool
}

// NewArchive returns an Archive over the given callback and declared
// archive length. Init must be called before Locate or Extract.
func NewArchive(read flate.ReadFunc, length uint32) *Archive {
	return &Archive{read: read, length: length}
}

func (a *Archive) source() byteSource {
	return byteSource{read: a.read, length: a.length}
}

// Init locates the end-of-central-directory record and records the
// central directory's starting offset. It must succeed before Locate is
// called.
func (a *Archive) Init() (err error) {
	defer errRecover(&err)
	a.centralDirOffset = a.locateCentralDir()
	a.ready = true
	return nil
}

// locateCentralDir implements the EOCD backward scan: starting at the
// offset where a comment-less EOCD record would begin, and walking backward
// no further than the maximum possible comment length, it looks for the
// signature plus the comment-length field that must make the record end
// exactly at the archive's end. The comment-length check exists because
// an archive comment can itself contain four bytes that happen to match
// the EOCD signature; requiring the record to end exactly at the declared
// archive length makes a false match astronomically unlikely while
// keeping the scan linear in archive size.
func (a *Archive) locateCentralDir() uint32 {
	if a.length < eocdSize {
		panic(ErrNotFound)
	}
	src := a.source()

	start := a.length - eocdSize
	low := uint32(0)
	if start > maxCommentLen {
		low = start - maxCommentLen
	}

	offset := start
	for {
		if src.read4(offset) == sigEOCD {
			commentLen := src.read2(offset + 20)
			if offset+eocdSize+commentLen == a.length {
				return src.read4(offset + 16)
			}
		}
		if offset == low {
			break
		}
		offset--
	}
	panic(ErrNotFound)
}
