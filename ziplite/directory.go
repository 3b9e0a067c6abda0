// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziplite

// maxNameLen is the filename length this package actually stores. ZIP
// filenames can run up to 65535 bytes; in practice 255 is enough, and
// capping it keeps FileInfo a small fixed-size value rather than one
// holding a heap-sized string for a pathological entry.
const maxNameLen = 255

// FileInfo describes one located archive entry. A FileInfo returned by
// Locate is a snapshot: resolving a different entry, or calling Locate
// again on the same Archive, does not invalidate a FileInfo already in
// hand (unlike the C original this is grounded on, there is no shared
// scratch region for it to alias), but the fields other than Name are
// only as trustworthy as the archive's central directory and local
// header, which Extract cross-checks against the actual decompressed
// bytes.
type FileInfo struct {
	Method            uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	DataOffset        uint32
	HasDataDescriptor bool
	Name              string
}

// Locate scans the central directory for an entry. If name is non-empty,
// it matches the first entry whose filename is byte-for-byte equal (no
// case folding, no encoding translation); index is ignored in that case.
// If name is empty, it matches the index'th entry (0-based) in directory
// order; index 0 with no name selects the first entry.
//
// Archive.Init must have already succeeded.
func (a *Archive) Locate(index int, name string) (fi *FileInfo, err error) {
	defer errRecover(&err)
	if !a.ready {
		panic(ErrCorrupt)
	}
	src := a.source()

	offset := a.centralDirOffset
	remaining := index
	for {
		if src.read4(offset) != sigCentralDir {
			panic(ErrNoSuchEntry)
		}
		nameLen := src.read2(offset + 28)
		extraLen := src.read2(offset + 30)
		commentLen := src.read2(offset + 32)

		matched := false
		if name != "" {
			matched = entryNameEquals(src, offset+46, nameLen, name)
		} else if remaining == 0 {
			matched = true
		}

		if matched {
			return a.resolveLocalHeader(src, offset, nameLen), nil
		}
		if name == "" {
			remaining--
		}
		offset += 46 + nameLen + extraLen + commentLen
	}
}

// entryNameEquals compares the nameLen bytes starting at offset against
// name, exact binary equality only.
func entryNameEquals(src byteSource, offset, nameLen uint32, name string) bool {
	if int(nameLen) != len(name) {
		return false
	}
	for i := uint32(0); i < nameLen; i++ {
		if src.readAt(offset+i) != name[i] {
			return false
		}
	}
	return true
}

// resolveLocalHeader reads the local file header pointed to by the
// central directory entry at cdOffset and builds the FileInfo from it.
// Field offsets are ZIP APPNOTE's local file header layout. The filename
// itself is copied from the central directory entry (whose length,
// cdNameLen, the caller already read while scanning), not from the local
// header's own filename field; the two normally agree, but the central
// directory copy is the one the original archive index was matched
// against.
func (a *Archive) resolveLocalHeader(src byteSource, cdOffset, cdNameLen uint32) *FileInfo {
	localOffset := src.read4(cdOffset + 42)
	if src.read4(localOffset) != sigLocalHeader {
		panic(ErrCorrupt)
	}

	flags := src.read2(localOffset + 6)
	method := src.read2(localOffset + 8)
	crc := src.read4(localOffset + 14)
	compSize := src.read4(localOffset + 18)
	uncompSize := src.read4(localOffset + 22)
	nameLen := src.read2(localOffset + 26)
	extraLen := src.read2(localOffset + 28)

	nameBufLen := cdNameLen
	if nameBufLen > maxNameLen {
		nameBufLen = maxNameLen
	}
	var nameBuf [maxNameLen]byte
	for i := uint32(0); i < nameBufLen; i++ {
		nameBuf[i] = src.readAt(cdOffset + 46 + i)
	}

	fi := &FileInfo{
		Method:            uint16(method),
		CRC32:             crc,
		CompressedSize:    compSize,
		UncompressedSize:  uncompSize,
		DataOffset:        localOffset + localHeaderSize + nameLen + extraLen,
		HasDataDescriptor: flags&0x8 != 0,
		Name:              string(nameBuf[:nameBufLen]),
	}
	return fi
}
