// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ziplite

import "github.com/svaarala/lowzip/flate"

// byteSource is this package's own little-endian byte-reading helper. It
// is grounded on the same read-at-offset contract as flate.byteSource but
// is an independent type: ZIP header parsing reads whole little-endian
// fields at arbitrary offsets (not bit-packed), a different enough access
// pattern from the DEFLATE bit reader that sharing flate's unexported type
// would not simplify anything. The two packages share only flate.ReadFunc,
// flate.OOB, flate.ErrInput, flate.CRC32, and flate.Decoder as their
// contract.
type byteSource struct {
	read   flate.ReadFunc
	length uint32
}

// readAt reads a single byte at an absolute offset, panicking with
// ErrInput for any out-of-bounds or failed read. This is the single
// defensive chokepoint for input bounds in this package.
func (s byteSource) readAt(offset uint32) byte {
	if offset >= s.length {
		panic(ErrInput)
	}
	v := s.read(offset)
	if v&flate.OOB != 0 {
		panic(ErrInput)
	}
	return byte(v)
}

// readLE reads an n-byte (n <= 4) little-endian integer at offset.
func (s byteSource) readLE(offset, n uint32) uint32 {
	var res uint32
	for i := n; i > 0; i-- {
		res = (res << 8) | uint32(s.readAt(offset+i-1))
	}
	return res
}

func (s byteSource) read4(offset uint32) uint32 { return s.readLE(offset, 4) }
func (s byteSource) read2(offset uint32) uint32 { return s.readLE(offset, 2) }
