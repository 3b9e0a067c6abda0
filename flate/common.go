// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flate implements a footprint-minimized decoder for the raw
// DEFLATE bit-stream format described in RFC 1951.
//
// The decoder is driven by a caller-supplied byte-read callback rather
// than an io.Reader, and writes into a caller-supplied, fixed-size output
// buffer rather than allocating one. There is no streaming mode: the
// uncompressed size must be known and the output buffer sized for it up
// front. This trades throughput for a small, fixed, auditable memory
// footprint, which is the point of the package.
package flate

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "flate: " + string(e) }

// Sentinel errors panicked by internal decode steps and recovered by the
// exported entry points. A failed call returns exactly one of these;
// ErrInput comes from the input byte fetch (bitReader.readByte and
// byteSource.readLittleEndian).
var (
	// ErrCorrupt indicates a malformed bit-stream: an invalid block
	// type, an over-length Huffman code, an out-of-range literal/length
	// or distance symbol, a back-reference distance beyond the bytes
	// produced so far, or a Huffman code that fails to terminate within
	// 15 bits.
	ErrCorrupt error = Error("stream is corrupted")

	// ErrShortBuffer indicates the output buffer is too small for the
	// decompressed data.
	ErrShortBuffer error = Error("output buffer too small")

	// ErrInput indicates the read callback reported an out-of-bounds or
	// otherwise failed read.
	ErrInput error = Error("input read failed")
)

// errRecover assigns a panicked Error (or ErrInput) to *err, leaving the
// panic to propagate unchanged for anything else (in particular, runtime
// errors such as an out-of-bounds slice access, which indicate a bug in
// this package rather than a malformed input).
func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case Error:
		*err = ex
	default:
		panic(ex)
	}
}

// Per RFC 1951 Section 3.2.5. lenBase[i] is the lowest length encoded by
// literal/length symbol 257+i, minus 3 (so the maximum entry, 258-3=255,
// fits in a byte); callers always add 3 back after the lookup. lenExtra[i]
// is the number of extra bits that follow to add to the base.
var (
	lenBase = [29]byte{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 12, 14, 16, 20, 24, 28,
		32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 255,
	}
	lenExtra = [29]byte{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
)

// Per RFC 1951 Section 3.2.5. distBase[i] is the lowest distance encoded
// by distance symbol i. distExtra[i] is the number of extra bits that
// follow to add to the base.
var (
	distBase = [30]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129,
		193, 257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097,
		6145, 8193, 12289, 16385, 24577,
	}
	distExtra = [30]byte{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7,
		8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

// codeLenOrder is the permutation of the code-length alphabet used to
// transmit HCLEN code lengths, RFC 1951 Section 3.2.7.
var codeLenOrder = [19]byte{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

const (
	maxNumLitSyms  = 286
	maxNumDistSyms = 30
	maxNumCLenSyms = 19
	endBlockSym    = 256
)
