// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

// bitReader extracts LSB-first bits from a byteSource, the way RFC 1951
// Section 3.1.1 requires. It tracks its own absolute read cursor
// (offset), which the embedding Decoder reports to callers through
// Decoder.Offset in inflate.go.
//
// accum holds up to 31 valid bits; valid is always < 8 before a call to
// feed, which tops it up to at most 32. This mirrors the C source's
// (curr, have) pair (lowzip_read_bits) exactly, just renamed.
type bitReader struct {
	src    byteSource
	offset uint32 // next byte to read
	accum  uint32
	valid  uint // number of valid low bits in accum, invariant: < 32
}

func (br *bitReader) init(src byteSource, offset uint32) {
	br.src = src
	br.offset = offset
	br.accum = 0
	br.valid = 0
}

// readByte fetches the next input byte and advances the cursor. Any
// out-of-bounds read panics with ErrInput, unwinding straight out of the
// decode; this is the single chokepoint for input bounds in this package.
func (br *bitReader) readByte() byte {
	b, ok := br.src.readAt(br.offset)
	if !ok {
		panic(ErrInput)
	}
	br.offset++
	return b
}

// feed tops up accum to at least nb valid bits.
func (br *bitReader) feed(nb uint) {
	for br.valid < nb {
		br.accum |= uint32(br.readByte()) << br.valid
		br.valid += 8
	}
}

// readBits reads nb bits (1 <= nb <= 20) in natural DEFLATE bit order
// (least-significant bit of the stream first).
func (br *bitReader) readBits(nb uint) uint32 {
	br.feed(nb)
	mask := uint32(1)<<nb - 1
	res := br.accum & mask
	br.accum >>= nb
	br.valid -= nb
	return res
}

// readBitsReversed reads nb bits and returns them bit-reversed, i.e. the
// bit-reversal of readBits(nb). It is needed only by the hand-rolled
// fixed-Huffman decoder (RFC 1951 Section 3.2.6); dynamic blocks decode
// one bit at a time and never need this.
func (br *bitReader) readBitsReversed(nb uint) uint32 {
	v := br.readBits(nb)
	var res uint32
	for i := uint(0); i < nb; i++ {
		res <<= 1
		res |= v & 1
		v >>= 1
	}
	return res
}

// reset discards any partially-consumed byte, used at the boundary of a
// stored block (RFC 1951 Section 3.2.4 requires byte alignment there).
func (br *bitReader) reset() {
	br.accum = 0
	br.valid = 0
}
