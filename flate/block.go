// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

// decodeBlockHeader reads BFINAL (1 bit) and BTYPE (2 bits) as a single
// 3-bit field, RFC 1951 Section 3.2.3. Due to the bit order, the result
// is (BTYPE<<1)|BFINAL, so shifting right by one yields BTYPE.
func (d *Decoder) decodeBlockHeader() (final bool, btype uint32) {
	hdr := d.br.readBits(3)
	return hdr&1 != 0, hdr >> 1
}

// decodeStoredBlock decodes a stored (uncompressed) block, RFC 1951
// Section 3.2.4. The NLEN one's-complement check is read but discarded,
// matching the original C source's documented choice to skip it (no
// other part of the DEFLATE stream is redundancy-checked either).
func (d *Decoder) decodeStoredBlock() {
	d.br.reset()

	length := uint32(d.br.readByte())
	length |= uint32(d.br.readByte()) << 8
	d.br.readByte() // NLEN low byte, discarded
	d.br.readByte() // NLEN high byte, discarded

	for ; length > 0; length-- {
		d.writeByte(d.br.readByte())
	}
}

// decodeLitLenSymbol decodes one literal/length symbol, either from the
// dynamic table or via the hand-rolled fixed-Huffman decoder of RFC 1951
// Section 3.2.6. The fixed decoder mirrors the original C source: it
// reads the minimum 7-bit code length and extends by 1 or 2 more bits
// depending on which range the initial value falls into, rather than
// materializing an actual Huffman tree for the (simple, well-known)
// fixed code.
func (d *Decoder) decodeLitLenSymbol(static bool) uint32 {
	if !static {
		return d.litTable.decodeSymbol(&d.br)
	}
	t := d.br.readBitsReversed(7)
	switch {
	case t <= 0x17:
		t += 256
	case t <= 0x5f:
		t = (t << 1) + d.br.readBits(1) - 48
	case t <= 0x63:
		t = (t << 1) + d.br.readBits(1) + 88
	default:
		t = (t << 2) + d.br.readBitsReversed(2) - 256
	}
	return t
}

// decodeDistSymbol decodes one distance symbol, either from the dynamic
// table or as the fixed 5-bit reversed code of RFC 1951 Section 3.2.6.
func (d *Decoder) decodeDistSymbol(static bool) uint32 {
	if !static {
		return d.distTable.decodeSymbol(&d.br)
	}
	return d.br.readBitsReversed(5)
}

// decodeBlockData decodes the literal/back-reference stream shared by
// fixed and dynamic Huffman blocks, RFC 1951 Section 3.2.3.
func (d *Decoder) decodeBlockData(static bool) {
	for {
		sym := d.decodeLitLenSymbol(static)
		switch {
		case sym < endBlockSym:
			d.writeByte(byte(sym))
		case sym == endBlockSym:
			return
		default:
			if sym > 285 {
				panic(ErrCorrupt)
			}
			sym -= 257
			length := uint32(lenBase[sym]) + 3 + d.br.readBits(uint(lenExtra[sym]))

			dsym := d.decodeDistSymbol(static)
			if dsym > 29 {
				panic(ErrCorrupt)
			}
			dist := uint32(distBase[dsym]) + d.br.readBits(uint(distExtra[dsym]))

			d.copyBackref(dist, length)
		}
	}
}

// copyBackref resolves a (distance, length) back-reference by copying
// byte-by-byte, never bulk, from the already-produced output. DEFLATE
// permits dist < length (e.g. dist=1 fills the output with the last
// byte), so each read must observe the writes done earlier in the same
// copy; a running index naturally gives that.
func (d *Decoder) copyBackref(dist, length uint32) {
	if dist == 0 || dist > uint32(d.next) {
		panic(ErrCorrupt)
	}
	if length > uint32(len(d.out)-d.next) {
		panic(ErrShortBuffer)
	}
	src := d.next - int(dist)
	for ; length > 0; length-- {
		d.out[d.next] = d.out[src]
		d.next++
		src++
	}
}

// decodeDynamicBlock decodes a dynamic-Huffman block, RFC 1951
// Section 3.2.7: it reads HLIT/HDIST/HCLEN, builds the code-length
// table, decodes the literal/length and distance code-length sequences
// (with the 16/17/18 repeat codes), builds the two main tables, and
// then decodes the shared payload.
func (d *Decoder) decodeDynamicBlock() {
	hlit := d.br.readBits(5) + 257
	hdist := d.br.readBits(5) + 1
	hclen := d.br.readBits(4) + 4
	if hlit > maxNumLitSyms || hdist > maxNumDistSyms {
		// A conforming encoder never emits these; reject rather than
		// risk building a table past its fixed backing array.
		panic(ErrCorrupt)
	}

	var clenLens [maxNumCLenSyms]byte
	for i := uint32(0); i < hclen; i++ {
		clenLens[codeLenOrder[i]] = byte(d.br.readBits(3))
	}
	d.clenTable.build(clenLens[:])

	total := hlit + hdist
	codeLens := d.codeLens[:total]
	for i := uint32(0); i < total; {
		sym := d.clenTable.decodeSymbol(&d.br)

		var repCode byte
		var repCount uint32
		switch {
		case sym < 16:
			repCode, repCount = byte(sym), 1
		case sym == 16:
			if i == 0 {
				panic(ErrCorrupt)
			}
			repCode = codeLens[i-1]
			repCount = 3 + d.br.readBits(2)
		case sym == 17:
			repCode, repCount = 0, 3+d.br.readBits(3)
		case sym == 18:
			repCode, repCount = 0, 11+d.br.readBits(7)
		default:
			panic(ErrCorrupt)
		}

		for ; repCount > 0; repCount-- {
			if i >= total {
				panic(ErrCorrupt)
			}
			codeLens[i] = repCode
			i++
		}
	}

	// The code-length table is no longer needed; build the real
	// literal/length and distance tables from the decoded lengths (each
	// has its own storage, separate from clenTable).
	d.litTable.build(codeLens[:hlit])
	d.distTable.build(codeLens[hlit:total])

	d.decodeBlockData(false /*static*/)
}
