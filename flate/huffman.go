// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

// huffTable is a canonical-Huffman decode table in "counts + symbols"
// form: no explicit code value is ever materialized, the decoder in
// decodeSymbol reconstructs the code bit by bit (see lowzip_decode_huffman
// in the C source this is grounded on). symbols is a slice over a
// fixed-size array owned by the Decoder field this table backs, sized to
// that table's own alphabet (286 for literal/length, 30 for distance, 19
// for code-length) rather than a single literal/length-sized array shared
// by all three, so the two smaller tables do not carry scratch they can
// never use.
type huffTable struct {
	counts  [16]uint16 // counts[L] = number of symbols with code length L; counts[0] unused
	symbols []uint16   // symbol IDs, ascending by (length, symbol)
}

// build turns a vector of per-symbol code lengths (codeLens[i] in
// [0,15], 0 meaning "symbol unused") into the counts+symbols layout.
// It panics with ErrCorrupt if any length exceeds 15.
//
// This is the size-optimized, table-free algorithm spec'd for this
// decoder: 15 passes over codeLens, one per code length, each a linear
// scan. It is deliberately not the fastest way to build a Huffman table;
// it is the smallest.
func (h *huffTable) build(codeLens []byte) {
	for i := range h.counts {
		h.counts[i] = 0
	}
	for _, l := range codeLens {
		if l > 15 {
			panic(ErrCorrupt)
		}
		h.counts[l]++
	}

	n := 0
	for length := 1; length <= 15; length++ {
		for sym, l := range codeLens {
			if int(l) == length {
				h.symbols[n] = uint16(sym)
				n++
			}
		}
	}
	debugHuffmanCounts(h)
}

// decodeSymbol decodes one symbol from br using this table. It panics
// with ErrCorrupt if no code matches within 15 bits (a malformed table
// or a desynchronized stream); a well-formed table built by build never
// takes this path for any bit sequence.
func (h *huffTable) decodeSymbol(br *bitReader) uint32 {
	var code, codeStart, symIndex uint32
	for length := 1; length <= 15; length++ {
		code = (code << 1) | br.readBits(1)
		count := uint32(h.counts[length])
		if code-codeStart < count {
			return uint32(h.symbols[symIndex+(code-codeStart)])
		}
		codeStart = (codeStart + count) << 1
		symIndex += count
	}
	panic(ErrCorrupt)
}
