// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

// maxCodeLens bounds the decoded code-length sequence for a dynamic
// block: up to maxNumLitSyms literal/length lengths followed by up to
// maxNumDistSyms distance lengths.
const maxCodeLens = maxNumLitSyms + maxNumDistSyms

// Decoder holds everything needed to inflate one raw DEFLATE stream: the
// bit reader, the caller's output buffer and write cursor, and the
// Huffman tables, reused call to call so that InflateRaw never touches
// the heap. A Decoder is not safe for concurrent use and may be reused
// across many calls to InflateRaw; each call starts fresh state.
//
// Each table's backing array is sized to its own alphabet rather than
// one literal/length-sized (286-entry) array shared by all three: the
// distance and code-length tables never need more than 30 and 19 entries
// respectively, and litTable/distTable are both live at once while
// decoding a dynamic block's payload, so they cannot share one array.
type Decoder struct {
	br   bitReader
	out  []byte
	next int

	litTable    huffTable
	distTable   huffTable
	clenTable   huffTable
	litSymbols  [maxNumLitSyms]uint16
	distSymbols [maxNumDistSyms]uint16
	clenSymbols [maxNumCLenSyms]uint16
	codeLens    [maxCodeLens]byte
}

// NewDecoder returns a Decoder ready for use.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.litTable.symbols = d.litSymbols[:]
	d.distTable.symbols = d.distSymbols[:]
	d.clenTable.symbols = d.clenSymbols[:]
	return d
}

// InflateRaw decodes a raw DEFLATE stream (no ZIP or gzip framing) read
// via read, starting at the given absolute offset and never reading at
// or past length, writing decoded bytes into out starting at out[0].
//
// On success InflateRaw returns the number of bytes decoded. That equals
// len(out) only when out is sized to exactly the stream's uncompressed
// length; a stream that ends before filling out is not reported as an
// error, and one that would overrun out fails with ErrShortBuffer. On
// any error, the returned count
// reflects how far decoding got before failing and must be discarded by
// the caller, matching the original C source's
// "output_next may be partially advanced" contract.
func (d *Decoder) InflateRaw(read ReadFunc, length uint32, offset uint32, out []byte) (n int, err error) {
	d.out = out
	d.next = 0
	d.br.init(byteSource{read: read, length: length}, offset)

	defer func() {
		n = d.next
		if err != nil {
			debugError(err, d.next)
		}
	}()
	defer errRecover(&err)
	d.decodeBlocks()
	return d.next, nil
}

// Offset reports the absolute input offset immediately following the
// last byte consumed by the most recent InflateRaw call. ZIP entries
// with a trailing data descriptor need this to locate it.
func (d *Decoder) Offset() uint32 {
	return d.br.offset
}

// decodeBlocks loops over DEFLATE blocks until BFINAL is observed,
// RFC 1951 Section 3.2.3.
func (d *Decoder) decodeBlocks() {
	d.br.reset()
	for {
		final, btype := d.decodeBlockHeader()
		switch btype {
		case 0:
			d.decodeStoredBlock()
		case 1:
			d.decodeBlockData(true /*static*/)
		case 2:
			d.decodeDynamicBlock()
		default:
			panic(ErrCorrupt)
		}
		if final {
			return
		}
	}
}

// writeByte appends one byte to the output, the single chokepoint for
// output-bounds safety in this package.
func (d *Decoder) writeByte(b byte) {
	if d.next >= len(d.out) {
		panic(ErrShortBuffer)
	}
	d.out[d.next] = b
	d.next++
}
