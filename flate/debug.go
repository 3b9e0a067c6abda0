// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build lowzipdebug

// This file is the Go analogue of the original C source's
// `#if defined(LOWZIP_DEBUG)` blocks: a compile-time-only diagnostic
// path, entirely absent from a normal build (here, gated behind the
// lowzipdebug build tag rather than an #ifdef).

package flate

import (
	"fmt"
	"os"
)

func debugHuffmanCounts(h *huffTable) {
	fmt.Fprintf(os.Stderr, "flate: huffman counts:")
	for _, c := range h.counts {
		fmt.Fprintf(os.Stderr, " %d", c)
	}
	fmt.Fprintln(os.Stderr)
}

func debugError(err error, outOffset int) {
	fmt.Fprintf(os.Stderr, "flate: error %v at output offset %d\n", err, outOffset)
}
