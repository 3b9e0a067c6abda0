// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !lowzipdebug

package flate

func debugHuffmanCounts(h *huffTable) {}

func debugError(err error, outOffset int) {}
