// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bitgen lets tests hand-author raw DEFLATE (and other
// LSB-first) bit-streams from a small, readable token language, rather
// than writing out individual hex bytes and reasoning about bit order by
// hand. It is a trimmed, LSB-first-only adaptation of the BitGen format
// from github.com/dsnet/compress's internal/testutil package: this
// project's target format (DEFLATE) only ever needs little-endian
// bit-packing, so the big-endian half of the original format (used there
// for bzip2) is dropped.
package bitgen

import (
	"bytes"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBin = regexp.MustCompile(`^[01]{1,32}$`)
	reDec = regexp.MustCompile(`^D[0-9]+:[0-9]+$`)
	reHex = regexp.MustCompile(`^H[0-9]+:[0-9a-fA-F]{1,8}$`)
	reRaw = regexp.MustCompile(`^X:[0-9a-fA-F]+$`)
	reQnt = regexp.MustCompile(`[*][0-9]+$`)
)

// Decode decodes a BitGen-formatted string into its packed byte
// representation. Bits are packed least-significant-bit first within
// each byte, matching DEFLATE's bit order (RFC 1951 Section 3.1.1).
//
// The string is a whitespace-separated sequence of tokens; '#' starts a
// line comment.
//
//   - A token matching "[01]{1,32}" is a literal bit-string, written
//     right-most bit first (so "011" writes bit 1, then bit 1, then bit 0).
//   - A token matching "D<n>:<v>" or "H<n>:<v>" is an n-bit value given in
//     decimal or hexadecimal, written least-significant-bit first.
//   - A token matching "X:<hex>" is raw bytes, appended verbatim; the
//     stream must already be byte-aligned at that point.
//   - Any token may be followed by "*<n>" to repeat it n times.
//
// The result is padded with zero bits up to the next byte boundary.
func Decode(s string) ([]byte, error) {
	var toks []string
	for _, line := range strings.Split(s, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, t := range strings.Fields(line) {
			toks = append(toks, t)
		}
	}

	var bw bitWriter
	for _, t := range toks {
		rep := 1
		if reQnt.MatchString(t) {
			i := strings.LastIndexByte(t, '*')
			var tt string
			tt, t = t[:i], t[i+1:]
			n, err := strconv.Atoi(t)
			if err != nil {
				return nil, errors.New("bitgen: invalid quantifier: " + t)
			}
			t, rep = tt, n
		}

		switch {
		case reBin.MatchString(t):
			var v uint32
			for _, b := range t {
				v <<= 1
				v |= uint32(b - '0')
			}
			for i := 0; i < rep; i++ {
				bw.writeBits(v, uint(len(t)))
			}
		case reDec.MatchString(t) || reHex.MatchString(t):
			i := strings.IndexByte(t, ':')
			base := 10
			if t[0] == 'H' {
				base = 16
			}
			n, err1 := strconv.Atoi(t[1:i])
			v, err2 := strconv.ParseUint(t[i+1:], base, 32)
			if err1 != nil || err2 != nil || n > 32 {
				return nil, errors.New("bitgen: invalid numeric token: " + t)
			}
			for i := 0; i < rep; i++ {
				bw.writeBits(uint32(v), uint(n))
			}
		case reRaw.MatchString(t):
			b, err := hex.DecodeString(t[2:])
			if err != nil {
				return nil, errors.New("bitgen: invalid raw bytes token: " + t)
			}
			bw.writeBytes(bytes.Repeat(b, rep))
		default:
			return nil, errors.New("bitgen: invalid token: " + t)
		}
	}
	return bw.b, nil
}

// MustDecode is like Decode but panics on error; meant for test tables
// where the input literal is known-good.
func MustDecode(s string) []byte {
	b, err := Decode(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MustDecodeHex decodes a hexadecimal string, panicking on error.
func MustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

type bitWriter struct {
	b []byte
	m byte // next bit mask to set in b's last byte; 0 means byte-aligned
}

func (w *bitWriter) writeBits(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		if w.m == 0 {
			w.m = 1
			w.b = append(w.b, 0)
		}
		if v&(1<<i) != 0 {
			w.b[len(w.b)-1] |= w.m
		}
		w.m <<= 1
	}
}

func (w *bitWriter) writeBytes(p []byte) {
	// Byte-aligned writes require m == 0; tests never mix the two
	// without an explicit alignment, same constraint as the original.
	w.b = append(w.b, p...)
}
