// Copyright 2024 The lowzip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ziplite implements a footprint-minimized ZIP directory scanner
// and per-entry extractor, layered over the sibling flate package for the
// DEFLATE case. It reads the same caller-supplied byte-read callback
// convention flate uses and, like flate, writes into a caller-supplied
// output buffer rather than allocating one.
//
// The package is not a drop-in replacement for the standard library's
// archive/zip: it supports only STORE and DEFLATE entries, ignores ZIP64
// and encryption, and does not implement io.Reader/io.Writer-shaped
// interfaces. It is named ziplite rather than zip solely to avoid
// colliding with that standard import path.
package ziplite

import "github.com/svaarala/lowzip/flate"

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "ziplite: " + string(e) }

// Sentinel errors panicked by internal steps and recovered by the
// exported entry points (Archive.Init, Archive.Locate, Archive.Extract).
var (
	// ErrNotFound indicates the end-of-central-directory record could
	// not be located within the archive.
	ErrNotFound error = Error("end of central directory not found")

	// ErrNoSuchEntry indicates the requested name or index has no
	// matching central-directory entry.
	ErrNoSuchEntry error = Error("no matching directory entry")

	// ErrCorrupt indicates a malformed archive: a local file header
	// signature mismatch, a malformed DEFLATE stream or one that decodes
	// to more than the declared uncompressed size, or Locate called
	// without a successful Init. A central-directory signature mismatch
	// ends the directory scan and is reported as ErrNoSuchEntry.
	ErrCorrupt error = Error("archive structure is corrupted")

	// ErrMethod indicates a compression method other than STORE or
	// DEFLATE.
	ErrMethod error = Error("unsupported compression method")

	// ErrShortBuffer indicates the caller's output buffer is smaller
	// than the entry's declared uncompressed size.
	ErrShortBuffer error = Error("output buffer too small")

	// ErrIntegrity indicates the extracted data's length or CRC-32 does
	// not match the value recorded in the archive.
	ErrIntegrity error = Error("length or checksum mismatch")

	// ErrInput indicates the read callback reported an out-of-bounds or
	// otherwise failed read.
	ErrInput error = Error("input read failed")
)

// errRecover assigns a panicked Error (or ErrInput) to *err, leaving the
// panic to propagate unchanged for anything else. Mirrors flate.errRecover.
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

// wrapFlateErr translates an error returned by flate.Decoder.InflateRaw
// into this package's sentinel set, for panicking onward through
// errRecover. Only the input-failure case is distinguished; any other
// flate error means the compressed stream itself is malformed, which at
// the ZIP layer is indistinguishable from a corrupted archive.
func wrapFlateErr(err error) error {
	if err == flate.ErrInput {
		return ErrInput
	}
	return ErrCorrupt
}
