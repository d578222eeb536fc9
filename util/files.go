// util/files.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// OpenDataFile opens the specified file for reading; if it's zstd
// compressed (i.e., has a .zst extension), the returned reader handles
// decompression transparently.
func OpenDataFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) == ".zst" {
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return zstdReadCloser{Decoder: zr, f: f}, nil
	}
	return f, nil
}

// LoadJSONFile decodes the JSON in the given (possibly compressed) file
// into v. Unknown fields are reported as errors so that typos in
// hand-edited files don't silently go unnoticed.
func LoadJSONFile(path string, v any) error {
	r, err := OpenDataFile(path)
	if err != nil {
		return err
	}
	defer r.Close()

	return DecodeJSON(r, v)
}

func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if se, ok := err.(*json.SyntaxError); ok {
			return fmt.Errorf("JSON syntax error at offset %d: %w", se.Offset, err)
		}
		return err
	}
	return nil
}
