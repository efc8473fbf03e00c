// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testutil builds BGZF streams in memory for tests.
package testutil

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/ianlewis/go-fastx/gzi"
)

var errBlockTooLarge = errors.New("testutil: block too large")

// Block encodes data as a single BGZF block.
func Block(data []byte) ([]byte, error) {
	var deflated bytes.Buffer
	zw, err := flate.NewWriter(&deflated, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("flate.NewWriter: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("deflating: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("deflating: %w", err)
	}
	payload := deflated.Bytes()

	// Header (12) + BC subfield (6) + payload + trailer (8).
	bsize := 12 + 6 + len(payload) + 8 - 1
	if bsize > math.MaxUint16 {
		return nil, errBlockTooLarge
	}

	var block bytes.Buffer
	block.Write([]byte{
		0x1f, 0x8b, // ID1, ID2
		0x08,                   // CM (deflate)
		0x04,                   // FLG (FEXTRA)
		0x00, 0x00, 0x00, 0x00, // MTIME
		0x00, // XFL
		0xff, // OS (unknown)
		0x06, 0x00, // XLEN
		'B', 'C', // SI1, SI2
		0x02, 0x00, // SLEN
		byte(bsize), byte(bsize >> 8), // BSIZE
	})
	block.Write(payload)

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(data)))
	block.Write(trailer[:])

	return block.Bytes(), nil
}

// Compress encodes data as a BGZF stream holding blockSize uncompressed
// bytes per block, terminated by an empty block. It returns the stream and
// the .gzi entries describing it, including the usually implicit first
// entry at (0, 0).
func Compress(data []byte, blockSize int) ([]byte, []gzi.Entry, error) {
	var out bytes.Buffer
	var entries []gzi.Entry

	for start := 0; start < len(data); start += blockSize {
		end := start + blockSize
		if end > len(data) {
			end = len(data)
		}
		entries = append(entries, gzi.Entry{
			Compressed:   uint64(out.Len()),
			Uncompressed: uint64(start),
		})
		block, err := Block(data[start:end])
		if err != nil {
			return nil, nil, err
		}
		out.Write(block)
	}

	terminator, err := Block(nil)
	if err != nil {
		return nil, nil, err
	}
	out.Write(terminator)

	return out.Bytes(), entries, nil
}
