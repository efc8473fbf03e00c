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

// Package gzi implements the BGZF offset index (.gzi) format written by
// bgzip. The index maps uncompressed byte offsets to the compressed
// offsets of the BGZF blocks containing them, enabling seeking in
// BGZF-compressed files.
//
// The on-disk format is little-endian: a uint64 entry count followed by
// that many (compressed offset, uncompressed offset) uint64 pairs, sorted
// ascending by uncompressed offset. The file's first block at (0, 0) is
// implicit and not stored.
package gzi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

var (
	// errGzi is the base error for all gzi errors.
	errGzi = errors.New("gzi")

	// ErrParse indicates malformed index data.
	ErrParse = fmt.Errorf("%w: invalid index", errGzi)
)

// Entry names the start of a single BGZF block.
type Entry struct {
	// Compressed is the byte offset of the block in the compressed file.
	Compressed uint64

	// Uncompressed is the byte offset of the block's first byte in the
	// uncompressed data.
	Uncompressed uint64
}

// Index is a loaded .gzi index. An Index is immutable after load and safe
// for concurrent use.
type Index struct {
	entries []Entry
}

// NewIndex returns an index over the given entries. The entries must be
// sorted in non-decreasing order of uncompressed offset.
func NewIndex(entries []Entry) (*Index, error) {
	for i := 1; i < len(entries); i++ {
		if entries[i].Uncompressed < entries[i-1].Uncompressed {
			return nil, fmt.Errorf("%w: entries not sorted by uncompressed offset", ErrParse)
		}
	}
	return &Index{entries: entries}, nil
}

// Parse reads a .gzi index from its binary representation.
func Parse(data []byte) (*Index, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: data too short: %d bytes", ErrParse, len(data))
	}

	n := binary.LittleEndian.Uint64(data[:8])
	if n > uint64(len(data)-8)/16 {
		return nil, fmt.Errorf("%w: data too short: expected %d entries in %d bytes", ErrParse, n, len(data))
	}

	entries := make([]Entry, 0, n)
	off := 8
	for i := uint64(0); i < n; i++ {
		entries = append(entries, Entry{
			Compressed:   binary.LittleEndian.Uint64(data[off:]),
			Uncompressed: binary.LittleEndian.Uint64(data[off+8:]),
		})
		off += 16
	}

	return NewIndex(entries)
}

// ParseReader reads a .gzi index from r. The index is read fully into
// memory.
func ParseReader(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errGzi, err)
	}
	return Parse(data)
}

// Open reads a .gzi index from the file at path.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening index: %w", errGzi, err)
	}
	defer f.Close()
	return ParseReader(f)
}

// Lookup returns the entry for the block containing the given uncompressed
// offset: the entry with the largest uncompressed offset <= uncompressed.
// Offsets preceding the first stored entry resolve to the first entry, and
// offsets past the last to the last. It returns false only when the index
// is empty.
func (idx *Index) Lookup(uncompressed uint64) (Entry, bool) {
	if len(idx.entries) == 0 {
		return Entry{}, false
	}

	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].Uncompressed > uncompressed
	})
	if i == 0 {
		return idx.entries[0], true
	}
	return idx.entries[i-1], true
}

// CompressedFor returns the compressed offset of the block containing the
// given uncompressed offset. Decompressing from that offset and discarding
// bytes reaches any intra-block position. It returns false only when the
// index is empty.
func (idx *Index) CompressedFor(uncompressed uint64) (uint64, bool) {
	e, ok := idx.Lookup(uncompressed)
	return e.Compressed, ok
}

// UncompressedFor returns the uncompressed offset of the block starting at
// or preceding the given compressed offset. It returns false when the
// index is empty or the offset precedes the first stored entry.
func (idx *Index) UncompressedFor(compressed uint64) (uint64, bool) {
	if len(idx.entries) == 0 {
		return 0, false
	}

	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].Compressed > compressed
	})
	if i == 0 {
		return 0, false
	}
	return idx.entries[i-1].Uncompressed, true
}

// Len returns the number of entries in the index.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// IsEmpty reports whether the index has no entries.
func (idx *Index) IsEmpty() bool {
	return len(idx.entries) == 0
}

// Entries returns the index entries in uncompressed-offset order. The
// returned slice must not be modified.
func (idx *Index) Entries() []Entry {
	return idx.entries
}
