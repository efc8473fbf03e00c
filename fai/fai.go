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

// Package fai implements the FASTA index (.fai) format used by samtools
// faidx. The index stores per-sequence metadata enabling random access to
// FASTA files.
//
// The format is one record per line with five tab-separated fields:
//
//	NAME	LENGTH	OFFSET	LINEBASES	LINEWIDTH
//
// OFFSET is the byte position of the first sequence byte in the
// uncompressed data. LINEBASES is the number of bases per wrapped line and
// LINEWIDTH the total bytes per wrapped line including its terminator.
// See: http://www.htslib.org/doc/faidx.html
package fai

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	// errFai is the base error for all fai errors.
	errFai = errors.New("fai")

	// ErrParse indicates malformed index data.
	ErrParse = fmt.Errorf("%w: invalid index", errFai)
)

// Entry holds the index metadata for a single sequence.
type Entry struct {
	// Name is the sequence identifier.
	Name string

	// Length is the total sequence length in bases.
	Length uint64

	// Offset is the byte offset in the uncompressed file where the
	// sequence data starts, immediately after the header line.
	Offset uint64

	// LineBases is the number of bases per wrapped line.
	LineBases uint64

	// LineWidth is the total bytes per wrapped line including its
	// terminator. Always >= LineBases.
	LineWidth uint64
}

// OffsetForPosition returns the byte offset in the uncompressed file of the
// 0-based sequence position start, accounting for line wrapping.
func (e Entry) OffsetForPosition(start uint64) uint64 {
	fullLines := start / e.LineBases
	col := start % e.LineBases
	return e.Offset + fullLines*e.LineWidth + col
}

// RegionLength returns the number of bases in the half-open region
// [start, end), clamped to the sequence length.
func (e Entry) RegionLength(start, end uint64) uint64 {
	if end > e.Length {
		end = e.Length
	}
	if start > e.Length {
		start = e.Length
	}
	if end < start {
		return 0
	}
	return end - start
}

// Index maps sequence names to their index entries. An Index is immutable
// after load and safe for concurrent use.
type Index struct {
	entries map[string]Entry
}

// Parse reads a .fai index from r. Blank lines and lines starting with '#'
// are ignored.
func Parse(r io.Reader) (*Index, error) {
	idx := &Index{
		entries: map[string]Entry{},
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: line %d: expected 5 fields, got %d", ErrParse, lineNum, len(fields))
		}

		var nums [4]uint64
		for i, f := range fields[1:] {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: field %d: %q", ErrParse, lineNum, i+2, f)
			}
			nums[i] = v
		}

		entry := Entry{
			Name:      fields[0],
			Length:    nums[0],
			Offset:    nums[1],
			LineBases: nums[2],
			LineWidth: nums[3],
		}
		if entry.LineWidth < entry.LineBases {
			return nil, fmt.Errorf("%w: line %d: line width %d < line bases %d", ErrParse, lineNum, entry.LineWidth, entry.LineBases)
		}

		idx.entries[entry.Name] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errFai, err)
	}

	return idx, nil
}

// Open reads a .fai index from the file at path.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening index: %w", errFai, err)
	}
	defer f.Close()
	return Parse(f)
}

// Get returns the entry for the named sequence.
func (idx *Index) Get(name string) (Entry, bool) {
	e, ok := idx.entries[name]
	return e, ok
}

// Contains reports whether the named sequence exists in the index.
func (idx *Index) Contains(name string) bool {
	_, ok := idx.entries[name]
	return ok
}

// Len returns the number of sequences in the index.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// IsEmpty reports whether the index has no entries.
func (idx *Index) IsEmpty() bool {
	return len(idx.entries) == 0
}

// Names returns the names of all sequences in the index. Order is not
// specified.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.entries))
	for name := range idx.entries {
		names = append(names, name)
	}
	return names
}

// Entries returns all entries in the index. Order is not specified.
func (idx *Index) Entries() []Entry {
	entries := make([]Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		entries = append(entries, e)
	}
	return entries
}
