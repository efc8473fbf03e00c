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

// Package indexed implements random access to BGZF-compressed FASTA files
// by sequence name. It composes a .fai index for sequence metadata, a .gzi
// index for compressed offsets, and the bgzf decoder. Data may live in a
// local file or behind an HTTP(S) URL.
package indexed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	fastx "github.com/ianlewis/go-fastx"
	"github.com/ianlewis/go-fastx/bgzf"
	"github.com/ianlewis/go-fastx/fai"
	"github.com/ianlewis/go-fastx/gzi"
	"github.com/ianlewis/go-fastx/remote"
)

var (
	// errIndexed is the base error for all indexed errors.
	errIndexed = errors.New("indexed")

	// ErrNotFound indicates a missing index file or a sequence name absent
	// from the index.
	ErrNotFound = fmt.Errorf("%w: not found", errIndexed)

	// ErrInvalidInput indicates a request outside the sequence bounds.
	ErrInvalidInput = fmt.Errorf("%w: invalid input", errIndexed)

	// ErrUnsupported indicates an input the reader cannot handle.
	ErrUnsupported = fmt.Errorf("%w: unsupported", errIndexed)

	// ErrFormat indicates sequence data inconsistent with the index.
	ErrFormat = fmt.Errorf("%w: invalid data", errIndexed)
)

// Reader provides random access to the sequences of a BGZF-compressed
// FASTA file.
type Reader struct {
	z   *bgzf.Reader
	idx *fai.Index

	closers []io.Closer
}

// NewReader returns a [Reader] over the BGZF-compressed stream rs using
// the given indexes.
func NewReader(rs io.ReadSeeker, faiIdx *fai.Index, gziIdx *gzi.Index) (*Reader, error) {
	z, err := bgzf.NewIndexedReader(rs, gziIdx)
	if err != nil {
		return nil, err
	}
	return &Reader{
		z:   z,
		idx: faiIdx,
	}, nil
}

// Open opens the BGZF-compressed FASTA file at path. Companion indexes are
// discovered next to the file: for data.fasta.gz the .fai index is
// data.fasta.gz.fai or data.fasta.fai, and likewise for .gzi. Uncompressed
// inputs are not supported.
//
// It is the caller's responsibility to call [Reader.Close] on the returned
// [Reader] when done.
func Open(path string) (*Reader, error) {
	if !strings.EqualFold(filepath.Ext(path), ".gz") {
		return nil, fmt.Errorf("%w: %q: only bgzip-compressed files are supported", ErrUnsupported, path)
	}

	faiPath, ok := findIndexFile(path, "fai")
	if !ok {
		return nil, fmt.Errorf("%w: FAI index for %q", ErrNotFound, path)
	}
	gziPath, ok := findIndexFile(path, "gzi")
	if !ok {
		return nil, fmt.Errorf("%w: GZI index for %q", ErrNotFound, path)
	}

	faiIdx, err := fai.Open(faiPath)
	if err != nil {
		return nil, err
	}
	gziIdx, err := gzi.Open(gziPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening file: %w", errIndexed, err)
	}
	r, err := NewReader(f, faiIdx, gziIdx)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closers = append(r.closers, f)
	return r, nil
}

// OpenURL opens a BGZF-compressed FASTA file behind an HTTP(S) URL. The
// .fai and .gzi indexes are fetched from their own URLs; sequence data is
// read with ranged requests through a block cache. Options are applied to
// all three remote readers.
func OpenURL(dataURL, faiURL, gziURL string, opts ...remote.Option) (*Reader, error) {
	fr, err := remote.New(faiURL, opts...)
	if err != nil {
		return nil, err
	}
	faiIdx, err := fai.Parse(fr)
	if err != nil {
		return nil, err
	}

	gr, err := remote.New(gziURL, opts...)
	if err != nil {
		return nil, err
	}
	gziIdx, err := gzi.ParseReader(gr)
	if err != nil {
		return nil, err
	}

	dr, err := remote.New(dataURL, opts...)
	if err != nil {
		return nil, err
	}
	return NewReader(dr, faiIdx, gziIdx)
}

// Close closes the reader and any file it owns.
func (r *Reader) Close() error {
	err := r.z.Close()
	for _, c := range r.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Index returns the FASTA index.
func (r *Reader) Index() *fai.Index {
	return r.idx
}

// Contains reports whether the named sequence exists in the index.
func (r *Reader) Contains(name string) bool {
	return r.idx.Contains(name)
}

// Names returns the names of all sequences in the index.
func (r *Reader) Names() []string {
	return r.idx.Names()
}

// Fetch reads the full sequence with the given name. The returned record's
// header is the index entry name; its raw payload holds exactly the
// sequence bytes with line terminators removed.
func (r *Reader) Fetch(name string) (*fastx.FastARecord, error) {
	entry, ok := r.idx.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: sequence %q", ErrNotFound, name)
	}

	if _, err := r.z.Seek(int64(entry.Offset), io.SeekStart); err != nil {
		return nil, err
	}

	seq := make([]byte, 0, entry.Length)
	buf := make([]byte, 8192)
	for uint64(len(seq)) < entry.Length {
		n, err := r.z.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: reading sequence %q: %w", errIndexed, name, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: reading sequence %q: %w", errIndexed, name, io.ErrUnexpectedEOF)
		}
		for _, b := range buf[:n] {
			if b == '\n' || b == '\r' {
				continue
			}
			seq = append(seq, b)
			if uint64(len(seq)) == entry.Length {
				break
			}
		}
	}

	return fastx.NewFastARecord(entry.Name, seq), nil
}

// FetchRange reads the half-open region [start, end) of the named
// sequence. end is clamped to the sequence length; a start at or past the
// sequence length is an error.
func (r *Reader) FetchRange(name string, start, end uint64) ([]byte, error) {
	entry, ok := r.idx.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: sequence %q", ErrNotFound, name)
	}
	if start >= entry.Length {
		return nil, fmt.Errorf("%w: start %d beyond sequence length %d", ErrInvalidInput, start, entry.Length)
	}

	n := entry.RegionLength(start, end)
	fileOff := entry.OffsetForPosition(start)
	if _, err := r.z.Seek(int64(fileOff), io.SeekStart); err != nil {
		return nil, err
	}

	// Read line by line, consuming the terminator at each wrap.
	out := make([]byte, n)
	read := uint64(0)
	col := start % entry.LineBases
	for read < n {
		inLine := entry.LineBases - col
		if rem := n - read; rem < inLine {
			inLine = rem
		}
		if _, err := io.ReadFull(r.z, out[read:read+inLine]); err != nil {
			return nil, fmt.Errorf("%w: reading range: %w", errIndexed, eofErr(err))
		}
		read += inLine
		col += inLine

		if read < n && col >= entry.LineBases {
			var nl [1]byte
			if _, err := io.ReadFull(r.z, nl[:]); err != nil {
				return nil, fmt.Errorf("%w: reading range: %w", errIndexed, eofErr(err))
			}
			if nl[0] != '\n' {
				return nil, fmt.Errorf("%w: expected newline after wrapped line, got %q", ErrFormat, nl[0])
			}
			col = 0
		}
	}

	return out, nil
}

// eofErr normalizes a short read to io.ErrUnexpectedEOF.
func eofErr(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// findIndexFile locates a companion index file for path, trying
// path + "." + ext and then the path with its final extension replaced by
// ext.
func findIndexFile(path, ext string) (string, bool) {
	direct := path + "." + ext
	if _, err := os.Stat(direct); err == nil {
		return direct, true
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	stemIndex := stem + "." + ext
	if _, err := os.Stat(stemIndex); err == nil {
		return stemIndex, true
	}

	return "", false
}
