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

// Package bgzf implements reading of the Blocked GZip Format (BGZF) used
// by bgzip and the htslib family of tools. A BGZF stream is a
// concatenation of gzip members, each holding at most 64 KiB of
// uncompressed data, which makes every block independently decodable.
// Combined with a .gzi index this allows seeking to arbitrary uncompressed
// offsets.
// See: https://samtools.github.io/hts-specs/SAMv1.pdf
package bgzf

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ianlewis/go-fastx/gzi"
)

var (
	// errBgzf is the base error for all bgzf errors.
	errBgzf = errors.New("bgzf")

	// ErrHeader indicates an error with BGZF block header data.
	ErrHeader = fmt.Errorf("%w: invalid header", errBgzf)

	// ErrBlock indicates a truncated or undecodable BGZF block.
	ErrBlock = fmt.Errorf("%w: invalid block", errBgzf)

	errNoIndex         = fmt.Errorf("%w: no index available for seeking", errBgzf)
	errUnsupportedSeek = fmt.Errorf("%w: unsupported seek mode", errBgzf)
	errNegativeOffset  = fmt.Errorf("%w: negative offset", errBgzf)
)

// gzip header values.
//
//nolint:godot // diagram
/*
+---+---+---+---+---+---+---+---+---+---+
|ID1|ID2|CM |FLG|     MTIME     |XFL|OS |
+---+---+---+---+---+---+---+---+---+---+
*/
const (
	// hdrGzipID1 is the gzip header value for ID1.
	hdrGzipID1 byte = 0x1f

	// hdrGzipID2 is the gzip header value for ID2.
	hdrGzipID2 byte = 0x8b

	// hdrDeflateCM is the deflate CM (Compression method).
	hdrDeflateCM byte = 0x08

	// flgEXTRA is the FEXTRA flag bit. BGZF requires it.
	flgEXTRA = byte(1 << 2)
)

const (
	// hdrBgzfSI1 is the BGZF subfield ID value SI1.
	hdrBgzfSI1 = byte('B')

	// hdrBgzfSI2 is the BGZF subfield ID value SI2.
	hdrBgzfSI2 = byte('C')
)

// MaxBlockSize is the maximum decompressed size of a BGZF block.
const MaxBlockSize = 64 * 1024

// hdrSize is the fixed gzip header size up to and including XLEN.
const hdrSize = 12

// readCloseResetter is an interface that wraps the io.ReadCloser and
// flate.Resetter interfaces. This is used because flate.NewReader
// unfortunately returns an io.ReadCloser instead of a concrete type.
type readCloseResetter interface {
	io.ReadCloser
	flate.Resetter
}

// Reader reads uncompressed bytes from a BGZF-compressed stream. It
// implements [io.Reader] and, when constructed with a .gzi index via
// [NewIndexedReader], [io.Seeker] over the uncompressed data.
type Reader struct {
	r   io.ReadSeeker
	idx *gzi.Index
	z   readCloseResetter

	// block holds the decompressed bytes of the current block.
	block []byte

	// pos is the read cursor within block.
	pos int

	// base is the uncompressed offset of block[0].
	base int64

	// eof is set when the underlying stream is exhausted.
	eof bool

	// Scratch buffers reused across blocks.
	hdr          [hdrSize]byte
	extra        []byte
	compressed   []byte
	decompressed [MaxBlockSize]byte
}

// NewReader returns a new BGZF [Reader] decompressing data sequentially
// from r. Seeking requires an index; see [NewIndexedReader].
//
// It is the caller's responsibility to call [Reader.Close] on the returned
// [Reader] when done. Close does not close the underlying reader.
func NewReader(r io.ReadSeeker) *Reader {
	fr := flate.NewReader(bytes.NewReader(nil))
	return &Reader{
		r: r,
		z: fr.(readCloseResetter),
	}
}

// NewIndexedReader returns a BGZF [Reader] that can seek to uncompressed
// offsets using the given .gzi index. The underlying reader is rewound to
// the start of the stream.
func NewIndexedReader(r io.ReadSeeker, idx *gzi.Index) (*Reader, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: Seek: %w", errBgzf, err)
	}
	z := NewReader(r)
	z.idx = idx
	return z, nil
}

// Close closes the reader. It does not close the underlying reader.
func (z *Reader) Close() error {
	//nolint:wrapcheck // error does not need to be wrapped
	return z.z.Close()
}

// Pos returns the current position in the uncompressed data.
func (z *Reader) Pos() int64 {
	return z.base + int64(z.pos)
}

// Read implements [io.Reader].
func (z *Reader) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		avail, err := z.fill()
		if err != nil {
			return total, err
		}
		if len(avail) == 0 {
			break
		}
		n := copy(p[total:], avail)
		z.pos += n
		total += n
	}
	if total == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return total, nil
}

// Seek implements [io.Seeker] over the uncompressed data. Only
// [io.SeekStart] and [io.SeekCurrent] are supported. Seeking requires an
// index.
func (z *Reader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = z.Pos() + offset
	default:
		return z.Pos(), fmt.Errorf("%w: %v", errUnsupportedSeek, whence)
	}
	if target < 0 {
		return z.Pos(), errNegativeOffset
	}
	if err := z.seekUncompressed(target); err != nil {
		return z.Pos(), err
	}
	return target, nil
}

// seekUncompressed positions the reader at the given uncompressed offset.
// The index maps the offset to the compressed offset of the enclosing
// block; the block is decompressed and the cursor placed at the intra-block
// position.
func (z *Reader) seekUncompressed(target int64) error {
	if z.idx == nil {
		return errNoIndex
	}

	entry, ok := z.idx.Lookup(uint64(target))
	if !ok {
		return fmt.Errorf("%w: empty index", errNoIndex)
	}
	if uint64(target) < entry.Uncompressed {
		return fmt.Errorf("%w: offset %d precedes the first indexed block", ErrBlock, target)
	}

	if _, err := z.r.Seek(int64(entry.Compressed), io.SeekStart); err != nil {
		return fmt.Errorf("%w: Seek: %w", errBgzf, err)
	}

	// Reset decompression state.
	z.block = nil
	z.pos = 0
	z.base = int64(entry.Uncompressed)
	z.eof = false

	// Decompress blocks until the target position is inside the current
	// block. With a correct index the first block already contains it.
	for z.base+int64(len(z.block)) <= target {
		ok, err := z.readBlock()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: end of stream before offset %d: %w", ErrBlock, target, io.ErrUnexpectedEOF)
		}
	}

	z.pos = int(target - z.base)
	return nil
}

// fill returns the unread remainder of the current block, decompressing
// further blocks as needed. An empty slice means end of stream.
func (z *Reader) fill() ([]byte, error) {
	for z.pos >= len(z.block) {
		if z.eof {
			return nil, nil
		}
		ok, err := z.readBlock()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}
	return z.block[z.pos:], nil
}

// readBlock reads and decompresses the next BGZF block. It returns false
// on a clean end of the underlying stream.
func (z *Reader) readBlock() (bool, error) {
	// Read the fixed header: ID1 ID2 CM FLG MTIME(4) XFL OS XLEN(2).
	// A clean EOF before the first byte means end of stream.
	total := 0
	for total < hdrSize {
		n, err := z.r.Read(z.hdr[total:])
		total += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return false, fmt.Errorf("%w: reading header: %w", errBgzf, err)
		}
		if n == 0 {
			break
		}
	}
	if total == 0 {
		z.eof = true
		return false, nil
	}
	if total < hdrSize {
		return false, fmt.Errorf("%w: incomplete block header: %w", ErrHeader, io.ErrUnexpectedEOF)
	}

	if z.hdr[0] != hdrGzipID1 || z.hdr[1] != hdrGzipID2 {
		return false, fmt.Errorf("%w: ID1,ID2: %x", ErrHeader, z.hdr[0:2])
	}
	if z.hdr[2] != hdrDeflateCM {
		return false, fmt.Errorf("%w: CM: %x", ErrHeader, z.hdr[2])
	}
	if z.hdr[3]&flgEXTRA == 0 {
		return false, fmt.Errorf("%w: no EXTRA field", ErrHeader)
	}

	xlen := int(binary.LittleEndian.Uint16(z.hdr[10:12]))
	if cap(z.extra) < xlen {
		z.extra = make([]byte, xlen)
	}
	z.extra = z.extra[:xlen]
	if _, err := io.ReadFull(z.r, z.extra); err != nil {
		return false, fmt.Errorf("%w: reading EXTRA: %w", ErrBlock, err)
	}

	// Scan the EXTRA sub-fields for the BGZF 'BC' field holding BSIZE,
	// the total block size minus one.
	bsize := -1
	for i := 0; i+4 <= len(z.extra); {
		si1 := z.extra[i]
		si2 := z.extra[i+1]
		slen := int(binary.LittleEndian.Uint16(z.extra[i+2 : i+4]))
		if si1 == hdrBgzfSI1 && si2 == hdrBgzfSI2 && slen >= 2 {
			if i+6 > len(z.extra) {
				return false, fmt.Errorf("%w: truncated BC subfield", ErrHeader)
			}
			bsize = int(binary.LittleEndian.Uint16(z.extra[i+4 : i+6]))
			break
		}
		i += 4 + slen
	}
	if bsize < 0 {
		return false, fmt.Errorf("%w: no BC subfield", ErrHeader)
	}

	// The member is BSIZE+1 bytes total: header, EXTRA, deflate payload,
	// and an 8-byte trailer (CRC32 + ISIZE).
	compressedSize := bsize + 1 - hdrSize - xlen - 8
	if compressedSize <= 0 {
		return false, fmt.Errorf("%w: block size %d, xlen %d", ErrBlock, bsize, xlen)
	}
	if cap(z.compressed) < compressedSize {
		z.compressed = make([]byte, compressedSize)
	}
	z.compressed = z.compressed[:compressedSize]
	if _, err := io.ReadFull(z.r, z.compressed); err != nil {
		return false, fmt.Errorf("%w: reading deflate data: %w", ErrBlock, err)
	}

	// CRC32 and ISIZE are read but not verified.
	var trailer [8]byte
	if _, err := io.ReadFull(z.r, trailer[:]); err != nil {
		return false, fmt.Errorf("%w: reading trailer: %w", ErrBlock, err)
	}

	if err := z.z.Reset(bytes.NewReader(z.compressed), nil); err != nil {
		return false, fmt.Errorf("%w: Reset: %w", errBgzf, err)
	}
	n := 0
	for n < len(z.decompressed) {
		m, err := z.z.Read(z.decompressed[n:])
		n += m
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return false, fmt.Errorf("%w: inflate: %w", ErrBlock, err)
		}
	}

	z.base += int64(len(z.block))
	z.block = z.decompressed[:n]
	z.pos = 0
	return true, nil
}
