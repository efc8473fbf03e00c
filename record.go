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

package fastx

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// errFastx is the base error for all go-fastx errors.
	errFastx = errors.New("fastx")

	// ErrFormat indicates malformed FASTA or FASTQ data.
	ErrFormat = fmt.Errorf("%w: invalid format", errFastx)

	// ErrUnexpectedEOF indicates that the input ended in the middle of a
	// record.
	ErrUnexpectedEOF = fmt.Errorf("%w: unexpected end of input", errFastx)
)

// Record is the common interface implemented by [FastARecord] and
// [FastQRecord].
type Record interface {
	// Read parses the next record from the reader into the receiver,
	// resetting its buffers first. It returns the number of bytes consumed,
	// or 0 on clean end-of-input.
	Read(br *bufio.Reader) (int, error)

	// Name returns the full header line without the leading '>' or '@'.
	Name() string

	// ID returns the part of the name before the first space.
	ID() string

	// Desc returns the part of the name after the first space, or the
	// empty string if there is none.
	Desc() string

	// Raw returns the raw sequence bytes, which may contain newlines for
	// multi-line FASTA sequences. The slice is only valid until the next
	// call to Read.
	Raw() []byte

	// Seq returns the sequence with line terminators removed.
	Seq() []byte

	// SeqLen returns the sequence length excluding line terminators.
	SeqLen() int
}

// FastARecord is a FASTA sequence record.
//
// A record consists of a header line starting with '>' followed by sequence
// data that may span multiple lines.
type FastARecord struct {
	name string
	raw  []byte

	// lineBuf is scratch space for reading the header line.
	lineBuf []byte
}

// NewFastARecord returns a FASTA record with the given header and raw
// sequence payload.
func NewFastARecord(name string, raw []byte) *FastARecord {
	return &FastARecord{
		name: name,
		raw:  raw,
	}
}

// Read implements [Record.Read].
//
// The reader must be positioned at the start of a record. The record
// separator '>' of the following record is left unconsumed.
func (r *FastARecord) Read(br *bufio.Reader) (int, error) {
	r.name = ""
	r.raw = r.raw[:0]

	b, err := br.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, err
	}
	size := 1
	if b != '>' {
		return 0, fmt.Errorf("%w: record separator %q does not match '>'", ErrFormat, b)
	}

	r.lineBuf = r.lineBuf[:0]
	n, err := readLine(br, &r.lineBuf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	size += n
	r.name = string(trimNewline(r.lineBuf))

	n, err = readUntilBefore(br, '>', &r.raw)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// An empty payload at the end of the input reads as end-of-input;
		// an empty payload followed by another record is a record.
		if _, err := br.Peek(1); err != nil {
			return 0, nil
		}
	}
	size += n
	r.raw = trimNewline(r.raw)

	return size, nil
}

// Name implements [Record.Name].
func (r *FastARecord) Name() string {
	return r.name
}

// ID implements [Record.ID].
func (r *FastARecord) ID() string {
	return recordID(r.name)
}

// Desc implements [Record.Desc].
func (r *FastARecord) Desc() string {
	return recordDesc(r.name)
}

// Raw implements [Record.Raw]. The returned slice may contain embedded
// newlines for sequences wrapped across multiple lines.
func (r *FastARecord) Raw() []byte {
	return r.raw
}

// Seq implements [Record.Seq]. It returns a copy of the raw payload with
// all newline bytes removed.
func (r *FastARecord) Seq() []byte {
	seq := make([]byte, 0, len(r.raw))
	rest := r.raw
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			seq = append(seq, rest...)
			return seq
		}
		seq = append(seq, rest[:i]...)
		rest = rest[i+1:]
	}
}

// SeqLen implements [Record.SeqLen].
func (r *FastARecord) SeqLen() int {
	return len(r.raw) - bytes.Count(r.raw, []byte{'\n'})
}

// Lines returns the raw sequence payload split into individual lines.
func (r *FastARecord) Lines() [][]byte {
	return bytes.Split(r.raw, []byte{'\n'})
}

// String implements [fmt.Stringer].
func (r *FastARecord) String() string {
	return fmt.Sprintf(">%s\n%s", r.name, r.Seq())
}

// FastQRecord is a FASTQ sequence record.
//
// A record consists of four lines: a header starting with '@', the
// sequence, a comment line starting with '+', and per-base quality scores.
// Multi-line sequences are not supported.
type FastQRecord struct {
	name    string
	seq     []byte
	comment string
	qual    []byte

	// lineBuf is scratch space for reading the header and comment lines.
	lineBuf []byte
}

// Read implements [Record.Read].
func (r *FastQRecord) Read(br *bufio.Reader) (int, error) {
	r.name = ""
	r.seq = r.seq[:0]
	r.comment = ""
	r.qual = r.qual[:0]

	r.lineBuf = r.lineBuf[:0]
	size, err := readLine(br, &r.lineBuf)
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, nil
	}
	name := trimNewline(r.lineBuf)
	if len(name) == 0 {
		return 0, fmt.Errorf("%w: empty header", ErrFormat)
	}
	if name[0] != '@' {
		return 0, fmt.Errorf("%w: header does not start with '@'", ErrFormat)
	}
	r.name = string(name[1:])

	n, err := readLine(br, &r.seq)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: truncated sequence", ErrUnexpectedEOF)
	}
	size += n
	r.seq = trimNewline(r.seq)

	r.lineBuf = r.lineBuf[:0]
	n, err = readLine(br, &r.lineBuf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: truncated comment", ErrUnexpectedEOF)
	}
	size += n
	comment := trimNewline(r.lineBuf)
	if len(comment) == 0 || comment[0] != '+' {
		return 0, fmt.Errorf("%w: comment does not start with '+'", ErrFormat)
	}
	r.comment = string(comment[1:])

	n, err = readLine(br, &r.qual)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: truncated quality", ErrUnexpectedEOF)
	}
	size += n
	r.qual = trimNewline(r.qual)

	return size, nil
}

// Name implements [Record.Name].
func (r *FastQRecord) Name() string {
	return r.name
}

// ID implements [Record.ID].
func (r *FastQRecord) ID() string {
	return recordID(r.name)
}

// Desc implements [Record.Desc].
func (r *FastQRecord) Desc() string {
	return recordDesc(r.name)
}

// Raw implements [Record.Raw]. FASTQ sequences are single-line so the raw
// payload never contains newlines.
func (r *FastQRecord) Raw() []byte {
	return r.seq
}

// Seq implements [Record.Seq]. The slice is only valid until the next call
// to Read.
func (r *FastQRecord) Seq() []byte {
	return r.seq
}

// SeqLen implements [Record.SeqLen].
func (r *FastQRecord) SeqLen() int {
	return len(r.seq)
}

// Comment returns the content of the comment line after the '+'.
func (r *FastQRecord) Comment() string {
	return r.comment
}

// Qual returns the per-base quality scores. The slice is only valid until
// the next call to Read.
func (r *FastQRecord) Qual() []byte {
	return r.qual
}

// String implements [fmt.Stringer].
func (r *FastQRecord) String() string {
	return fmt.Sprintf("@%s\n%s\n+%s\n%s", r.name, r.seq, r.comment, r.qual)
}

// recordID returns the prefix of name before the first space.
func recordID(name string) string {
	i := strings.IndexByte(name, ' ')
	if i < 0 {
		return name
	}
	return name[:i]
}

// recordDesc returns the suffix of name after the first space.
func recordDesc(name string) string {
	i := strings.IndexByte(name, ' ')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

// trimNewline strips trailing '\n' and '\r' bytes.
func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

// readLine appends the next line, including its terminator, to buf. It
// returns the number of bytes read; 0 means end-of-input. The final line
// of the input need not be terminated.
func readLine(br *bufio.Reader, buf *[]byte) (int, error) {
	read := 0
	for {
		chunk, err := br.ReadSlice('\n')
		*buf = append(*buf, chunk...)
		read += len(chunk)
		switch {
		case err == nil:
			return read, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return read, nil
		default:
			return read, err
		}
	}
}

// readUntilBefore appends bytes to buf up to, but not including, the next
// occurrence of delim. The delimiter is left in the reader for the next
// read. It scans the reader's fill buffer directly rather than reading one
// byte at a time.
func readUntilBefore(br *bufio.Reader, delim byte, buf *[]byte) (int, error) {
	read := 0
	for {
		if br.Buffered() == 0 {
			if _, err := br.Peek(1); err != nil {
				if errors.Is(err, io.EOF) {
					return read, nil
				}
				return read, err
			}
		}
		chunk, err := br.Peek(br.Buffered())
		if err != nil {
			return read, err
		}
		if i := bytes.IndexByte(chunk, delim); i >= 0 {
			*buf = append(*buf, chunk[:i]...)
			if _, err := br.Discard(i); err != nil {
				return read, err
			}
			return read + i, nil
		}
		*buf = append(*buf, chunk...)
		if _, err := br.Discard(len(chunk)); err != nil {
			return read, err
		}
		read += len(chunk)
	}
}
