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
	"errors"
	"fmt"
	"io"
)

// Format is the detected sequence file format.
type Format int

const (
	// FormatUnknown indicates that the format could not be detected.
	FormatUnknown Format = iota

	// FormatFASTA indicates FASTA formatted data.
	FormatFASTA

	// FormatFASTQ indicates FASTQ formatted data.
	FormatFASTQ

	// FormatEOF indicates that the input is empty.
	FormatEOF
)

// String implements [fmt.Stringer].
func (f Format) String() string {
	switch f {
	case FormatFASTA:
		return "FASTA"
	case FormatFASTQ:
		return "FASTQ"
	case FormatEOF:
		return "EOF"
	default:
		return "unknown"
	}
}

// Peek determines the file format from the next byte of the reader without
// consuming it. An input with no bytes available is reported as
// [FormatEOF]. Any leading byte other than '>' or '@' is a format error.
func Peek(br *bufio.Reader) (Format, byte, error) {
	b, err := br.Peek(1)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return FormatEOF, 0, nil
		}
		return FormatUnknown, 0, err
	}
	switch b[0] {
	case '>':
		return FormatFASTA, b[0], nil
	case '@':
		return FormatFASTQ, b[0], nil
	default:
		return FormatUnknown, b[0], fmt.Errorf("%w: expected '>' or '@', got %q", ErrFormat, b[0])
	}
}

// NewRecord detects the format of the reader and returns an empty record of
// the matching type. It returns [io.EOF] if the input is empty.
func NewRecord(br *bufio.Reader) (Record, error) {
	format, _, err := Peek(br)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatFASTA:
		return &FastARecord{}, nil
	case FormatFASTQ:
		return &FastQRecord{}, nil
	default:
		return nil, io.EOF
	}
}
