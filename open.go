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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
)

// defaultBufferSize is the read buffer size used by Open.
const defaultBufferSize = 512 * 1024

// File is a buffered sequence file opened with [Open]. Records are read
// through the embedded [bufio.Reader].
type File struct {
	*bufio.Reader

	closers []io.Closer
}

// Open opens the sequence file at path for reading. Files with a ".gz"
// extension are decompressed transparently. Note that plain gzip streams
// are supported here; random access to BGZF archives is provided by the
// indexed package.
//
// It is the caller's responsibility to call [File.Close] on the returned
// [File] when done.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening file: %w", errFastx, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: reading gzip header: %w", errFastx, err)
		}
		return &File{
			Reader:  bufio.NewReaderSize(zr, defaultBufferSize),
			closers: []io.Closer{zr, f},
		}, nil
	}

	return &File{
		Reader:  bufio.NewReaderSize(f, defaultBufferSize),
		closers: []io.Closer{f},
	}, nil
}

// Close closes the file and any decompressor wrapping it.
func (f *File) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
