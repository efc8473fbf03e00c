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
)

// FastAIterator iterates over the records of a FASTA stream. Each call to
// Next allocates a fresh record so records may be retained by the caller.
// Iteration stops at the first error.
type FastAIterator struct {
	br   *bufio.Reader
	rec  *FastARecord
	err  error
	done bool
}

// NewFastAIterator returns an iterator over the FASTA records of br.
func NewFastAIterator(br *bufio.Reader) *FastAIterator {
	return &FastAIterator{br: br}
}

// Next advances to the next record. It returns false at end-of-input or on
// error; check Err after iteration completes.
func (it *FastAIterator) Next() bool {
	if it.done {
		return false
	}
	rec := &FastARecord{}
	n, err := rec.Read(it.br)
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if n == 0 {
		it.done = true
		return false
	}
	it.rec = rec
	return true
}

// Record returns the record read by the last successful call to Next.
func (it *FastAIterator) Record() *FastARecord {
	return it.rec
}

// Err returns the first error encountered during iteration, if any.
func (it *FastAIterator) Err() error {
	return it.err
}

// FastQIterator iterates over the records of a FASTQ stream. Each call to
// Next allocates a fresh record so records may be retained by the caller.
// Iteration stops at the first error.
type FastQIterator struct {
	br   *bufio.Reader
	rec  *FastQRecord
	err  error
	done bool
}

// NewFastQIterator returns an iterator over the FASTQ records of br.
func NewFastQIterator(br *bufio.Reader) *FastQIterator {
	return &FastQIterator{br: br}
}

// Next advances to the next record. It returns false at end-of-input or on
// error; check Err after iteration completes.
func (it *FastQIterator) Next() bool {
	if it.done {
		return false
	}
	rec := &FastQRecord{}
	n, err := rec.Read(it.br)
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	if n == 0 {
		it.done = true
		return false
	}
	it.rec = rec
	return true
}

// Record returns the record read by the last successful call to Next.
func (it *FastQIterator) Record() *FastQRecord {
	return it.rec
}

// Err returns the first error encountered during iteration, if any.
func (it *FastQIterator) Err() error {
	return it.err
}

// FastAForEach calls fn for each FASTA record of br. The record passed to
// fn is reused between invocations; fn must copy any data it retains.
func FastAForEach(br *bufio.Reader, fn func(*FastARecord)) error {
	var rec FastARecord
	for {
		n, err := rec.Read(br)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		fn(&rec)
	}
}

// FastQForEach calls fn for each FASTQ record of br. The record passed to
// fn is reused between invocations; fn must copy any data it retains.
func FastQForEach(br *bufio.Reader, fn func(*FastQRecord)) error {
	var rec FastQRecord
	for {
		n, err := rec.Read(br)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		fn(&rec)
	}
}

// ForEach detects the format of br and drives the matching callback with a
// reused record. Empty input is not an error.
func ForEach(br *bufio.Reader, fastaFn func(*FastARecord), fastqFn func(*FastQRecord)) error {
	format, _, err := Peek(br)
	if err != nil {
		return err
	}
	switch format {
	case FormatFASTA:
		return FastAForEach(br, fastaFn)
	case FormatFASTQ:
		return FastQForEach(br, fastqFn)
	default:
		return nil
	}
}
