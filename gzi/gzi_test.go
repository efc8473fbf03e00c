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

package gzi

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// marshal encodes entries in the .gzi wire format.
func marshal(entries []Entry) []byte {
	data := make([]byte, 8+16*len(entries))
	binary.LittleEndian.PutUint64(data, uint64(len(entries)))
	off := 8
	for _, e := range entries {
		binary.LittleEndian.PutUint64(data[off:], e.Compressed)
		binary.LittleEndian.PutUint64(data[off+8:], e.Uncompressed)
		off += 16
	}
	return data
}

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data []byte

		entries []Entry
		err     error
	}{
		{
			name:    "no entries",
			data:    marshal(nil),
			entries: nil,
		},
		{
			name: "single entry",
			data: marshal([]Entry{
				{Compressed: 100, Uncompressed: 0},
			}),
			entries: []Entry{
				{Compressed: 100, Uncompressed: 0},
			},
		},
		{
			name: "multiple entries",
			data: marshal([]Entry{
				{Compressed: 0, Uncompressed: 0},
				{Compressed: 100, Uncompressed: 10000},
				{Compressed: 250, Uncompressed: 20000},
			}),
			entries: []Entry{
				{Compressed: 0, Uncompressed: 0},
				{Compressed: 100, Uncompressed: 10000},
				{Compressed: 250, Uncompressed: 20000},
			},
		},
		{
			name: "data too short",
			data: []byte{0x1, 0x0, 0x0},
			err:  ErrParse,
		},
		{
			name: "truncated entries",
			data: marshal([]Entry{
				{Compressed: 0, Uncompressed: 0},
			})[:16],
			err: ErrParse,
		},
		{
			name: "not sorted",
			data: marshal([]Entry{
				{Compressed: 0, Uncompressed: 10000},
				{Compressed: 100, Uncompressed: 0},
			}),
			err: ErrParse,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			idx, err := Parse(tc.data)
			if diff := cmp.Diff(tc.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("Parse (-want, +got):\n%s", diff)
			}
			if err != nil {
				return
			}

			if diff := cmp.Diff(tc.entries, idx.Entries(), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Entries (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(len(tc.entries), idx.Len()); diff != "" {
				t.Errorf("Len (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestIndex_CompressedFor(t *testing.T) {
	t.Parallel()

	idx, err := NewIndex([]Entry{
		{Compressed: 0, Uncompressed: 0},
		{Compressed: 100, Uncompressed: 10000},
		{Compressed: 250, Uncompressed: 20000},
		{Compressed: 400, Uncompressed: 30000},
	})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	testCases := []struct {
		uncompressed uint64
		want         uint64
	}{
		{uncompressed: 0, want: 0},
		{uncompressed: 5000, want: 0},
		{uncompressed: 10000, want: 100},
		{uncompressed: 15000, want: 100},
		{uncompressed: 25000, want: 250},
		{uncompressed: 40000, want: 400},
	}

	for _, tc := range testCases {
		got, ok := idx.CompressedFor(tc.uncompressed)
		if !ok {
			t.Fatalf("CompressedFor(%d): no result", tc.uncompressed)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("CompressedFor(%d) (-want, +got):\n%s", tc.uncompressed, diff)
		}
	}
}

func TestIndex_CompressedFor_empty(t *testing.T) {
	t.Parallel()

	idx, err := NewIndex(nil)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	if _, ok := idx.CompressedFor(0); ok {
		t.Error("CompressedFor on empty index: ok")
	}
	if !idx.IsEmpty() {
		t.Error("IsEmpty: false")
	}
}

func TestIndex_CompressedFor_beforeFirst(t *testing.T) {
	t.Parallel()

	// The implicit first block at (0, 0) is not stored; queries before the
	// first stored entry resolve to it.
	idx, err := NewIndex([]Entry{
		{Compressed: 100, Uncompressed: 10000},
		{Compressed: 250, Uncompressed: 20000},
	})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	got, ok := idx.CompressedFor(5000)
	if !ok {
		t.Fatal("CompressedFor(5000): no result")
	}
	if diff := cmp.Diff(uint64(100), got); diff != "" {
		t.Errorf("CompressedFor(5000) (-want, +got):\n%s", diff)
	}
}

func TestIndex_UncompressedFor(t *testing.T) {
	t.Parallel()

	idx, err := NewIndex([]Entry{
		{Compressed: 0, Uncompressed: 0},
		{Compressed: 100, Uncompressed: 10000},
		{Compressed: 250, Uncompressed: 20000},
	})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	testCases := []struct {
		compressed uint64
		want       uint64
		ok         bool
	}{
		{compressed: 0, want: 0, ok: true},
		{compressed: 50, want: 0, ok: true},
		{compressed: 100, want: 10000, ok: true},
		{compressed: 150, want: 10000, ok: true},
		{compressed: 1000, want: 20000, ok: true},
	}

	for _, tc := range testCases {
		got, ok := idx.UncompressedFor(tc.compressed)
		if diff := cmp.Diff(tc.ok, ok); diff != "" {
			t.Fatalf("UncompressedFor(%d) ok (-want, +got):\n%s", tc.compressed, diff)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("UncompressedFor(%d) (-want, +got):\n%s", tc.compressed, diff)
		}
	}
}
