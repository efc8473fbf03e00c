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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestFastARecord_Read(t *testing.T) {
	t.Parallel()

	br := bufio.NewReader(strings.NewReader(">a\nAGTC\n>b\nTAGC\nTTTT\n>c\nGCTA"))

	var rec FastARecord

	n, err := rec.Read(br)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n == 0 {
		t.Fatal("Read: unexpected EOF")
	}
	if diff := cmp.Diff("a", rec.Name()); diff != "" {
		t.Errorf("Name (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte("AGTC"), rec.Seq()); diff != "" {
		t.Errorf("Seq (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte("AGTC"), rec.Raw()); diff != "" {
		t.Errorf("Raw (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(4, rec.SeqLen()); diff != "" {
		t.Errorf("SeqLen (-want, +got):\n%s", diff)
	}

	n, err = rec.Read(br)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n == 0 {
		t.Fatal("Read: unexpected EOF")
	}
	if diff := cmp.Diff("b", rec.Name()); diff != "" {
		t.Errorf("Name (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte("TAGCTTTT"), rec.Seq()); diff != "" {
		t.Errorf("Seq (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte("TAGC\nTTTT"), rec.Raw()); diff != "" {
		t.Errorf("Raw (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(8, rec.SeqLen()); diff != "" {
		t.Errorf("SeqLen (-want, +got):\n%s", diff)
	}

	n, err = rec.Read(br)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n == 0 {
		t.Fatal("Read: unexpected EOF")
	}
	if diff := cmp.Diff("c", rec.Name()); diff != "" {
		t.Errorf("Name (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte("GCTA"), rec.Seq()); diff != "" {
		t.Errorf("Seq (-want, +got):\n%s", diff)
	}

	n, err = rec.Read(br)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(0, n); diff != "" {
		t.Errorf("Read at EOF (-want, +got):\n%s", diff)
	}
}

func TestFastARecord_Read_errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data string
		err  error
	}{
		{
			name: "no record separator",
			data: "a\nAGTC\n",
			err:  ErrFormat,
		},
		{
			name: "quality line instead of fasta",
			data: "@a\nAGTC\n+\n!!!!\n",
			err:  ErrFormat,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var rec FastARecord
			_, err := rec.Read(bufio.NewReader(strings.NewReader(tc.data)))
			if diff := cmp.Diff(tc.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("Read (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestFastARecord_views(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string

		header string
		raw    string

		id     string
		desc   string
		seq    string
		seqLen int
	}{
		{
			name:   "id only",
			header: "chr1",
			raw:    "ACGT",
			id:     "chr1",
			desc:   "",
			seq:    "ACGT",
			seqLen: 4,
		},
		{
			name:   "id and description",
			header: "chr1 Homo sapiens chromosome 1",
			raw:    "ACGT\nACGT",
			id:     "chr1",
			desc:   "Homo sapiens chromosome 1",
			seq:    "ACGTACGT",
			seqLen: 8,
		},
		{
			name:   "trailing line",
			header: "x",
			raw:    "AC\nGT\nAA",
			id:     "x",
			desc:   "",
			seq:    "ACGTAA",
			seqLen: 6,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := NewFastARecord(tc.header, []byte(tc.raw))

			if diff := cmp.Diff(tc.id, rec.ID()); diff != "" {
				t.Errorf("ID (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.desc, rec.Desc()); diff != "" {
				t.Errorf("Desc (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff([]byte(tc.seq), rec.Seq()); diff != "" {
				t.Errorf("Seq (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.seqLen, rec.SeqLen()); diff != "" {
				t.Errorf("SeqLen (-want, +got):\n%s", diff)
			}
			if bytes.IndexByte(rec.Seq(), '\n') >= 0 {
				t.Errorf("Seq contains newline: %q", rec.Seq())
			}
		})
	}
}

func TestFastQRecord_Read(t *testing.T) {
	t.Parallel()

	br := bufio.NewReader(strings.NewReader(
		"@a\nAGTC\n+\n'&'*+\n@b\nTAGCTTTT\n+\n'&'*+'&'*+\n@c\nGCTA\n+\n'&'*+",
	))

	var rec FastQRecord

	want := []struct {
		name string
		seq  string
		qual string
	}{
		{name: "a", seq: "AGTC", qual: "'&'*+"},
		{name: "b", seq: "TAGCTTTT", qual: "'&'*+'&'*+"},
		{name: "c", seq: "GCTA", qual: "'&'*+"},
	}

	for _, w := range want {
		n, err := rec.Read(br)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if n == 0 {
			t.Fatal("Read: unexpected EOF")
		}
		if diff := cmp.Diff(w.name, rec.Name()); diff != "" {
			t.Errorf("Name (-want, +got):\n%s", diff)
		}
		if diff := cmp.Diff([]byte(w.seq), rec.Seq()); diff != "" {
			t.Errorf("Seq (-want, +got):\n%s", diff)
		}
		if diff := cmp.Diff([]byte(w.qual), rec.Qual()); diff != "" {
			t.Errorf("Qual (-want, +got):\n%s", diff)
		}
		if diff := cmp.Diff("", rec.Comment()); diff != "" {
			t.Errorf("Comment (-want, +got):\n%s", diff)
		}

		// Well-formed records have matching sequence and quality lengths.
		if diff := cmp.Diff(len(rec.Seq()), len(rec.Qual())); diff != "" {
			t.Errorf("len(Qual) (-want, +got):\n%s", diff)
		}
		if strings.HasPrefix(rec.Name(), "@") {
			t.Errorf("Name starts with '@': %q", rec.Name())
		}
		if strings.HasPrefix(rec.Comment(), "+") {
			t.Errorf("Comment starts with '+': %q", rec.Comment())
		}
	}

	n, err := rec.Read(br)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(0, n); diff != "" {
		t.Errorf("Read at EOF (-want, +got):\n%s", diff)
	}
}

func TestFastQRecord_Read_errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data string
		err  error
	}{
		{
			name: "missing at sign",
			data: "a\nAGTC\n+\n!!!!\n",
			err:  ErrFormat,
		},
		{
			name: "missing plus",
			data: "@a\nAGTC\n!!!!\n",
			err:  ErrFormat,
		},
		{
			name: "truncated after header",
			data: "@a\n",
			err:  ErrUnexpectedEOF,
		},
		{
			name: "truncated after sequence",
			data: "@a\nAGTC\n",
			err:  ErrUnexpectedEOF,
		},
		{
			name: "truncated after comment",
			data: "@a\nAGTC\n+\n",
			err:  ErrUnexpectedEOF,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var rec FastQRecord
			_, err := rec.Read(bufio.NewReader(strings.NewReader(tc.data)))
			if diff := cmp.Diff(tc.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("Read (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestFastQRecord_Read_crlf(t *testing.T) {
	t.Parallel()

	br := bufio.NewReader(strings.NewReader("@a desc\r\nAGTC\r\n+c\r\n!!!!\r\n"))

	var rec FastQRecord
	n, err := rec.Read(br)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n == 0 {
		t.Fatal("Read: unexpected EOF")
	}

	if diff := cmp.Diff("a desc", rec.Name()); diff != "" {
		t.Errorf("Name (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff("a", rec.ID()); diff != "" {
		t.Errorf("ID (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff("desc", rec.Desc()); diff != "" {
		t.Errorf("Desc (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte("AGTC"), rec.Seq()); diff != "" {
		t.Errorf("Seq (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff("c", rec.Comment()); diff != "" {
		t.Errorf("Comment (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte("!!!!"), rec.Qual()); diff != "" {
		t.Errorf("Qual (-want, +got):\n%s", diff)
	}
}

// TestFastARecord_roundTrip checks that re-emitting parsed records
// reproduces the input modulo line wrapping.
func TestFastARecord_roundTrip(t *testing.T) {
	t.Parallel()

	input := ">a\nAGTC\n>b\nTAGCTTTT\n>c\nGCTA\n"

	br := bufio.NewReader(strings.NewReader(input))
	var out bytes.Buffer
	var rec FastARecord
	for {
		n, err := rec.Read(br)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if n == 0 {
			break
		}
		out.WriteString(rec.String())
		out.WriteByte('\n')
	}

	if diff := cmp.Diff(input, out.String()); diff != "" {
		t.Errorf("round trip (-want, +got):\n%s", diff)
	}
}

func TestReadUntilBefore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		data  string
		delim byte

		want string
		rest string
	}{
		{
			name:  "delimiter in stream",
			data:  "AGTC\n>b",
			delim: '>',
			want:  "AGTC\n",
			rest:  ">b",
		},
		{
			name:  "no delimiter",
			data:  "AGTC",
			delim: '>',
			want:  "AGTC",
			rest:  "",
		},
		{
			name:  "empty",
			data:  "",
			delim: '>',
			want:  "",
			rest:  "",
		},
		{
			name:  "leading delimiter",
			data:  ">x",
			delim: '>',
			want:  "",
			rest:  ">x",
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			br := bufio.NewReader(strings.NewReader(tc.data))
			var buf []byte
			n, err := readUntilBefore(br, tc.delim, &buf)
			if err != nil {
				t.Fatalf("readUntilBefore: %v", err)
			}
			if diff := cmp.Diff(len(tc.want), n); diff != "" {
				t.Errorf("n (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.want, string(buf)); diff != "" {
				t.Errorf("buf (-want, +got):\n%s", diff)
			}

			rest := make([]byte, len(tc.rest)+1)
			m, _ := br.Read(rest)
			if diff := cmp.Diff(tc.rest, string(rest[:m])); diff != "" {
				t.Errorf("rest (-want, +got):\n%s", diff)
			}
		})
	}
}

// TestReadUntilBefore_smallBuffer exercises refills across the reader's
// internal buffer boundary.
func TestReadUntilBefore_smallBuffer(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("ACGT", 100) + "\n"
	br := bufio.NewReaderSize(strings.NewReader(payload+">next"), 16)

	var buf []byte
	n, err := readUntilBefore(br, '>', &buf)
	if err != nil {
		t.Fatalf("readUntilBefore: %v", err)
	}
	if diff := cmp.Diff(len(payload), n); diff != "" {
		t.Errorf("n (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(payload, string(buf)); diff != "" {
		t.Errorf("buf (-want, +got):\n%s", diff)
	}
}
