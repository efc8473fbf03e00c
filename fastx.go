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

// Package fastx implements reading of FASTA and FASTQ sequence files.
// FASTA and FASTQ are text formats used in bioinformatics to store
// nucleotide or protein sequences, optionally with per-base quality scores.
// See: https://en.wikipedia.org/wiki/FASTA_format
// See: https://en.wikipedia.org/wiki/FASTQ_format
//
// Records returned by the ForEach drivers are reused between callback
// invocations. Callers must copy any field they wish to retain.
//
// Unless otherwise informed clients should not assume implementations in
// this package are safe for parallel execution.
package fastx
