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

// Package remote presents an HTTP(S) resource as a seekable byte stream.
// Data is fetched with ranged GET requests in fixed-size blocks which are
// cached for the life of the reader. The block size matches the maximum
// BGZF block size so a BGZF header fetch touches at most two cache blocks.
package remote

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// DefaultBlockSize is the default cache block size.
const DefaultBlockSize int64 = 64 * 1024

var (
	// errRemote is the base error for all remote errors.
	errRemote = errors.New("remote")

	// ErrHTTP indicates an unexpected response from the remote server.
	ErrHTTP = fmt.Errorf("%w: unexpected response", errRemote)

	errUnsupportedSeek = fmt.Errorf("%w: unsupported seek mode", errRemote)
	errNegativeOffset  = fmt.Errorf("%w: negative offset", errRemote)
)

// Option is an optional argument to New.
type Option func(*Reader)

// WithBlockSize sets the cache block size. Larger blocks reduce the number
// of HTTP requests but use more memory.
func WithBlockSize(size int64) Option {
	return func(r *Reader) {
		r.blockSize = size
	}
}

// WithClient sets the HTTP client used for all requests.
func WithClient(client *http.Client) Option {
	return func(r *Reader) {
		r.client = client
	}
}

// Reader reads an HTTP(S) resource as a seekable byte stream. It
// implements [io.Reader] and [io.Seeker].
//
// Blocks are cached on first fetch and never evicted. The cache is guarded
// by a mutex so a Reader value may be shared, though the read position is
// not: concurrent readers should each hold their own Reader, which has its
// own cache, or serialize access.
type Reader struct {
	url       string
	client    *http.Client
	blockSize int64
	size      int64
	pos       int64

	mu    sync.Mutex
	cache map[int64][]byte
}

// New returns a new remote [Reader] for the given URL. The resource size
// is learned with a HEAD request; a missing Content-Length is an error.
func New(url string, opts ...Option) (*Reader, error) {
	r := &Reader{
		url:       url,
		client:    http.DefaultClient,
		blockSize: DefaultBlockSize,
		cache:     map[int64][]byte{},
	}
	for _, o := range opts {
		o(r)
	}

	resp, err := r.client.Head(url)
	if err != nil {
		return nil, fmt.Errorf("%w: HEAD %q: %w", errRemote, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HEAD %q: status %d", ErrHTTP, url, resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return nil, fmt.Errorf("%w: HEAD %q: missing Content-Length", ErrHTTP, url)
	}
	r.size = resp.ContentLength

	return r, nil
}

// Size returns the total size of the remote resource.
func (r *Reader) Size() int64 {
	return r.size
}

// Read implements [io.Reader]. A read is served from the cache block
// containing the current position and may return fewer bytes than
// requested at a block boundary.
func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= r.size {
		return 0, io.EOF
	}
	if rem := r.size - r.pos; int64(len(p)) > rem {
		p = p[:rem]
	}

	base := (r.pos / r.blockSize) * r.blockSize
	data, err := r.block(base)
	if err != nil {
		return 0, err
	}

	off := int(r.pos - base)
	if off >= len(data) {
		return 0, fmt.Errorf("%w: short block at offset %d: %w", ErrHTTP, base, io.ErrUnexpectedEOF)
	}
	n := copy(p, data[off:])
	r.pos += int64(n)
	return n, nil
}

// Seek implements [io.Seeker]. Seeking does not trigger a network request.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.pos + offset
	case io.SeekEnd:
		target = r.size + offset
	default:
		return r.pos, fmt.Errorf("%w: %v", errUnsupportedSeek, whence)
	}
	if target < 0 {
		return r.pos, errNegativeOffset
	}
	r.pos = target
	return r.pos, nil
}

// block returns the cache block starting at base, fetching it if absent.
func (r *Reader) block(base int64) ([]byte, error) {
	r.mu.Lock()
	data, ok := r.cache[base]
	r.mu.Unlock()
	if ok {
		return data, nil
	}

	data, err := r.fetchBlock(base)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[base] = data
	r.mu.Unlock()
	return data, nil
}

// fetchBlock issues a ranged GET for the block starting at base.
func (r *Reader) fetchBlock(base int64) ([]byte, error) {
	end := base + r.blockSize - 1
	if last := r.size - 1; end > last {
		end = last
	}

	req, err := http.NewRequest(http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errRemote, err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", base, end))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %q: %w", errRemote, r.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("%w: GET %q: status %d", ErrHTTP, r.url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", errRemote, err)
	}
	return data, nil
}
