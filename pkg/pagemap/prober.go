/*
 * Copyright 2021-2024 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package pagemap resolves virtual pages of a process to the page table
// entries the kernel exposes through the per-process page map channel.
package pagemap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cachecolor/cachecolor/internal/procfs"
	kerrors "github.com/cachecolor/cachecolor/pkg/errors"
	"github.com/cachecolor/cachecolor/pkg/util/va"
)

// Channel is the opened page map interface.
type Channel interface {
	io.ReaderAt
	io.Closer
}

// Opener opens the page map channel at the given path.
type Opener func(path string) (Channel, error)

// OpenReadWrite opens the channel in read/write mode. Only reads are ever
// issued, but some kernels refuse frame numbers to read-only descriptors.
func OpenReadWrite(path string) (Channel, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

// Prober examines the page table entries backing ranges of the process
// virtual address space. Every probe opens the channel, reads the entries
// with a single positioned read and closes the channel again, so each
// result is a fresh point-in-time snapshot.
type Prober struct {
	pid      int
	pageSize uint64
	open     Opener
}

// Option tweaks the prober.
type Option func(*Prober)

// WithPID probes the address space of the given process instead of the calling one.
func WithPID(pid int) Option {
	return func(p *Prober) {
		p.pid = pid
	}
}

// WithPageSize overrides the native page size used to index the channel.
func WithPageSize(size uint64) Option {
	return func(p *Prober) {
		p.pageSize = size
	}
}

// WithOpener replaces the function that opens the channel.
func WithOpener(open Opener) Option {
	return func(p *Prober) {
		p.open = open
	}
}

// NewProber creates a fresh instance of the page map prober.
func NewProber(options ...Option) *Prober {
	p := &Prober{
		pageSize: uint64(os.Getpagesize()),
		open:     OpenReadWrite,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// PageSize returns the native page size the prober indexes the channel with.
func (p *Prober) PageSize() uint64 { return p.pageSize }

// Path returns the location of the page map channel.
func (p *Prober) Path() string { return procfs.Pagemap(p.pid) }

// Probe returns one entry per modeled page of the range starting at base.
// When the modeled page spans straddle native pages, straddle entries are
// read per modeled page and only the first native sub-page is kept. This
// assumes the first sub-page is representative of the whole modeled page,
// which holds for eagerly populated anonymous memory but is not a kernel
// guarantee.
func (p *Prober) Probe(base va.Address, pages, straddle int) (Entries, error) {
	if straddle < 1 {
		return nil, kerrors.Invariant("probe", fmt.Errorf("straddle must be positive, got %d", straddle))
	}
	if pages <= 0 {
		return Entries{}, nil
	}
	if !base.IsAligned(p.pageSize) {
		return nil, kerrors.Invariant("probe", fmt.Errorf("%w: %s to %d", kerrors.ErrMisaligned, base, p.pageSize))
	}
	path := p.Path()
	ch, err := p.open(path)
	if err != nil {
		return nil, kerrors.Environment("open "+path, err)
	}

	buf := make([]byte, pages*straddle*EntrySize)
	off := int64(base.PageIndex(p.pageSize) * EntrySize)
	n, err := ch.ReadAt(buf, off)
	if n < len(buf) {
		_ = ch.Close()
		if err != nil && !errors.Is(err, io.EOF) && n == 0 {
			return nil, kerrors.Environment("pread "+path, err)
		}
		return nil, kerrors.ShortRead("pread "+path, len(buf), n)
	}
	if err := ch.Close(); err != nil {
		return nil, kerrors.Environment("close "+path, err)
	}

	entries := make(Entries, pages)
	for i := range entries {
		entries[i] = Entry(binary.NativeEndian.Uint64(buf[i*straddle*EntrySize:]))
	}
	return entries, nil
}
