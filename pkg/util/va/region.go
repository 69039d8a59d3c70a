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

//go:build linux

package va

import (
	"fmt"
	"unsafe"

	kerrors "github.com/cachecolor/cachecolor/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	prot = unix.PROT_READ | unix.PROT_WRITE
	// physical pages are not available before the first touch unless populated eagerly
	populate = unix.MAP_ANONYMOUS | unix.MAP_POPULATE
	remap    = unix.MREMAP_FIXED | unix.MREMAP_MAYMOVE
)

// Region is an anonymous, eagerly populated mapping whose base address
// is aligned to the requested boundary. The underlying mapping carries
// one extra alignment unit of slack to guarantee an alignable base.
type Region struct {
	raw    []byte
	base   Address
	size   uint64
	align  uint64
	shared bool
}

// Allocate maps a new anonymous region of the given size. The base address
// is aligned to align bytes, which must be a power of two multiple of the
// native page size. Shared regions are backed by shmem and can be mirrored
// at several virtual addresses.
func Allocate(size, align uint64, shared bool) (*Region, error) {
	if size == 0 || align == 0 || align&(align-1) != 0 {
		return nil, kerrors.Invariant("mmap", fmt.Errorf("invalid region size %d or alignment %d", size, align))
	}
	flags := populate
	if shared {
		flags |= unix.MAP_SHARED
	} else {
		flags |= unix.MAP_PRIVATE
	}
	raw, err := unix.Mmap(-1, 0, int(size+align), prot, flags)
	if err != nil {
		return nil, kerrors.Allocation("mmap", err)
	}
	start := Address(uintptr(unsafe.Pointer(&raw[0])))
	base, ok := start.AlignUp(align)
	if !ok || !base.IsAligned(align) {
		_ = unix.Munmap(raw)
		return nil, kerrors.Invariant("mmap", fmt.Errorf("%w: %s to %d", kerrors.ErrMisaligned, start, align))
	}
	return &Region{raw: raw, base: base, size: size, align: align, shared: shared}, nil
}

// Base returns the aligned base address of the region.
func (r *Region) Base() Address { return r.base }

// Size returns the usable size of the region.
func (r *Region) Size() uint64 { return r.size }

// Shared determines if the region is a shared mapping.
func (r *Region) Shared() bool { return r.shared }

// Bytes returns the usable part of the region starting at the aligned base.
func (r *Region) Bytes() []byte {
	off := uint64(r.base) - uint64(uintptr(unsafe.Pointer(&r.raw[0])))
	return r.raw[off : off+r.size : off+r.size]
}

// Page returns the address of the i-th page of the given size.
func (r *Region) Page(i int, pageSize uint64) Address {
	return r.base.Inc(uint64(i) * pageSize)
}

// Fill writes the value into every byte of the usable region.
func (r *Region) Fill(v byte) {
	b := r.Bytes()
	for i := range b {
		b[i] = v
	}
}

// Close unmaps the whole region including the alignment slack.
func (r *Region) Close() error {
	if r.raw == nil {
		return nil
	}
	if err := unix.Munmap(r.raw); err != nil {
		return kerrors.Allocation("munmap", err)
	}
	r.raw = nil
	return nil
}

// Remap relocates length bytes mapped at src to exactly dst, replacing any
// mapping that lives there. When mirror is set, the old size is zero so the
// kernel creates a second mapping of the same shared pages, leaving the
// source in place. Otherwise the pages are moved. The backing frames are
// never copied. Landing anywhere but dst is reported as an invariant failure.
func Remap(src Address, length uint64, dst Address, mirror bool) (Address, error) {
	oldSize := length
	if mirror {
		oldSize = 0
	}
	addr, _, errno := unix.Syscall6(unix.SYS_MREMAP, src.Uintptr(), uintptr(oldSize), uintptr(length), remap, dst.Uintptr(), 0)
	if errno != 0 {
		return 0, kerrors.Allocation("mremap", errno)
	}
	if Address(addr) != dst {
		return Address(addr), kerrors.Invariant("mremap", fmt.Errorf("%w: want %s, got %s", kerrors.ErrRemapMisplaced, dst, Address(addr)))
	}
	return dst, nil
}
