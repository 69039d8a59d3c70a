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

package pagemap

import (
	"fmt"
	"strings"
)

// EntrySize is the size in bytes of a single page map entry.
const EntrySize = 8

const (
	present    Entry = 1 << 63
	swapped    Entry = 1 << 62
	shared     Entry = 1 << 61
	exclusive  Entry = 1 << 56
	softDirty  Entry = 1 << 55
	pfnMask    Entry = (1 << 55) - 1
	swapShift        = 5
	swapTypeMask     = (1 << swapShift) - 1
	swapOffMask      = (1 << (55 - swapShift)) - 1
)

// Entry is the raw page table entry as exposed by the page map channel.
// The layout is:
//
//	bit  63    page present
//	bit  62    page swapped
//	bit  61    page is file-page or shared-anon
//	bit  56    page exclusively mapped
//	bit  55    PTE is soft-dirty
//	bits 0-54  page frame number if present, otherwise
//	bits 0-4   swap type and bits 5-54 swap offset if swapped
type Entry uint64

// Present determines if the page is resident in physical memory.
func (e Entry) Present() bool { return e&present != 0 }

// Swapped determines if the page was swapped out.
func (e Entry) Swapped() bool { return e&swapped != 0 }

// Shared determines if the page is a file page or shared anonymous page.
func (e Entry) Shared() bool { return e&shared != 0 }

// Exclusive determines if the page is exclusively mapped.
func (e Entry) Exclusive() bool { return e&exclusive != 0 }

// SoftDirty determines if the page was written since soft-dirty bits were cleared.
func (e Entry) SoftDirty() bool { return e&softDirty != 0 }

// Resident determines if the entry carries a meaningful frame number.
func (e Entry) Resident() bool { return e.Present() && !e.Swapped() }

// PFN returns the physical frame number. It is only valid for resident
// pages and reads as zero for unprivileged callers.
func (e Entry) PFN() uint64 {
	if !e.Resident() {
		return 0
	}
	return uint64(e & pfnMask)
}

// SwapType returns the swap device type of the swapped page.
func (e Entry) SwapType() uint64 { return uint64(e) & swapTypeMask }

// SwapOffset returns the offset in the swap device of the swapped page.
func (e Entry) SwapOffset() uint64 { return (uint64(e) >> swapShift) & swapOffMask }

// PhysicalAddress returns the address of the backing frame. Frame numbers
// are expressed in native page units, so the native page size is expected.
func (e Entry) PhysicalAddress(osPageSize uint64) uint64 {
	return e.PFN() * osPageSize
}

// Format renders the entry using the native page size to resolve the physical address.
func (e Entry) Format(osPageSize uint64) string {
	switch {
	case e.Swapped():
		return fmt.Sprintf("swapped{type:%d,offset:%d}", e.SwapType(), e.SwapOffset())
	case e.Present():
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%#x", e.PhysicalAddress(osPageSize)))
		if e.Shared() {
			sb.WriteString(" shared")
		}
		if e.Exclusive() {
			sb.WriteString(" exclusive")
		}
		if e.SoftDirty() {
			sb.WriteString(" soft_dirty")
		}
		return sb.String()
	default:
		return "none"
	}
}

// Entries is the point-in-time snapshot of a virtual range.
type Entries []Entry

// Resident returns the number of resident pages.
func (entries Entries) Resident() int {
	var n int
	for _, e := range entries {
		if e.Resident() {
			n++
		}
	}
	return n
}

// Unresolved determines if resident pages are reported without frame numbers.
// The kernel zeroes frame numbers when the reader lacks CAP_SYS_ADMIN.
func (entries Entries) Unresolved() bool {
	var resident int
	for _, e := range entries {
		if !e.Resident() {
			continue
		}
		resident++
		if e.PFN() != 0 {
			return false
		}
	}
	return resident > 0
}
