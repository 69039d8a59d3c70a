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

package va

import "strconv"

// Address represents the memory address
type Address uint64

// String returns the hexadecimal representation of the memory address.
func (a Address) String() string   { return "0x" + strconv.FormatUint(uint64(a), 16) }
func (a Address) Uint64() uint64   { return uint64(a) }
func (a Address) Uintptr() uintptr { return uintptr(a) }
func (a Address) IsZero() bool     { return a == 0 }

// Inc increments the address by given offset.
func (a Address) Inc(offset uint64) Address {
	a += Address(offset)
	return a
}

// Dec decrements the address by given offset.
func (a Address) Dec(offset uint64) Address {
	a -= Address(offset)
	return a
}

// AlignDown rounds the address down to the given power of two boundary.
func (a Address) AlignDown(align uint64) Address {
	return a &^ Address(align-1)
}

// AlignUp rounds the address up to the given power of two boundary.
// ok is false if rounding up wrapped around.
func (a Address) AlignUp(align uint64) (addr Address, ok bool) {
	addr = a.Inc(align - 1).AlignDown(align)
	ok = addr >= a
	return
}

// IsAligned determines if the address sits on the given power of two boundary.
func (a Address) IsAligned(align uint64) bool {
	return align != 0 && uint64(a)&(align-1) == 0
}

// PageIndex returns the index of the page containing the address.
func (a Address) PageIndex(pageSize uint64) uint64 {
	return uint64(a) / pageSize
}
