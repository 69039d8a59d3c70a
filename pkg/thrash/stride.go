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

package thrash

// Stride writes the value into one byte of every cache line of the region.
// Any trailing bytes that do not fill a whole line are left untouched.
func Stride(region []byte, lineSize uint64, v byte) {
	if lineSize == 0 {
		return
	}
	n := uint64(len(region))
	for off := uint64(0); off+lineSize <= n; off += lineSize {
		region[off] = v
	}
}

// sink keeps the loads issued by Touch observable.
var sink byte

// Touch loads the byte at the offset of the region. Freshly remapped
// ranges carry no page table entries until their first access, so the
// load faults the page in and makes its frame visible in the page map.
func Touch(region []byte, offset uint64) {
	sink += region[offset]
}

// Strides returns the number of cache lines the stride loop touches per pass.
func Strides(size, lineSize uint64) uint64 {
	if lineSize == 0 {
		return 0
	}
	return size / lineSize
}
