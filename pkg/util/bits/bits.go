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

// Package bits contains total helpers for the bit arithmetic involved in
// address decomposition. Every function is defined over the whole uint64
// domain, or explicitly rejects the inputs it can't handle.
package bits

import (
	"errors"
	mathbits "math/bits"
)

// ErrZero is returned when the logarithm of zero is requested.
var ErrZero = errors.New("logarithm of zero is undefined")

// IsPowerOfTwo determines if v is a non-zero power of two.
func IsPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}

// Log2 returns the floor of the base-2 logarithm of v.
func Log2(v uint64) (uint, error) {
	if v == 0 {
		return 0, ErrZero
	}
	return uint(63 - mathbits.LeadingZeros64(v)), nil
}

// MustLog2 is like Log2 but panics on zero input. It is meant for
// values that were already validated as powers of two.
func MustLog2(v uint64) uint {
	n, err := Log2(v)
	if err != nil {
		panic(err)
	}
	return n
}

// CeilLog2 returns the number of bits needed to enumerate v distinct values.
// Both zero and one yield zero bits.
func CeilLog2(v uint64) uint {
	if v <= 1 {
		return 0
	}
	return uint(64 - mathbits.LeadingZeros64(v-1))
}

// Mask returns the mask with the n low-order bits set.
func Mask(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// Extract returns n bits of v starting at the given bit offset.
func Extract(v uint64, offset, n uint) uint64 {
	if offset >= 64 {
		return 0
	}
	return (v >> offset) & Mask(n)
}

// IsSet determines if the i-th bit of v is set.
func IsSet(v uint64, i uint) bool {
	return i < 64 && v&(uint64(1)<<i) != 0
}
