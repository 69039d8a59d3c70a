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

package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog2(t *testing.T) {
	_, err := Log2(0)
	require.ErrorIs(t, err, ErrZero)

	var tests = []struct {
		v    uint64
		want uint
	}{
		{1, 0},
		{2, 1},
		{3, 1},
		{128, 7},
		{16 * 1024, 14},
		{1 << 63, 63},
		{^uint64(0), 63},
	}
	for _, tt := range tests {
		n, err := Log2(tt.v)
		require.NoError(t, err)
		assert.Equal(t, tt.want, n, "log2(%d)", tt.v)
	}
	assert.Panics(t, func() { MustLog2(0) })
}

func TestCeilLog2(t *testing.T) {
	assert.Equal(t, uint(0), CeilLog2(0))
	assert.Equal(t, uint(0), CeilLog2(1))
	assert.Equal(t, uint(1), CeilLog2(2))
	assert.Equal(t, uint(2), CeilLog2(3))
	assert.Equal(t, uint(3), CeilLog2(8))
	assert.Equal(t, uint(6), CeilLog2(64))
	assert.Equal(t, uint(7), CeilLog2(65))
}

func TestMaskAndExtract(t *testing.T) {
	assert.Equal(t, uint64(0), Mask(0))
	assert.Equal(t, uint64(0x3f), Mask(6))
	assert.Equal(t, ^uint64(0), Mask(64))
	assert.Equal(t, ^uint64(0), Mask(100))

	assert.Equal(t, uint64(0x2a), Extract(0x2a<<14|0x3fff, 14, 6))
	assert.Equal(t, uint64(0), Extract(0xffff, 64, 6))
	assert.Equal(t, uint64(0), Extract(0xffff, 3, 0))
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.False(t, IsPowerOfTwo(0))
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(4096))
	assert.False(t, IsPowerOfTwo(12*1024*1024))
	assert.True(t, IsSet(1<<63, 63))
	assert.False(t, IsSet(1, 64))
}
