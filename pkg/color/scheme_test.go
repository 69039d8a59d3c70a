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

package color

import (
	"math/rand"
	"testing"

	"github.com/cachecolor/cachecolor/pkg/hierarchy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestM1L2Scheme(t *testing.T) {
	s, err := ForLevel(hierarchy.M1(), "L2")
	require.NoError(t, err)
	assert.Equal(t, uint64(64), s.Colors)
	assert.Equal(t, uint(6), s.ColorBits)
	assert.Equal(t, uint(7), s.LineOffsetBits)
	assert.Equal(t, uint(7), s.IndexBits)
	assert.Equal(t, uint(14), s.LineOffsetBits+s.IndexBits)
	assert.Equal(t, uint(14), s.Shift())
	assert.Equal(t, uint64(64), s.Count())
	assert.Equal(t, "L2 bits {color:6,index:7,line:7}, colors: 64, ways: 12", s.String())
}

func TestSyntheticScheme(t *testing.T) {
	p, err := hierarchy.New("synthetic", 64, 4096, 48, hierarchy.CacheLevel{Name: "L2", Size: 256 * 1024, Ways: 8})
	require.NoError(t, err)
	s, err := ForLevel(p, "L2")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), s.Colors)
	assert.Equal(t, uint(3), s.ColorBits)
	assert.Equal(t, uint(6), s.IndexBits)
}

func TestSingleColorScheme(t *testing.T) {
	s, err := ForLevel(hierarchy.M1(), "L1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.Colors)
	assert.Equal(t, uint(0), s.ColorBits)
	assert.Equal(t, uint64(1), s.Count())
	for _, addr := range []uint64{0, 0x4000, 0xdeadbeef000, ^uint64(0)} {
		assert.Equal(t, uint64(0), s.Color(addr))
	}
}

func TestUnknownLevel(t *testing.T) {
	_, err := ForLevel(hierarchy.Haswell(), "L3")
	require.Error(t, err)
}

func TestColorBitRange(t *testing.T) {
	s, err := ForLevel(hierarchy.M1(), "L2")
	require.NoError(t, err)

	// bits [14, 20) hold the color
	assert.Equal(t, uint64(0), s.Color(0x3fff))
	assert.Equal(t, uint64(1), s.Color(0x4000))
	assert.Equal(t, uint64(63), s.Color(0xfc000))
	assert.Equal(t, uint64(0), s.Color(0x100000))
	assert.Equal(t, uint64(5), s.Color(0xabc00000|5<<14|0x1ff))

	inside := uint64(0x3f) << s.Shift()
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := r.Uint64()
		noise := r.Uint64() &^ inside
		b := (a & inside) | noise
		assert.Equal(t, s.Color(a), s.Color(b))
	}
}

func TestWideColorScheme(t *testing.T) {
	p, err := hierarchy.New("wide", 64, 4096, 48, hierarchy.CacheLevel{Name: "L3", Size: 8 << 20, Ways: 16})
	require.NoError(t, err)
	s, err := ForLevel(p, "L3")
	require.NoError(t, err)
	assert.Equal(t, uint(7), s.ColorBits)
	require.Error(t, s.Validate())
}

func TestValidate(t *testing.T) {
	s := Scheme{LineOffsetBits: 6, IndexBits: 6, PageBits: 12, ColorBits: 3}
	require.NoError(t, s.Validate())
	s.PageBits = 14
	require.Error(t, s.Validate())
	s = Scheme{LineOffsetBits: 7, IndexBits: 7, PageBits: 14, ColorBits: 8}
	require.Error(t, s.Validate())
}
