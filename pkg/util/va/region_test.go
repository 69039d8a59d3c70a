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
	"os"
	"testing"

	kerrors "github.com/cachecolor/cachecolor/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	page := uint64(os.Getpagesize())
	align := 4 * page
	r, err := Allocate(8*page, align, false)
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.Base().IsAligned(align))
	assert.Equal(t, 8*page, r.Size())
	assert.False(t, r.Shared())
	assert.Len(t, r.Bytes(), int(8*page))
	assert.Equal(t, r.Base().Inc(3*page), r.Page(3, page))

	r.Fill(0xaa)
	b := r.Bytes()
	assert.Equal(t, byte(0xaa), b[0])
	assert.Equal(t, byte(0xaa), b[len(b)-1])

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}

func TestAllocateInvalid(t *testing.T) {
	_, err := Allocate(0, 4096, true)
	require.Error(t, err)
	_, err = Allocate(4096, 3000, true)
	require.Error(t, err)
	assert.True(t, kerrors.IsKind(err, kerrors.KindInvariant))
}

func TestRemapMirror(t *testing.T) {
	page := uint64(os.Getpagesize())
	src, err := Allocate(2*page, page, true)
	require.NoError(t, err)
	defer src.Close()
	dst, err := Allocate(3*page, page, false)
	require.NoError(t, err)
	defer dst.Close()

	b := src.Bytes()
	b[0] = 0x11
	b[page] = 0x22

	// the first source page shows up at two destinations while staying in place
	for _, slot := range []int{0, 2} {
		addr, err := Remap(src.Page(0, page), page, dst.Page(slot, page), true)
		require.NoError(t, err)
		assert.Equal(t, dst.Page(slot, page), addr)
	}
	_, err = Remap(src.Page(1, page), page, dst.Page(1, page), true)
	require.NoError(t, err)

	d := dst.Bytes()
	assert.Equal(t, byte(0x11), d[0])
	assert.Equal(t, byte(0x22), d[page])
	assert.Equal(t, byte(0x11), d[2*page])

	// writes through one mirror are visible through the others
	d[2*page+1] = 0x33
	assert.Equal(t, byte(0x33), d[1])
	assert.Equal(t, byte(0x33), b[1])
}

func TestRemapMove(t *testing.T) {
	page := uint64(os.Getpagesize())
	src, err := Allocate(page, page, false)
	require.NoError(t, err)
	dst, err := Allocate(page, page, false)
	require.NoError(t, err)
	defer dst.Close()

	src.Bytes()[0] = 0x44
	_, err = Remap(src.Base(), page, dst.Base(), false)
	require.NoError(t, err)
	assert.Equal(t, byte(0x44), dst.Bytes()[0])
	// the source range is gone now, so unmapping it is a no-op for the kernel
	require.NoError(t, src.Close())
}
