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

// Package color derives the page coloring scheme of a cache level and
// buckets physical pages by the color they map to.
//
// A physical address decomposes into the tag, the set index and the line
// offset. The low part of the set index is fixed by the offset inside the
// page, while the remaining set index bits come from the frame number and
// form the page color. Two frames sharing a color compete for the same ways
// of the cache regardless of their virtual addresses.
package color

import (
	"fmt"

	kerrors "github.com/cachecolor/cachecolor/pkg/errors"
	"github.com/cachecolor/cachecolor/pkg/hierarchy"
	"github.com/cachecolor/cachecolor/pkg/util/bits"
)

// Scheme contains the derived page coloring parameters of a cache level.
type Scheme struct {
	// Colors is the number of pages that fit in one way of the cache.
	Colors uint64
	// ColorBits is the number of bits needed to represent a color.
	ColorBits uint
	// LineOffsetBits is the number of bits addressing a byte inside the cache line.
	LineOffsetBits uint
	// IndexBits is the number of set index bits determined by the in-page offset.
	IndexBits uint
	// PageBits is the number of bits addressing a byte inside the modeled page.
	PageBits uint
	// Level is the cache level the scheme was derived for.
	Level hierarchy.CacheLevel
}

// NewScheme derives the coloring scheme for the given cache level of the profile.
func NewScheme(p hierarchy.Profile, level hierarchy.CacheLevel) (Scheme, error) {
	if level.Ways == 0 || level.WaySize() == 0 {
		return Scheme{}, fmt.Errorf("%s cache level has no ways", level.Name)
	}
	if level.WaySize()%p.Page.Size != 0 {
		return Scheme{}, fmt.Errorf("%s way size %d is not a multiple of the page size %d", level.Name, level.WaySize(), p.Page.Size)
	}
	s := Scheme{
		Colors:         level.WaySize() / p.Page.Size,
		LineOffsetBits: p.CacheLine.Bits,
		PageBits:       p.Page.Bits,
		Level:          level,
	}
	s.ColorBits = bits.CeilLog2(s.Colors)
	if p.CacheLine.Bits > p.Page.Bits {
		return Scheme{}, fmt.Errorf("cache line bits %d exceed page bits %d", p.CacheLine.Bits, p.Page.Bits)
	}
	s.IndexBits = p.Page.Bits - p.CacheLine.Bits
	if s.Shift()+s.ColorBits > p.PhysicalBits {
		return Scheme{}, fmt.Errorf("color bits [%d,%d) exceed the %d-bit physical address", s.Shift(), s.Shift()+s.ColorBits, p.PhysicalBits)
	}
	return s, nil
}

// ForLevel resolves the named cache level of the profile and derives its scheme.
func ForLevel(p hierarchy.Profile, name string) (Scheme, error) {
	level, ok := p.Level(name)
	if !ok {
		return Scheme{}, kerrors.ErrUnknownCacheLevel(p.Name, name)
	}
	return NewScheme(p, level)
}

// Validate checks the in-page address decomposition. The line offset and
// the set index bits must cover the page offset exactly, and the color
// shouldn't be wider than the set index slice. Schemes violating the latter
// are still usable, so callers report it as a warning.
func (s Scheme) Validate() error {
	if s.LineOffsetBits+s.IndexBits != s.PageBits {
		return fmt.Errorf("line offset bits %d and index bits %d don't decompose %d page bits", s.LineOffsetBits, s.IndexBits, s.PageBits)
	}
	if s.ColorBits > s.IndexBits {
		return fmt.Errorf("color bits %d exceed index bits %d", s.ColorBits, s.IndexBits)
	}
	return nil
}

// Shift returns the bit position of the lowest color bit.
func (s Scheme) Shift() uint { return s.LineOffsetBits + s.IndexBits }

// Count returns the number of distinct color ids.
func (s Scheme) Count() uint64 { return uint64(1) << s.ColorBits }

// Color returns the color of the physical address. The set index is obtained
// by shifting out the line offset. The color is the low-order slice of the
// set index bits that the page offset doesn't determine. A single-colored
// cache always yields color zero. The color occupies the physical address
// bits [LineOffsetBits+IndexBits, LineOffsetBits+IndexBits+ColorBits).
func (s Scheme) Color(addr uint64) uint64 {
	setIndex := addr >> s.LineOffsetBits
	return bits.Extract(setIndex, s.IndexBits, s.ColorBits)
}

func (s Scheme) String() string {
	return fmt.Sprintf("%s bits {color:%d,index:%d,line:%d}, colors: %d, ways: %d",
		s.Level.Name, s.ColorBits, s.IndexBits, s.LineOffsetBits, s.Count(), s.Level.Ways)
}
