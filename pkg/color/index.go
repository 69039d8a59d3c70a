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
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/cachecolor/cachecolor/pkg/pagemap"
)

// Bucket holds the indices of pages whose frames share a color.
type Bucket struct {
	Color uint64
	Pages []int
}

// Len returns the bucket population.
func (b *Bucket) Len() int { return len(b.Pages) }

// Index references the non-empty buckets ordered by ascending population.
// Buckets with equal population are ordered by color. The last bucket is
// the one with the most colliding pages.
type Index struct {
	Buckets []*Bucket
	// Skipped counts pages that were not resident when probed.
	Skipped   int
	populated *bitset.BitSet
}

// Build buckets the resident entries by the color of their frame and
// produces the population ordered index. Entries that are absent or
// swapped carry no physical color and are skipped. The frame address is
// computed with the native page size.
func Build(s Scheme, entries pagemap.Entries, osPageSize uint64) Index {
	buckets := make([]Bucket, s.Count())
	idx := Index{populated: bitset.New(uint(s.Count()))}
	for i, e := range entries {
		if !e.Resident() {
			idx.Skipped++
			continue
		}
		c := s.Color(e.PhysicalAddress(osPageSize))
		buckets[c].Color = c
		buckets[c].Pages = append(buckets[c].Pages, i)
		idx.populated.Set(uint(c))
	}
	for i := range buckets {
		if buckets[i].Len() > 0 {
			idx.Buckets = append(idx.Buckets, &buckets[i])
		}
	}
	sort.SliceStable(idx.Buckets, func(i, j int) bool {
		return idx.Buckets[i].Len() < idx.Buckets[j].Len()
	})
	return idx
}

// Max returns the bucket of maximum population.
func (idx Index) Max() (*Bucket, bool) {
	if len(idx.Buckets) == 0 {
		return nil, false
	}
	return idx.Buckets[len(idx.Buckets)-1], true
}

// Total returns the number of bucketed pages.
func (idx Index) Total() int {
	var n int
	for _, b := range idx.Buckets {
		n += b.Len()
	}
	return n
}

// Populated returns the number of colors with at least one page.
func (idx Index) Populated() uint {
	if idx.populated == nil {
		return 0
	}
	return idx.populated.Count()
}

// Has determines if any page landed on the given color.
func (idx Index) Has(color uint64) bool {
	return idx.populated != nil && idx.populated.Test(uint(color))
}
