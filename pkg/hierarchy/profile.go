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

// Package hierarchy describes the memory hierarchy of a CPU model: the cache
// line and page geometry plus the set-associative cache levels the coloring
// experiment targets. A profile is plain data resolved once at startup and
// passed explicitly to every stage.
package hierarchy

import (
	"fmt"

	kerrors "github.com/cachecolor/cachecolor/pkg/errors"
	"github.com/cachecolor/cachecolor/pkg/util/bits"
)

// CacheLine describes the cache line geometry.
type CacheLine struct {
	Size uint64 `json:"size" yaml:"size"`
	Bits uint   `json:"bits" yaml:"bits"`
}

// Page describes the modeled page geometry. The modeled page may be
// larger than the page the operating system natively maps.
type Page struct {
	Size uint64 `json:"size" yaml:"size"`
	Bits uint   `json:"bits" yaml:"bits"`
}

// CacheLevel describes a single set-associative cache level.
type CacheLevel struct {
	// Name is the level identifier, e.g. L1 or L2.
	Name string `json:"name" yaml:"name"`
	// Size is the total capacity of the level in bytes.
	Size uint64 `json:"size" yaml:"size"`
	// Ways is the associativity of the level.
	Ways uint64 `json:"ways" yaml:"ways"`
}

// WaySize returns the capacity of a single way.
func (l CacheLevel) WaySize() uint64 {
	if l.Ways == 0 {
		return 0
	}
	return l.Size / l.Ways
}

func (l CacheLevel) String() string {
	return fmt.Sprintf("%s{size:%d,ways:%d,way_size:%d}", l.Name, l.Size, l.Ways, l.WaySize())
}

// Profile is the static description of the CPU memory hierarchy.
type Profile struct {
	Name         string       `json:"name" yaml:"name"`
	Description  string       `json:"description" yaml:"description"`
	CacheLine    CacheLine    `json:"cache-line" yaml:"cache-line"`
	Page         Page         `json:"page" yaml:"page"`
	PhysicalBits uint         `json:"physical-bits" yaml:"physical-bits"`
	Levels       []CacheLevel `json:"levels" yaml:"levels"`
}

// New builds and validates a profile. Bit widths are derived from the sizes.
func New(name string, lineSize, pageSize uint64, physicalBits uint, levels ...CacheLevel) (Profile, error) {
	if !bits.IsPowerOfTwo(lineSize) {
		return Profile{}, fmt.Errorf("cache line size %d is not a power of two", lineSize)
	}
	if !bits.IsPowerOfTwo(pageSize) {
		return Profile{}, fmt.Errorf("page size %d is not a power of two", pageSize)
	}
	p := Profile{
		Name:         name,
		CacheLine:    CacheLine{Size: lineSize, Bits: bits.MustLog2(lineSize)},
		Page:         Page{Size: pageSize, Bits: bits.MustLog2(pageSize)},
		PhysicalBits: physicalBits,
		Levels:       levels,
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the geometry invariants of the profile.
func (p Profile) Validate() error {
	if !bits.IsPowerOfTwo(p.CacheLine.Size) || p.CacheLine.Size != 1<<p.CacheLine.Bits {
		return fmt.Errorf("%s: inconsistent cache line geometry %d/%d bits", p.Name, p.CacheLine.Size, p.CacheLine.Bits)
	}
	if !bits.IsPowerOfTwo(p.Page.Size) || p.Page.Size != 1<<p.Page.Bits {
		return fmt.Errorf("%s: inconsistent page geometry %d/%d bits", p.Name, p.Page.Size, p.Page.Bits)
	}
	if p.CacheLine.Size > p.Page.Size {
		return fmt.Errorf("%s: cache line size %d exceeds page size %d", p.Name, p.CacheLine.Size, p.Page.Size)
	}
	if p.PhysicalBits == 0 || p.PhysicalBits > 64 || p.PhysicalBits <= p.Page.Bits {
		return fmt.Errorf("%s: invalid physical address width %d", p.Name, p.PhysicalBits)
	}
	for _, l := range p.Levels {
		if l.Ways == 0 || l.Size%l.Ways != 0 {
			return fmt.Errorf("%s: %s size %d is not divisible into %d ways", p.Name, l.Name, l.Size, l.Ways)
		}
		if l.WaySize()%p.Page.Size != 0 {
			return fmt.Errorf("%s: %s way size %d is not a multiple of the page size %d", p.Name, l.Name, l.WaySize(), p.Page.Size)
		}
	}
	return nil
}

// Level returns the cache level with the given name.
func (p Profile) Level(name string) (CacheLevel, bool) {
	for _, l := range p.Levels {
		if l.Name == name {
			return l, true
		}
	}
	return CacheLevel{}, false
}

// Straddle returns how many native OS pages build up a modeled page.
// It fails if the modeled page is not a whole multiple of the native page.
func (p Profile) Straddle(osPageSize uint64) (uint64, error) {
	if osPageSize == 0 || p.Page.Size < osPageSize || p.Page.Size%osPageSize != 0 {
		return 0, kerrors.Invariant("straddle", kerrors.ErrPageSizeMismatch(p.Page.Size, osPageSize))
	}
	return p.Page.Size / osPageSize, nil
}

func (p Profile) String() string {
	return fmt.Sprintf("%s{line:%d,page:%d,physical_bits:%d,levels:%v}", p.Name, p.CacheLine.Size, p.Page.Size, p.PhysicalBits, p.Levels)
}
