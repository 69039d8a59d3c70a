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

package hierarchy

import (
	"runtime"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// M1Name identifies the Apple M1 profile.
	M1Name = "m1"
	// HaswellName identifies the Intel Haswell profile.
	HaswellName = "haswell"
)

// M1 describes the Apple M1 performance cores. The 16K pages hold 128
// lines of 128 bytes, so 7 bits index the set inside the page, while the
// 12-way, 12MB L2 yields 1MB ways, that is, 64 page colors.
func M1() Profile {
	return Profile{
		Name:         M1Name,
		Description:  "Apple M1 (16K pages, 128B cache lines)",
		CacheLine:    CacheLine{Size: 128, Bits: 7},
		Page:         Page{Size: 16 * humanize.KiByte, Bits: 14},
		PhysicalBits: 48,
		Levels: []CacheLevel{
			{Name: "L1", Size: 128 * humanize.KiByte, Ways: 8},
			{Name: "L2", Size: 12 * humanize.MiByte, Ways: 12},
		},
	}
}

// Haswell describes the Intel Haswell cores with 4K pages and 64 byte lines.
func Haswell() Profile {
	return Profile{
		Name:         HaswellName,
		Description:  "Intel Haswell (4K pages, 64B cache lines)",
		CacheLine:    CacheLine{Size: 64, Bits: 6},
		Page:         Page{Size: 4 * humanize.KiByte, Bits: 12},
		PhysicalBits: 48,
		Levels: []CacheLevel{
			{Name: "L1", Size: 32 * humanize.KiByte, Ways: 8},
			{Name: "L2", Size: 256 * humanize.KiByte, Ways: 8},
		},
	}
}

var profiles = map[string]func() Profile{
	M1Name:      M1,
	HaswellName: Haswell,
}

// Lookup returns the built-in profile with the given name.
func Lookup(name string) (Profile, bool) {
	fn, ok := profiles[name]
	if !ok {
		return Profile{}, false
	}
	return fn(), true
}

// Names returns the sorted names of built-in profiles.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns the names of built-in profiles resembling the given
// name, closest first.
func Suggest(name string) []string {
	ranks := fuzzy.RankFindFold(name, Names())
	sort.Sort(ranks)
	names := make([]string, len(ranks))
	for i, r := range ranks {
		names[i] = r.Target
	}
	return names
}

// DefaultName picks the profile matching the architecture the binary was built for.
func DefaultName() string {
	if runtime.GOARCH == "arm64" {
		return M1Name
	}
	return HaswellName
}
