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

// Package report renders the experiment artifacts for humans.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/cachecolor/cachecolor/pkg/color"
	"github.com/cachecolor/cachecolor/pkg/hierarchy"
	"github.com/cachecolor/cachecolor/pkg/pagemap"
	"github.com/cachecolor/cachecolor/pkg/thrash"
	"github.com/cachecolor/cachecolor/pkg/timing"
	"github.com/cachecolor/cachecolor/pkg/util/va"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// maxSamples is the number of pages listed per color in the index dump.
const maxSamples = 9

// Info prints the page size split, the cache line size and the bit layout
// of the color scheme. Layout violations are reported but not fatal.
func Info(w io.Writer, p hierarchy.Profile, s color.Scheme, osPageSize uint64) {
	straddle, err := p.Straddle(osPageSize)
	if err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
	fmt.Fprintf(w, "profile %s (%s)\n", p.Name, p.Description)
	fmt.Fprintf(w, "page size {model:%d,os:%d,straddle:%d} cache line size %d\n", p.Page.Size, osPageSize, straddle, p.CacheLine.Size)
	fmt.Fprintln(w, s)
	if err := s.Validate(); err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
}

// Profiles renders a table with the built-in memory hierarchy profiles.
func Profiles(w io.Writer, profiles []hierarchy.Profile, selected string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Line", "Page", "Physical bits", "Levels", "Description"})
	for _, p := range profiles {
		levels := make([]string, len(p.Levels))
		for i, l := range p.Levels {
			levels[i] = fmt.Sprintf("%s %s/%d-way", l.Name, humanize.IBytes(l.Size), l.Ways)
		}
		name := p.Name
		if name == selected {
			name += " *"
		}
		t.AppendRow(table.Row{name, humanize.IBytes(p.CacheLine.Size), humanize.IBytes(p.Page.Size), p.PhysicalBits, strings.Join(levels, ", "), p.Description})
	}
	t.Render()
}

// Pages writes one line per modeled page with its virtual address, the
// decoded page table entry and the color of the backing frame.
func Pages(w io.Writer, base va.Address, entries pagemap.Entries, s color.Scheme, pageSize, osPageSize uint64) {
	for i, e := range entries {
		addr := base.Inc(uint64(i) * pageSize)
		if !e.Resident() {
			fmt.Fprintf(w, "page #%3d virt addr %s physical %s\n", i, addr, e.Format(osPageSize))
			continue
		}
		fmt.Fprintf(w, "page #%3d virt addr %s physical %s color %d\n", i, addr, e.Format(osPageSize), s.Color(e.PhysicalAddress(osPageSize)))
	}
}

// ColorIndex renders the colored page index. Each row lists the first few
// pages of the bucket as index@physical.
func ColorIndex(w io.Writer, idx color.Index, entries pagemap.Entries, osPageSize uint64) {
	t := newTable(w)
	t.SetTitle("Colors index (%d colors populated, %d pages, %d skipped)", idx.Populated(), idx.Total(), idx.Skipped)
	t.AppendHeader(table.Row{"Color", "Pages", "Samples"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
	})
	for _, b := range idx.Buckets {
		samples := make([]string, 0, maxSamples+1)
		for n, i := range b.Pages {
			if n == maxSamples {
				samples = append(samples, "...")
				break
			}
			samples = append(samples, fmt.Sprintf("%d@%#x", i, entries[i].PhysicalAddress(osPageSize)))
		}
		t.AppendRow(table.Row{b.Color, b.Len(), strings.Join(samples, ",")})
	}
	t.Render()
}

// Slot writes the placement of a page in the adversarial region along with
// the binary representation of its frame address.
func Slot(w io.Writer, s thrash.Slot) {
	fmt.Fprintf(w, "page #%3d, vaddr %s, physical %#x %064b color %d\n", s.Source, s.Virtual, s.Physical, s.Physical, s.Color)
}

// Curve renders the latency curve. Rows where the number of distinct
// frames exceeds the ways of the cache level are highlighted.
func Curve(w io.Writer, results []thrash.Result, level hierarchy.CacheLevel) {
	t := newTable(w)
	t.SetTitle("%s write latency per distinct colliding pages (%d ways)", level.Name, level.Ways)
	t.AppendHeader(table.Row{"Distinct pages", "Mapped pages", "Min", "Median", "Max", "Trials", "Cycles"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	for _, r := range results {
		cycles := "-"
		if r.Cycles > 0 {
			cycles = humanize.Comma(int64(r.Cycles))
		}
		distinct := fmt.Sprint(r.PageSet)
		if uint64(r.PageSet) > level.Ways {
			distinct = text.FgRed.Sprint(distinct)
		}
		t.AppendRow(table.Row{
			distinct,
			r.Pages,
			timing.Render(r.Summary.Min),
			timing.Render(r.Summary.Median),
			timing.Render(r.Summary.Max),
			r.Summary.Count,
			cycles,
		})
	}
	t.Render()
}

// Memory prints the resident set size of the process before and after
// the population was allocated.
func Memory(w io.Writer, before, after uint64) {
	var delta string
	if after >= before {
		delta = "+" + humanize.IBytes(after-before)
	} else {
		delta = "-" + humanize.IBytes(before-after)
	}
	fmt.Fprintf(w, "resident memory %s -> %s (%s)\n", humanize.IBytes(before), humanize.IBytes(after), delta)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}
