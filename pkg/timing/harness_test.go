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

package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	durations := []time.Duration{5, 1, 9, 3, 7}
	s := Summarize("op", durations)
	assert.Equal(t, time.Duration(1), s.Min)
	assert.Equal(t, time.Duration(5), s.Median)
	assert.Equal(t, time.Duration(9), s.Max)
	assert.Equal(t, 5, s.Count)

	// even counts pick the upper middle sample
	s = Summarize("op", []time.Duration{4, 1, 3, 2})
	assert.Equal(t, time.Duration(3), s.Median)

	s = Summarize("empty", nil)
	assert.Equal(t, 0, s.Count)
	assert.Zero(t, s.Max)
}

func TestRepeat(t *testing.T) {
	var ops, resets int
	s := Repeat("counter", 16, func() { ops++ }, func() { resets++ })
	assert.Equal(t, 16, ops)
	assert.Equal(t, 16, resets)
	assert.Equal(t, 16, s.Count)
	require.True(t, s.Min <= s.Median)
	require.True(t, s.Median <= s.Max)

	s = Repeat("no-reset", 2, func() {}, nil)
	assert.Equal(t, 2, s.Count)
}

func TestRender(t *testing.T) {
	var tests = []struct {
		d    time.Duration
		want string
	}{
		{750 * time.Nanosecond, "750ns"},
		{999 * time.Nanosecond, "999ns"},
		{time.Microsecond, "1.000µs"},
		{time.Millisecond, "1.000ms"},
		{time.Second, "1.000s"},
		{1500 * time.Nanosecond, "1.500µs"},
		{2500 * time.Microsecond, "2.500ms"},
		{1250 * time.Millisecond, "1.250s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Render(tt.d))
	}
	s := Summary{Name: "cache_line_write_access", Min: 900, Median: 1500, Max: 2 * time.Millisecond, Count: 1024}
	assert.Equal(t, "cache_line_write_access={min:900ns,mid:1.500µs,max:2.000ms,cnt:1024}", s.String())
}
