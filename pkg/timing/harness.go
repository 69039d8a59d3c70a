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

// Package timing measures the elapsed time of repeated operations and
// summarizes the distribution of trial durations.
package timing

import (
	"fmt"
	"runtime"
	"sort"
	"time"
)

// Summary describes the distribution of trial durations.
type Summary struct {
	Name   string
	Min    time.Duration
	Median time.Duration
	Max    time.Duration
	Count  int
}

func (s Summary) String() string {
	return fmt.Sprintf("%s={min:%s,mid:%s,max:%s,cnt:%d}", s.Name, Render(s.Min), Render(s.Median), Render(s.Max), s.Count)
}

// Repeat runs the operation the given number of trials. The reset function
// runs before every trial and is excluded from the measurement. The calling
// goroutine yields the processor between trials so other runnable work gets
// a chance to execute outside of the measured window.
func Repeat(name string, trials int, op func(), reset func()) Summary {
	durations := make([]time.Duration, trials)
	for i := range durations {
		if reset != nil {
			reset()
		}
		start := time.Now()
		op()
		durations[i] = time.Since(start)
		runtime.Gosched()
	}
	return Summarize(name, durations)
}

// Summarize sorts the durations in place and reports the minimum, the
// median and the maximum.
func Summarize(name string, durations []time.Duration) Summary {
	s := Summary{Name: name, Count: len(durations)}
	if len(durations) == 0 {
		return s
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	s.Min = durations[0]
	s.Median = durations[len(durations)/2]
	s.Max = durations[len(durations)-1]
	return s
}

// Render formats the duration with three decimals in the largest unit
// that keeps the integral part non-zero. Durations below a microsecond are
// rendered in whole nanoseconds.
func Render(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.3fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.3fµs", float64(d)/float64(time.Microsecond))
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
