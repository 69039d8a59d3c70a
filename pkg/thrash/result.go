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

// Package thrash builds an adversarial virtual memory layout where every
// page collides in the same cache color, and measures how the write
// latency degrades as more distinct colliding frames compete for the
// ways of the cache level.
package thrash

import (
	"github.com/cachecolor/cachecolor/pkg/timing"
	"github.com/cachecolor/cachecolor/pkg/util/va"
)

// Result is one point of the latency curve.
type Result struct {
	// PageSet is the number of distinct colliding frames mapped into the
	// adversarial region.
	PageSet int
	// Pages is the number of modeled pages the stride loop walks.
	Pages int
	// Summary is the distribution of the stride loop trial durations.
	Summary timing.Summary
	// Cycles is the CPU cycles count of one extra pass, or zero when the
	// cycles counter is not available.
	Cycles uint64
}

// Slot describes the placement of a population page into the adversarial region.
type Slot struct {
	PageSet  int
	Slot     int
	Source   int
	Virtual  va.Address
	Physical uint64
	Color    uint64
}
