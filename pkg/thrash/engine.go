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

package thrash

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cachecolor/cachecolor/pkg/color"
	kerrors "github.com/cachecolor/cachecolor/pkg/errors"
	"github.com/cachecolor/cachecolor/pkg/hierarchy"
	"github.com/cachecolor/cachecolor/pkg/pagemap"
	"github.com/cachecolor/cachecolor/pkg/timing"
	"github.com/cachecolor/cachecolor/pkg/util/va"
	fsm "github.com/qmuntal/stateless"
	log "github.com/sirupsen/logrus"
)

// DefaultLoops is the default number of timed trials per page set.
const DefaultLoops = 1 << 10

// Option tweaks the engine.
type Option func(*Engine)

// WithPopulation sets the number of modeled pages allocated for the population.
func WithPopulation(pages int) Option {
	return func(e *Engine) {
		e.pages = pages
	}
}

// WithLoops sets the number of timed trials per page set.
func WithLoops(loops int) Option {
	return func(e *Engine) {
		e.loops = loops
	}
}

// WithCycles enables the CPU cycles counter.
func WithCycles(enabled bool) Option {
	return func(e *Engine) {
		e.cycles = enabled
	}
}

// WithSlotHook registers a function invoked for every page placed into
// the adversarial region.
func WithSlotHook(fn func(Slot)) Option {
	return func(e *Engine) {
		e.onSlot = fn
	}
}

// Engine owns the population region, the adversarial target region and
// the current physical snapshot of the population.
type Engine struct {
	profile  hierarchy.Profile
	scheme   color.Scheme
	prober   *pagemap.Prober
	straddle int

	pages  int
	loops  int
	cycles bool
	onSlot func(Slot)

	population *va.Region
	target     *va.Region
	entries    pagemap.Entries
	index      color.Index
	sm         *fsm.StateMachine
}

// New allocates and populates the memory the experiment bucketizes.
// The population is a shared mapping, so its frames can be mirrored at
// several addresses of the target region without leaving the population.
// Every page is touched before returning so it is backed by a frame when
// first probed.
func New(profile hierarchy.Profile, scheme color.Scheme, prober *pagemap.Prober, options ...Option) (*Engine, error) {
	straddle, err := profile.Straddle(prober.PageSize())
	if err != nil {
		return nil, err
	}
	e := &Engine{
		profile:  profile,
		scheme:   scheme,
		prober:   prober,
		straddle: int(straddle),
		pages:    1024,
		loops:    DefaultLoops,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.pages <= 0 {
		return nil, kerrors.Invariant("populate", fmt.Errorf("population must be positive, got %d", e.pages))
	}
	if e.loops <= 0 || e.loops&(e.loops-1) != 0 {
		return nil, kerrors.Invariant("populate", fmt.Errorf("loops must be a power of two, got %d", e.loops))
	}
	pageSize := profile.Page.Size
	e.population, err = va.Allocate(uint64(e.pages)*pageSize, pageSize, true)
	if err != nil {
		return nil, err
	}
	e.population.Fill(1)
	e.sm = newLifecycle()
	log.Debugf("populated %d pages at %s", e.pages, e.population.Base())
	return e, nil
}

// Target returns the number of pages of the adversarial region. It is one
// more than the ways of the cache level so the region can not be held by
// a single cache set.
func (e *Engine) Target() int { return int(e.scheme.Level.Ways) + 1 }

// Population returns the region holding the population pages.
func (e *Engine) Population() *va.Region { return e.population }

// Colors returns the last colored page index of the population.
func (e *Engine) Colors() color.Index { return e.index }

// Entries returns the last physical snapshot of the population.
func (e *Engine) Entries() pagemap.Entries { return e.entries }

// State returns the current lifecycle state of the engine.
func (e *Engine) State() string {
	return fmt.Sprint(e.sm.MustState())
}

// Probe takes a fresh physical snapshot of the population.
func (e *Engine) Probe() error {
	entries, err := e.prober.Probe(e.population.Base(), e.pages, e.straddle)
	if err != nil {
		return err
	}
	if entries.Unresolved() {
		return kerrors.Environment("probe", kerrors.ErrNotRoot)
	}
	if err := e.sm.Fire(probeTransition); err != nil {
		return kerrors.Invariant("probe", err)
	}
	e.entries = entries
	return nil
}

// Index buckets the current snapshot by cache color.
func (e *Engine) Index() (color.Index, error) {
	if err := e.sm.Fire(indexTransition); err != nil {
		return color.Index{}, kerrors.Invariant("index", err)
	}
	e.index = color.Build(e.scheme, e.entries, e.prober.PageSize())
	return e.index, nil
}

// Arrange maps the pages of the most populous bucket into the target
// region. Slot i receives the page bucket[i mod pageSet], so only pageSet
// distinct frames back the whole region. The target is probed again
// afterwards and every slot has to resolve to the frame of its source.
func (e *Engine) Arrange(pageSet int) error {
	bucket, ok := e.index.Max()
	if !ok {
		return kerrors.Invariant("remap", errors.New("no resident pages to arrange"))
	}
	target := e.Target()
	if pageSet < 1 || pageSet > target {
		return kerrors.Invariant("remap", fmt.Errorf("page set %d out of range [1, %d]", pageSet, target))
	}
	if pageSet > bucket.Len() {
		log.Warnf("only %d distinct pages of color %d for a page set of %d", bucket.Len(), bucket.Color, pageSet)
	}
	if err := e.sm.Fire(remapTransition); err != nil {
		return kerrors.Invariant("remap", err)
	}
	pageSize := e.profile.Page.Size
	if e.target == nil {
		var err error
		e.target, err = va.Allocate(uint64(target)*pageSize, pageSize, false)
		if err != nil {
			return err
		}
		log.Debugf("adversarial region at %s", e.target.Base())
	}

	osPage := e.prober.PageSize()
	for i := 0; i < target; i++ {
		src := bucket.Pages[i%pageSet%bucket.Len()]
		dst := e.target.Page(i, pageSize)
		if _, err := va.Remap(e.population.Page(src, pageSize), pageSize, dst, true); err != nil {
			return err
		}
		Touch(e.target.Bytes(), uint64(i)*pageSize)
		if e.onSlot != nil {
			phys := e.entries[src].PhysicalAddress(osPage)
			e.onSlot(Slot{
				PageSet:  pageSet,
				Slot:     i,
				Source:   src,
				Virtual:  dst,
				Physical: phys,
				Color:    e.scheme.Color(phys),
			})
		}
	}
	return e.verify(bucket, pageSet)
}

// verify probes the target region and checks every slot resolves to the
// frame of the population page it was mapped from.
func (e *Engine) verify(bucket *color.Bucket, pageSet int) error {
	entries, err := e.prober.Probe(e.target.Base(), e.Target(), e.straddle)
	if err != nil {
		return err
	}
	for i, entry := range entries {
		src := bucket.Pages[i%pageSet%bucket.Len()]
		if want := e.entries[src].PFN(); entry.PFN() != want {
			return kerrors.Invariant("remap", fmt.Errorf("slot %d resolves to frame %#x, want %#x", i, entry.PFN(), want))
		}
	}
	return nil
}

// Measure runs the stride loop over the target region and records the
// distribution of trial durations.
func (e *Engine) Measure(pageSet int) (Result, error) {
	if err := e.sm.Fire(measureTransition); err != nil {
		return Result{}, kerrors.Invariant("measure", err)
	}
	region := e.target.Bytes()
	lineSize := e.profile.CacheLine.Size
	var trial byte
	op := func() {
		Stride(region, lineSize, trial)
	}
	reset := func() {
		trial++
	}
	res := Result{
		PageSet: pageSet,
		Pages:   e.Target(),
		Summary: timing.Repeat("cache_line_write_access", e.loops, op, reset),
	}
	if e.cycles {
		cycles, err := timing.MeasureCycles(op)
		if err != nil {
			log.Warnf("disabling cycles counter: %v", err)
			e.cycles = false
		} else {
			res.Cycles = cycles
		}
	}
	return res, nil
}

// Run executes the whole experiment. The population is probed and
// indexed, then the target region is arranged and measured for every
// page set in [1, target). The calling goroutine stays locked to its
// thread for the duration of the run.
func (e *Engine) Run() ([]Result, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := e.Probe(); err != nil {
		return nil, err
	}
	idx, err := e.Index()
	if err != nil {
		return nil, err
	}
	bucket, ok := idx.Max()
	if !ok {
		return nil, kerrors.Invariant("index", errors.New("no resident pages"))
	}
	log.Infof("color %d holds %d of %d pages", bucket.Color, bucket.Len(), idx.Total())

	results := make([]Result, 0, e.Target()-1)
	for pageSet := 1; pageSet < e.Target(); pageSet++ {
		if err := e.Arrange(pageSet); err != nil {
			return results, err
		}
		res, err := e.Measure(pageSet)
		if err != nil {
			return results, err
		}
		log.Debug(res.Summary)
		results = append(results, res)
	}
	return results, nil
}

// Close unmaps the target and population regions.
func (e *Engine) Close() error {
	var errs []error
	if e.target != nil {
		errs = append(errs, e.target.Close())
	}
	if e.population != nil {
		errs = append(errs, e.population.Close())
	}
	return errors.Join(errs...)
}
