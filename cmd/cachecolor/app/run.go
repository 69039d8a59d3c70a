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

package app

import (
	"io"
	"os"

	"github.com/cachecolor/cachecolor/internal/bootstrap"
	"github.com/cachecolor/cachecolor/internal/cgroups"
	"github.com/cachecolor/cachecolor/internal/procfs"
	"github.com/cachecolor/cachecolor/pkg/color"
	"github.com/cachecolor/cachecolor/pkg/config"
	kerrors "github.com/cachecolor/cachecolor/pkg/errors"
	"github.com/cachecolor/cachecolor/pkg/pagemap"
	"github.com/cachecolor/cachecolor/pkg/report"
	"github.com/cachecolor/cachecolor/pkg/thrash"
	"github.com/cachecolor/cachecolor/pkg/util/spinner"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cache thrashing experiment",
	RunE:  run,
	Example: `
	# Run with the default profile of this architecture
	cachecolor run

	# Derive the colors from the L1 cache of the M1 profile and print every placed page
	cachecolor run --profile=m1 --cache-level=L1 --report.slots
	`,
}

// the run command config
var runCfg = config.NewWithOpts(config.WithRun())

func init() {
	runCfg.MustViperize(runCmd)
	RootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) error {
	runID, err := bootstrap.InitConfigAndLogger(runCfg)
	if err != nil {
		return err
	}
	if os.Geteuid() != 0 {
		return kerrors.Environment("run", kerrors.ErrNotRoot)
	}
	if cgroups.InContainer() {
		log.Warn("running inside a container. Frame numbers are hidden unless the container holds CAP_SYS_ADMIN")
	}

	p := runCfg.Hierarchy
	scheme, err := color.ForLevel(p, runCfg.CacheLevel)
	if err != nil {
		return err
	}
	prober := pagemap.NewProber()
	out := cmd.OutOrStdout()
	report.Info(out, p, scheme, prober.PageSize())

	before, err := procfs.ResidentSize(0)
	if err != nil {
		return err
	}

	opts := []thrash.Option{
		thrash.WithPopulation(runCfg.Population),
		thrash.WithLoops(runCfg.Loops),
		thrash.WithCycles(runCfg.Report.PerfCounters),
	}
	if runCfg.Report.Slots {
		opts = append(opts, thrash.WithSlotHook(func(s thrash.Slot) { report.Slot(out, s) }))
	}

	var w io.Writer
	if runCfg.Progress {
		w = os.Stderr
	}
	size := humanize.IBytes(uint64(runCfg.Population) * p.Page.Size)
	progress := spinner.Show(w, "populating "+size)
	engine, err := thrash.New(p, scheme, prober, opts...)
	if err != nil {
		progress.Stop("")
		return err
	}
	progress.Stop("populated " + size)
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warnf("unable to unmap regions: %v", err)
		}
	}()

	after, err := procfs.ResidentSize(0)
	if err != nil {
		return err
	}
	report.Memory(out, before, after)

	log.Infof("run %s: %d pages at %s", runID, runCfg.Population, engine.Population().Base())
	results, err := engine.Run()
	if err != nil {
		return err
	}
	report.ColorIndex(out, engine.Colors(), engine.Entries(), prober.PageSize())
	report.Curve(out, results, scheme.Level)
	return nil
}
