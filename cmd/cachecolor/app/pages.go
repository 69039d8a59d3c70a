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
	"github.com/cachecolor/cachecolor/internal/bootstrap"
	"github.com/cachecolor/cachecolor/pkg/color"
	"github.com/cachecolor/cachecolor/pkg/config"
	"github.com/cachecolor/cachecolor/pkg/pagemap"
	"github.com/cachecolor/cachecolor/pkg/report"
	"github.com/cachecolor/cachecolor/pkg/util/va"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Show the physical frames and colors of a range of pages",
	RunE:  pages,
	Example: `
	# Allocate and probe 16 pages of the calling process
	cachecolor pages

	# Probe 32 pages of another process
	cachecolor pages --pagemap.pid=4211 --pages.address=0x7f3a12c00000 -c 32
	`,
}

var pagesCfg = config.NewWithOpts(config.WithPages())

func init() {
	pagesCfg.MustViperize(pagesCmd)
	RootCmd.AddCommand(pagesCmd)
}

func pages(cmd *cobra.Command, args []string) error {
	if _, err := bootstrap.InitConfigAndLogger(pagesCfg); err != nil {
		return err
	}
	p := pagesCfg.Hierarchy
	scheme, err := color.ForLevel(p, pagesCfg.CacheLevel)
	if err != nil {
		return err
	}
	prober := pagemap.NewProber(pagemap.WithPID(pagesCfg.PID))
	straddle, err := p.Straddle(prober.PageSize())
	if err != nil {
		return err
	}

	base := va.Address(pagesCfg.Address)
	if pagesCfg.PID == 0 {
		region, err := va.Allocate(uint64(pagesCfg.Pages)*p.Page.Size, p.Page.Size, pagesCfg.Mmap.Shared)
		if err != nil {
			return err
		}
		defer region.Close()
		region.Fill(1)
		base = region.Base()
	}

	entries, err := prober.Probe(base, pagesCfg.Pages, int(straddle))
	if err != nil {
		return err
	}
	if entries.Unresolved() {
		log.Warn("frame numbers are hidden. Run as root to resolve physical addresses")
	}
	report.Pages(cmd.OutOrStdout(), base, entries, scheme, p.Page.Size, prober.PageSize())
	return nil
}
