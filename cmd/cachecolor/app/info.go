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
	"fmt"
	"os"

	"github.com/cachecolor/cachecolor/internal/bootstrap"
	"github.com/cachecolor/cachecolor/internal/cgroups"
	"github.com/cachecolor/cachecolor/pkg/color"
	"github.com/cachecolor/cachecolor/pkg/config"
	"github.com/cachecolor/cachecolor/pkg/report"
	"github.com/cachecolor/cachecolor/pkg/util/version"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the page size split and the color scheme of the selected profile",
	RunE:  info,
}

var infoCfg = config.NewWithOpts(config.WithInfo())

func init() {
	infoCfg.MustViperize(infoCmd)
	RootCmd.AddCommand(infoCmd)
}

func info(cmd *cobra.Command, args []string) error {
	if _, err := bootstrap.InitConfigAndLogger(infoCfg); err != nil {
		return err
	}
	p := infoCfg.Hierarchy
	scheme, err := color.ForLevel(p, infoCfg.CacheLevel)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	report.Info(out, p, scheme, uint64(os.Getpagesize()))

	release, err := version.Kernel()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "kernel %s, root: %t, container: %t\n", release, os.Geteuid() == 0, cgroups.InContainer())
	if k, err := version.ParseKernel(release); err == nil && k.LessThan(version.PagemapExclusive) {
		fmt.Fprintf(out, "warning: kernels older than %s don't report exclusively mapped pages\n", version.PagemapExclusive)
	}
	return nil
}
