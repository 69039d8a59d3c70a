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

package app

import (
	"fmt"

	"github.com/cachecolor/cachecolor/internal/bootstrap"
	"github.com/cachecolor/cachecolor/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  printConfig,
}

// config command options
var printCfg = config.NewWithOpts(config.WithRun(), config.WithPages())

func init() {
	printCfg.MustViperize(configCmd)
}

func printConfig(cmd *cobra.Command, args []string) error {
	if _, err := bootstrap.InitConfigAndLogger(printCfg); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), printCfg.Print())
	return err
}
