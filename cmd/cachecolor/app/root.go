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
	"errors"
	"runtime"

	"github.com/spf13/cobra"
)

// RootCmd is the entrance to cachecolor CLI
var RootCmd = &cobra.Command{
	Use:   "cachecolor",
	Short: "Measure cache coloring effects of physical page placement",
	Long: `
	cachecolor resolves the physical frames backing a memory region, buckets
	them by the cache color their physical address maps to, and builds an
	adversarial virtual mapping where more pages of the same color are alive
	than the cache level has ways. The stride loop over that mapping exposes
	the latency of the resulting cache thrashing.
	`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if runtime.GOOS != "linux" {
			return errors.New("cachecolor can only be run on Linux operating systems")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(versionCmd)
}
