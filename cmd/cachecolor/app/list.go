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
	"github.com/cachecolor/cachecolor/internal/bootstrap"
	"github.com/cachecolor/cachecolor/pkg/config"
	"github.com/cachecolor/cachecolor/pkg/hierarchy"
	"github.com/cachecolor/cachecolor/pkg/report"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show info about memory hierarchy profiles",
}

var listProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List built-in memory hierarchy profiles",
	RunE:  listProfiles,
}

var listCfg = config.NewWithOpts(config.WithList())

func init() {
	listCfg.MustViperize(listProfilesCmd)

	listCmd.AddCommand(listProfilesCmd)
}

// listProfiles renders a table with the built-in profiles. The selected profile is marked.
func listProfiles(cmd *cobra.Command, args []string) error {
	if _, err := bootstrap.InitConfigAndLogger(listCfg); err != nil {
		return err
	}
	names := hierarchy.Names()
	profiles := make([]hierarchy.Profile, 0, len(names))
	for _, name := range names {
		p, _ := hierarchy.Lookup(name)
		profiles = append(profiles, p)
	}
	report.Profiles(cmd.OutOrStdout(), profiles, listCfg.Hierarchy.Name)
	return nil
}
