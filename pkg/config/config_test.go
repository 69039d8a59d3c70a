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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cachecolor/cachecolor/pkg/hierarchy"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T, args []string, options ...Option) *Config {
	c := NewWithOpts(options...)
	cmd := &cobra.Command{}
	c.MustViperize(cmd)
	require.NoError(t, cmd.PersistentFlags().Parse(args))
	return c
}

func TestInitDefaults(t *testing.T) {
	c := newConfig(t, nil, WithRun())
	require.NoError(t, c.Init())

	assert.Equal(t, hierarchy.DefaultName(), c.Hierarchy.Name)
	assert.Equal(t, "L2", c.CacheLevel)
	assert.Equal(t, 1024, c.Population)
	assert.Equal(t, 1024, c.Loops)
	assert.True(t, c.Progress)
	assert.False(t, c.Report.PerfCounters)
	assert.Equal(t, "info", c.Log.Level)
}

func TestInitFlags(t *testing.T) {
	c := newConfig(t, []string{"--profile=m1", "-l", "L1", "--loops=64", "--report.perf-counters"}, WithRun())
	require.NoError(t, c.Init())

	assert.Equal(t, hierarchy.M1Name, c.Hierarchy.Name)
	assert.Equal(t, "L1", c.CacheLevel)
	assert.Equal(t, 64, c.Loops)
	assert.True(t, c.Report.PerfCounters)
}

func TestInitEnv(t *testing.T) {
	t.Setenv("CACHECOLOR_POPULATION", "64")
	t.Setenv("CACHECOLOR_REPORT_SLOTS", "true")
	c := newConfig(t, nil, WithRun())
	require.NoError(t, c.Init())

	assert.Equal(t, 64, c.Population)
	assert.True(t, c.Report.Slots)
}

func TestInitErrors(t *testing.T) {
	var tests = []struct {
		args []string
		opts []Option
	}{
		{[]string{"--profile=zen4"}, []Option{WithRun()}},
		{[]string{"--cache-level=L3"}, []Option{WithInfo()}},
		{[]string{"--loops=1000"}, []Option{WithRun()}},
		{[]string{"--population=0"}, []Option{WithRun()}},
		{[]string{"--pages.count=0"}, []Option{WithPages()}},
		{[]string{"--pagemap.pid=42"}, []Option{WithPages()}},
		{[]string{"--pagemap.pid=42", "--pages.address=0xzz"}, []Option{WithPages()}},
	}

	for _, tt := range tests {
		c := newConfig(t, tt.args, tt.opts...)
		assert.Error(t, c.Init(), "%v", tt.args)
	}
}

func TestInitSuggestsProfile(t *testing.T) {
	c := newConfig(t, []string{"--profile=haswel"}, WithInfo())
	err := c.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Did you mean haswell?")
}

func TestInitPages(t *testing.T) {
	c := newConfig(t, []string{"--pagemap.pid=42", "--pages.address=0x7f0000000000", "-c", "8"}, WithPages())
	require.NoError(t, c.Init())

	assert.Equal(t, 42, c.PID)
	assert.Equal(t, uint64(0x7f0000000000), c.Address)
	assert.Equal(t, 8, c.Pages)
	assert.True(t, c.Mmap.Shared)
}

func TestLoadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cachecolor.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
profile: haswell
loops: 256
report:
  slots: true
logging:
  level: debug
  formatter: json
`), 0o600))

	c := newConfig(t, []string{"--config-file=" + file}, WithRun())
	require.NoError(t, c.TryLoadFile(c.File()))
	require.NoError(t, c.Init())
	require.NoError(t, c.Validate())

	assert.Equal(t, hierarchy.HaswellName, c.Hierarchy.Name)
	assert.Equal(t, 256, c.Loops)
	assert.True(t, c.Report.Slots)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Formatter)

	out := c.Print()
	assert.Contains(t, out, "profile")
	assert.Contains(t, out, "haswell")
	assert.Contains(t, out, "logging.level")
}

func TestValidateInvalidFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cachecolor.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
profile: zen4
loops: many
`), 0o600))

	c := newConfig(t, []string{"--config-file=" + file}, WithRun())
	require.NoError(t, c.TryLoadFile(c.File()))
	require.Error(t, c.Validate())
}

func TestValidateUnsupportedExtension(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cachecolor.toml")
	require.NoError(t, os.WriteFile(file, []byte(`profile = "m1"`), 0o600))

	c := newConfig(t, []string{"--config-file=" + file}, WithRun())
	require.Error(t, c.Validate())
}
