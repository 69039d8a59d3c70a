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

// Package config assembles the settings of the experiment from command
// line flags, environment variables and the optional configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kerrors "github.com/cachecolor/cachecolor/pkg/errors"
	"github.com/cachecolor/cachecolor/pkg/hierarchy"
	"github.com/cachecolor/cachecolor/pkg/util/bits"
	"github.com/cachecolor/cachecolor/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFile   = "config-file"
	profile      = "profile"
	cacheLevel   = "cache-level"
	population   = "population"
	loops        = "loops"
	progress     = "progress"
	mmapShared   = "mmap.shared"
	pagesCount   = "pages.count"
	pagesPID     = "pagemap.pid"
	pagesAddress = "pages.address"
	perfCounters = "report.perf-counters"
	reportSlots  = "report.slots"

	envPrefix = "cachecolor"
)

// MmapConfig controls how the probed memory is mapped.
type MmapConfig struct {
	// Shared backs the pages with a shared mapping instead of a private one.
	Shared bool `json:"shared" yaml:"shared"`
}

// ReportConfig controls what the report renders.
type ReportConfig struct {
	// PerfCounters adds the CPU cycles of each page set to the latency curve.
	PerfCounters bool `json:"perf-counters" yaml:"perf-counters"`
	// Slots prints every page placed into the adversarial region.
	Slots bool `json:"slots" yaml:"slots"`
}

// Config stores configuration options for fine-tuning the experiment.
type Config struct {
	// Profile is the name of the memory hierarchy profile.
	Profile string `json:"profile" yaml:"profile"`
	// CacheLevel is the name of the cache level the colors are derived from.
	CacheLevel string `json:"cache-level" yaml:"cache-level"`
	// Population is the number of modeled pages that are allocated and bucketized.
	Population int `json:"population" yaml:"population"`
	// Loops is the number of timed stride loop trials per page set.
	Loops int `json:"loops" yaml:"loops"`
	// Progress shows a spinner while the memory is populated.
	Progress bool `json:"progress" yaml:"progress"`
	// Pages is the number of pages the pages command allocates and probes.
	Pages int `json:"pages.count" yaml:"pages.count"`
	// PID is the process whose page map is read. Zero designates the calling process.
	PID int `json:"pagemap.pid" yaml:"pagemap.pid"`
	// Address is the page aligned start of the range probed in a foreign process.
	Address uint64 `json:"pages.address" yaml:"pages.address"`

	Mmap   MmapConfig   `json:"mmap" yaml:"mmap"`
	Report ReportConfig `json:"report" yaml:"report"`
	// Log contains log-specific configuration options
	Log log.Config `json:"logging" yaml:"logging"`

	// Hierarchy is the resolved memory hierarchy profile.
	Hierarchy hierarchy.Profile `json:"-" yaml:"-"`

	flags *pflag.FlagSet
	viper *viper.Viper
	opts  *Options
}

// Options determines which config flags are toggled depending on the command type.
type Options struct {
	run   bool
	info  bool
	pages bool
	list  bool
}

// Option is the type alias for the config option.
type Option func(*Options)

// WithRun determines the experiment command is executed.
func WithRun() Option {
	return func(o *Options) {
		o.run = true
	}
}

// WithInfo determines the info command is executed.
func WithInfo() Option {
	return func(o *Options) {
		o.info = true
	}
}

// WithPages determines the pages command is executed.
func WithPages() Option {
	return func(o *Options) {
		o.pages = true
	}
}

// WithList determines the list command is executed.
func WithList() Option {
	return func(o *Options) {
		o.list = true
	}
}

// NewWithOpts builds a new configuration store from a variety of sources such as configuration files,
// environment variables or command line flags.
func NewWithOpts(options ...Option) *Config {
	opts := &Options{}

	for _, opt := range options {
		opt(opts)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	c := &Config{
		Log:   log.Config{},
		viper: v,
		flags: new(pflag.FlagSet),
		opts:  opts,
	}

	c.addFlags()

	return c
}

// File returns the path of the configuration file.
func (c Config) File() string {
	return c.viper.GetString(configFile)
}

// MustViperize adds the flag set to the Cobra command and binds them within the Viper flags.
func (c *Config) MustViperize(cmd *cobra.Command) {
	cmd.PersistentFlags().AddFlagSet(c.flags)
	if err := c.viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// TryLoadFile attempts to load the configuration file from specified path on the file system.
func (c *Config) TryLoadFile(file string) error {
	c.viper.SetConfigFile(file)
	return c.viper.ReadInConfig()
}

// Init setups the configuration state from Viper and resolves the memory
// hierarchy profile.
func (c *Config) Init() error {
	c.Profile = c.viper.GetString(profile)
	c.CacheLevel = c.viper.GetString(cacheLevel)
	c.Population = c.viper.GetInt(population)
	c.Loops = c.viper.GetInt(loops)
	c.Progress = c.viper.GetBool(progress)
	c.Pages = c.viper.GetInt(pagesCount)
	c.PID = c.viper.GetInt(pagesPID)
	c.Mmap.Shared = c.viper.GetBool(mmapShared)
	c.Report.PerfCounters = c.viper.GetBool(perfCounters)
	c.Report.Slots = c.viper.GetBool(reportSlots)
	c.Log.InitFromViper(c.viper)

	var err error
	p, ok := hierarchy.Lookup(c.Profile)
	if !ok {
		if names := hierarchy.Suggest(c.Profile); len(names) > 0 {
			return fmt.Errorf("%w. Did you mean %s?", kerrors.ErrUnknownProfile(c.Profile), strings.Join(names, " or "))
		}
		return kerrors.ErrUnknownProfile(c.Profile)
	}
	if _, ok := p.Level(c.CacheLevel); !ok {
		return kerrors.ErrUnknownCacheLevel(p.Name, c.CacheLevel)
	}
	c.Hierarchy = p

	if c.opts.run {
		if c.Population <= 0 {
			return fmt.Errorf("%s must be positive, got %d", population, c.Population)
		}
		if !bits.IsPowerOfTwo(uint64(c.Loops)) || c.Loops <= 0 {
			return fmt.Errorf("%s must be a power of two, got %d", loops, c.Loops)
		}
	}
	if c.opts.pages {
		if c.Pages <= 0 {
			return fmt.Errorf("%s must be positive, got %d", pagesCount, c.Pages)
		}
		if addr := c.viper.GetString(pagesAddress); addr != "" {
			c.Address, err = strconv.ParseUint(addr, 0, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %v", pagesAddress, err)
			}
		}
		if c.PID != 0 && c.Address == 0 {
			return fmt.Errorf("%s is required when probing the process %d", pagesAddress, c.PID)
		}
	}
	return nil
}

// Validate ensures that all configuration options provided by user have the expected values. It returns
// a list of validation errors prefixed with the offending configuration property/flag.
func (c *Config) Validate() error {
	// we'll first validate the structure and values of the config file
	file := c.File()
	var out interface{}
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	switch filepath.Ext(file) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &out)
	case ".json":
		err = json.Unmarshal(b, &out)
	default:
		return fmt.Errorf("%s is not a supported config file extension", filepath.Ext(file))
	}
	if err != nil {
		return fmt.Errorf("couldn't read the config file: %v", err)
	}
	// validate config file content
	valid, errs := validate(out)
	if !valid || len(errs) > 0 {
		return fmt.Errorf("invalid config: %v", errors.Join(errs...))
	}
	// now validate the Viper config flags
	valid, errs = validate(c.viper.AllSettings())
	if !valid || len(errs) > 0 {
		return fmt.Errorf("invalid config: %v", errors.Join(errs...))
	}
	return nil
}

func (c *Config) addFlags() {
	c.flags.String(configFile, defaultConfigFile(), "Indicates the location of the configuration file")
	c.flags.StringP(profile, "p", hierarchy.DefaultName(), fmt.Sprintf("Memory hierarchy profile (%s)", strings.Join(hierarchy.Names(), "|")))
	c.flags.StringP(cacheLevel, "l", "L2", "Cache level the page colors are derived from")
	if c.opts.run {
		c.flags.IntP(population, "n", 1024, "Number of modeled pages allocated and bucketized by color")
		c.flags.Int(loops, 1024, "Number of timed stride loop trials per page set. Must be a power of two")
		c.flags.Bool(progress, true, "Shows a spinner while the memory is populated")
		c.flags.Bool(perfCounters, false, "Reports the CPU cycles of each page set by means of the hardware cycles counter")
		c.flags.Bool(reportSlots, false, "Prints every page placed into the adversarial region")
	}
	if c.opts.pages {
		c.flags.IntP(pagesCount, "c", 16, "Number of pages to allocate and probe")
		c.flags.Bool(mmapShared, true, "Backs the probed pages with a shared mapping")
		c.flags.Int(pagesPID, 0, "Reads the page map of the given process instead of allocating pages in the calling process")
		c.flags.String(pagesAddress, "", "Start address of the range probed in the process given by --pagemap.pid")
	}
	c.Log.AddFlags(c.flags)
}

func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "cachecolor.yml"
	}
	return filepath.Join(dir, "cachecolor", "cachecolor.yml")
}
