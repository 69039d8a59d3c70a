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

// Package version describes the build of the binary and the release of
// the running kernel.
package version

import (
	"fmt"
	"io"
	"regexp"
	"runtime"

	semver "github.com/hashicorp/go-version"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Version stores the SemVer release information along with the
// commit that produced the release and the build date.
type Version struct {
	Sem    *semver.Version
	Commit string
	Date   string
}

// kernelRegexp extracts the numeric part of the kernel release, dropping
// distribution suffixes such as -91-generic.
var kernelRegexp = regexp.MustCompile(`^\d+\.\d+(\.\d+)?`)

// PagemapExclusive is the first kernel release reporting exclusively
// mapped pages and hiding frame numbers from unprivileged readers.
var PagemapExclusive = semver.Must(semver.NewVersion("4.2"))

// New parses the version string. An empty version designates a dev build.
func New(version, commit, date string) (Version, error) {
	v := Version{Commit: commit, Date: date}
	if version == "" || version == "dev" {
		return v, nil
	}
	sem, err := semver.NewVersion(version)
	if err != nil {
		return v, fmt.Errorf("invalid semver release %q: %v", version, err)
	}
	v.Sem = sem
	return v, nil
}

// IsDev determines if this is a dev version.
func (v Version) IsDev() bool { return v.Sem == nil }

func (v Version) String() string {
	if v.IsDev() {
		return "dev"
	}
	return v.Sem.String()
}

// Render writes the version information as a table.
func (v Version) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendRow(table.Row{"Version", v.String()})
	t.AppendRow(table.Row{"Commit", v.Commit})
	t.AppendRow(table.Row{"Build date", v.Date})

	t.AppendSeparator()

	t.AppendRow(table.Row{"Go compiler", runtime.Version()})
	t.AppendRow(table.Row{"Platform", runtime.GOOS + "/" + runtime.GOARCH})

	t.Render()
}

// ParseKernel parses the kernel release as reported by uname.
func ParseKernel(release string) (*semver.Version, error) {
	m := kernelRegexp.FindString(release)
	if m == "" {
		return nil, fmt.Errorf("unrecognized kernel release %q", release)
	}
	return semver.NewVersion(m)
}
