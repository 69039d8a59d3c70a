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

package procfs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Path returns the path to the procfs. In container envs this path
// is overridden and points to the bind-mount location as specified
// when deploying the container. This function attempts to get the
// procfs location from the `PROCFS` environment variable and fallbacks
// to `/proc` if the env variable is not defined.
func Path() string {
	if path := os.Getenv("PROCFS"); path != "" {
		return path
	}
	return "/proc"
}

// Pagemap returns the path of the page map channel of the given process.
// Non-positive pids resolve to the calling process.
func Pagemap(pid int) string {
	return filepath.Join(Path(), proc(pid), "pagemap")
}

// Statm returns the path of the memory status file of the given process.
func Statm(pid int) string {
	return filepath.Join(Path(), proc(pid), "statm")
}

// ResidentSize returns the resident set size in bytes of the given process.
// The second field of the statm file counts resident pages.
func ResidentSize(pid int) (uint64, error) {
	f, err := os.Open(Statm(pid))
	if err != nil {
		return 0, err
	}
	defer f.Close()
	sn := bufio.NewScanner(f)
	if !sn.Scan() {
		if err := sn.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%s is empty", Statm(pid))
	}
	return parseStatm(sn.Text(), uint64(os.Getpagesize()))
}

func parseStatm(line string, pageSize uint64) (uint64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("malformed statm line %q", line)
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed resident pages in statm: %v", err)
	}
	return pages * pageSize, nil
}

func proc(pid int) string {
	if pid <= 0 {
		return "self"
	}
	return strconv.Itoa(pid)
}
