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

// Package cgroups detects whether the process runs inside a container.
// Container runtimes usually drop the capability needed to read frame
// numbers from the page map, even for the root user.
package cgroups

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/cachecolor/cachecolor/internal/procfs"
)

// cgroupContainerRegexp represents the regular expression for matching the cgroup path pertaining
// to one of the container engines or orchestration platforms.
//
// docker - regular Docker containers
// lxc - Linux containers
// kubepods - the cgroup path for Kubernetes-managed containers
// ecs - the cgroup path for ECS (Elastic Container service) containers
// libpod - podman containers
// crio - crio runtime containers
var cgroupContainerRegexp = regexp.MustCompile("docker|lxc|kubepods|ecs|libpod|crio")

// InContainer determines whether the current process is running in a container.
func InContainer() bool {
	return matchesContainerCgroup(filepath.Join(procfs.Path(), "self", "cgroup"))
}

func matchesContainerCgroup(path string) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return cgroupContainerRegexp.Match(b)
}
