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

package cgroups

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesContainerCgroup(t *testing.T) {
	var tests = []struct {
		cgroup    string
		container bool
	}{
		{"0::/user.slice/user-1000.slice/session-2.scope\n", false},
		{"0::/system.slice/docker-4a8f0c1b2d3e.scope\n", true},
		{"12:memory:/kubepods/burstable/pod1234/abcd\n", true},
		{"0::/machine.slice/libpod-1f2e3d.scope/container\n", true},
	}
	dir := t.TempDir()
	for i, tt := range tests {
		path := filepath.Join(dir, "cgroup")
		require.NoError(t, os.WriteFile(path, []byte(tt.cgroup), 0o600))
		assert.Equal(t, tt.container, matchesContainerCgroup(path), "%d. %s", i, tt.cgroup)
	}
	assert.False(t, matchesContainerCgroup(filepath.Join(dir, "missing")))
}

func TestInContainerUsesProcfs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "self"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "self", "cgroup"), []byte("0::/lxc/payload\n"), 0o600))
	t.Setenv("PROCFS", dir)
	assert.True(t, InContainer())
}
