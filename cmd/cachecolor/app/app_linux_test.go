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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	out, err := execute(t, "info", "--logging.path", t.TempDir(), "--profile", "haswell")
	if os.Getpagesize() != 4096 {
		require.NoError(t, err)
		assert.Contains(t, out, "warning")
		return
	}
	require.NoError(t, err)
	assert.Contains(t, out, "page size {model:4096,os:4096,straddle:1} cache line size 64")
	assert.Contains(t, out, "L2 bits {color:3,index:6,line:6}, colors: 8, ways: 8")
	assert.Contains(t, out, "kernel ")
}

func TestPages(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("the page map is opened for writing, which requires root")
	}
	out, err := execute(t, "pages", "--logging.path", t.TempDir(), "-c", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "page #  0 virt addr 0x")
	assert.Contains(t, out, "page #  3 virt addr 0x")
	assert.Contains(t, out, "color")
}

func TestRunRequiresRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root")
	}
	_, err := execute(t, "run", "--logging.path", t.TempDir(), "--progress=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "privileged")
}
