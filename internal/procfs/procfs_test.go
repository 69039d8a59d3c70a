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
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	t.Setenv("PROCFS", "/host/proc")
	assert.Equal(t, filepath.Join("/host/proc", "self", "pagemap"), Pagemap(0))
	assert.Equal(t, filepath.Join("/host/proc", "1234", "pagemap"), Pagemap(1234))
	assert.Equal(t, filepath.Join("/host/proc", "self", "statm"), Statm(-1))

	t.Setenv("PROCFS", "")
	assert.Equal(t, "/proc", Path())
}

func TestParseStatm(t *testing.T) {
	rss, err := parseStatm("2051 489 359 1 0 128 0", 4096)
	require.NoError(t, err)
	assert.Equal(t, uint64(489*4096), rss)

	_, err = parseStatm("2051", 4096)
	require.Error(t, err)
	_, err = parseStatm("2051 x 1", 4096)
	require.Error(t, err)
}

func TestResidentSize(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("statm is only available on Linux")
	}
	rss, err := ResidentSize(os.Getpid())
	require.NoError(t, err)
	assert.True(t, rss > 0)
}
