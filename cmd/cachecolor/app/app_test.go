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
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	if runtime.GOOS != "linux" {
		t.Skip("cachecolor only runs on Linux")
	}
	var buf bytes.Buffer
	RootCmd.SetOutput(&buf)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
	assert.Contains(t, out, "Go compiler")
}

func TestListProfiles(t *testing.T) {
	out, err := execute(t, "list", "profiles", "--logging.path", t.TempDir(), "--profile", "m1")
	require.NoError(t, err)
	assert.Contains(t, out, "m1 *")
	assert.Contains(t, out, "haswell")
}

func TestListProfilesUnknown(t *testing.T) {
	_, err := execute(t, "list", "profiles", "--logging.path", t.TempDir(), "--profile", "zen4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zen4")
}

func TestPrintConfig(t *testing.T) {
	out, err := execute(t, "config", "--logging.path", t.TempDir(), "--loops", "64")
	require.NoError(t, err)
	assert.Contains(t, out, "loops")
	assert.Contains(t, out, "64")
}
