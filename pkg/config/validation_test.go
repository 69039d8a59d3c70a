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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValidate(t *testing.T) {
	var tests = []struct {
		text  string
		valid bool
		errs  int
	}{
		{text: `profile: m1
cache-level: L2
population: 2048
loops: 512`, valid: true},
		{text: `profile: zen4`, valid: false, errs: 1},
		{text: `loops: 0
population: -1`, valid: false, errs: 2},
		{text: `mmap:
  shared: yes-please`, valid: false, errs: 1},
		{text: `pages:
  count: 4
  address: "0x7f0000000000"`, valid: true},
		{text: `pages:
  address: "sixteen"`, valid: false, errs: 1},
		{text: `report:
  perf-counters: true
  slot: true`, valid: false, errs: 1},
		{text: `logging:
  level: info
  formatter: pretty
  max-size: 0`, valid: false, errs: 2},
		{text: `profiles:
  - name: custom`, valid: false, errs: 1},
	}

	for i, tt := range tests {
		var out interface{}
		require.NoError(t, yaml.Unmarshal([]byte(tt.text), &out))
		valid, errs := validate(out)
		assert.Equal(t, tt.valid, valid, "%d. %v", i, errs)
		if !tt.valid {
			assert.Len(t, errs, tt.errs, "%d. %v", i, errs)
		}
	}
}

func TestConvertToStringKeys(t *testing.T) {
	_, err := convertToStringKeys(map[interface{}]interface{}{1: "x"}, "")
	require.Error(t, err)

	v, err := convertToStringKeys(map[interface{}]interface{}{"report": map[interface{}]interface{}{"slots": true}}, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"report": map[string]interface{}{"slots": true}}, v)
}

func TestInterpolateSchema(t *testing.T) {
	s := interpolateSchema()
	assert.Contains(t, s, `"enum": ["haswell","m1"]`)
	assert.Contains(t, s, `"enum": ["L1","L2"]`)
	assert.Contains(t, s, `"maximum": 1048576`)
}
