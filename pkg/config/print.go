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
	"fmt"
	"sort"
	"strings"
)

// Print returns the string with all the effective config options
// pretty-printed, one dotted key per line.
func (c *Config) Print() string {
	flat := make(map[string]string)
	flatten("", c.viper.AllSettings(), flat)

	keys := make([]string, 0, len(flat))
	maxKeyLen := 20
	for k := range flat {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		if flat[k] == "" {
			continue
		}
		sb.WriteString("\n\t")
		sb.WriteString(k)
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat(".", maxKeyLen-len(k)+5))
		sb.WriteString(" ")
		sb.WriteString(flat[k])
	}
	return sb.String()
}

func flatten(prefix string, m map[string]interface{}, out map[string]string) {
	for k, v := range m {
		key := join(prefix, k)
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case []interface{}:
			items := make([]string, len(val))
			for i, item := range val {
				items[i] = fmt.Sprint(item)
			}
			out[key] = strings.Join(items, ",")
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
