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
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cachecolor/cachecolor/pkg/hierarchy"
)

var schema = `
{
	"$schema": "http://json-schema.org/draft-07/schema#",

	"type": "object",
	"properties": {
		"config-file":		{"type": "string"},
		"profile":			{"type": "string", "enum": {{ .Profiles | toJson }}},
		"cache-level":		{"type": "string", "enum": {{ .Levels | toJson }}},
		"population":		{"type": "integer", "minimum": 1},
		"loops":			{"type": "integer", "minimum": 1, "maximum": {{ .MaxLoops }}},
		"progress":			{"type": "boolean"},
		"mmap": {
			"type": "object",
			"properties": {
				"shared":		{"type": "boolean"}
			},
			"additionalProperties": false
		},
		"pagemap": {
			"type": "object",
			"properties": {
				"pid":			{"type": "integer", "minimum": 0}
			},
			"additionalProperties": false
		},
		"pages": {
			"type": "object",
			"properties": {
				"count":		{"type": "integer", "minimum": 1},
				"address":		{"type": "string", "pattern": "^(0[xX][0-9a-fA-F]+|[0-9]*)$"}
			},
			"additionalProperties": false
		},
		"report": {
			"type": "object",
			"properties": {
				"perf-counters":	{"type": "boolean"},
				"slots":			{"type": "boolean"}
			},
			"additionalProperties": false
		},
		"logging": {
			"type": "object",
			"properties": {
				"level": 			{"type": "string", "enum": ["panic", "fatal", "error", "warn", "warning", "info", "debug", "trace"]},
				"max-age":			{"type": "integer"},
				"max-backups":		{"type": "integer", "minimum": 1},
				"max-size":			{"type": "integer", "minimum": 1},
				"formatter":		{"type": "string", "enum": ["json", "text"]},
				"path":				{"type": "string"},
				"log-stdout":		{"type": "boolean"}
			},
			"additionalProperties": false
		}
	},
	"additionalProperties": false
}
`

// maxLoops caps the number of timed trials per page set
const maxLoops = 1 << 20

type schemaConfig struct {
	Profiles []string
	Levels   []string
	MaxLoops int
}

func interpolateSchema() string {
	tmpl := template.Must(template.New("schema").Funcs(sprig.TxtFuncMap()).Parse(schema))

	names := hierarchy.Names()
	seen := make(map[string]bool)
	var lvls []string
	for _, name := range names {
		p, _ := hierarchy.Lookup(name)
		for _, l := range p.Levels {
			if !seen[l.Name] {
				seen[l.Name] = true
				lvls = append(lvls, l.Name)
			}
		}
	}

	var b bytes.Buffer
	err := tmpl.Execute(&b, &schemaConfig{
		Profiles: names,
		Levels:   lvls,
		MaxLoops: maxLoops,
	})
	if err != nil {
		return ""
	}

	return b.String()
}
