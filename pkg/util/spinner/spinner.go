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

package spinner

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Progress indicates a long running step. A nil progress is valid and does
// nothing, so callers don't need to check whether progress is enabled.
type Progress struct {
	s *spinner.Spinner
}

// Show creates a new spinner writing to w and starts it. It returns nil
// when w is nil.
func Show(w io.Writer, prefix string) *Progress {
	if w == nil {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Prefix = "> " + prefix + " "
	s.HideCursor = true
	s.Start()
	return &Progress{s: s}
}

// Update replaces the text shown after the spinner.
func (p *Progress) Update(suffix string) {
	if p == nil {
		return
	}
	p.s.Lock()
	p.s.Suffix = " " + suffix
	p.s.Unlock()
}

// Stop stops the spinner and prints the final message, if any.
func (p *Progress) Stop(final string) {
	if p == nil {
		return
	}
	if final != "" {
		p.s.FinalMSG = p.s.Prefix + final + "\n"
	}
	p.s.Stop()
}
