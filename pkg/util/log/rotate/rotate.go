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

// Package rotate provides a logrus hook that writes log entries into a
// size-capped file and rotates it once the size limit is reached.
package rotate

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the configuration for the rotate file hook.
type Config struct {
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Level      logrus.Level
	Formatter  logrus.Formatter
}

// Hook writes the formatted entries into the rotated file. Each entry
// is decorated with the source location of the logging call.
type Hook struct {
	config       Config
	w            io.WriteCloser
	depth        int
	skip         int
	skipPrefixes []string
}

// NewHook builds a new rotate file hook.
func NewHook(config Config) (*Hook, error) {
	if config.Filename == "" {
		return nil, errors.New("empty log file name")
	}
	if config.MaxSize <= 0 {
		return nil, fmt.Errorf("invalid log file size %d", config.MaxSize)
	}
	if config.Formatter == nil {
		config.Formatter = &logrus.JSONFormatter{}
	}
	hook := &Hook{
		config:       config,
		depth:        20,
		skip:         5,
		skipPrefixes: []string{"logrus/", "logrus@"},
		w: &lumberjack.Logger{
			Filename:   config.Filename,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
		},
	}
	return hook, nil
}

// Levels determines log levels that for which the logs are written.
func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels[:h.config.Level+1]
}

// Fire is called by logrus when it is about to write the log entry.
func (h *Hook) Fire(entry *logrus.Entry) error {
	file, line := h.findCaller()
	modified := entry.WithField("source", fmt.Sprintf("%s:%d", file, line))
	modified.Level = entry.Level
	modified.Message = entry.Message
	modified.Time = entry.Time
	b, err := h.config.Formatter.Format(modified)
	if err != nil {
		return err
	}
	_, err = h.w.Write(b)
	return err
}

// Close closes the current log file.
func (h *Hook) Close() error {
	return h.w.Close()
}

func (h *Hook) findCaller() (string, int) {
	for i := 0; i < h.depth; i++ {
		file, line, ok := caller(h.skip + i)
		if !ok {
			break
		}
		if !h.skipFile(file) {
			return file, line
		}
	}
	return "?", 0
}

func (h *Hook) skipFile(file string) bool {
	for _, prefix := range h.skipPrefixes {
		if strings.HasPrefix(file, prefix) {
			return true
		}
	}
	return false
}

// caller returns the file of the frame trimmed to its last two path
// components, e.g. thrash/engine.go.
func caller(skip int) (string, int, bool) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0, false
	}
	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			n++
			if n >= 2 {
				file = file[i+1:]
				break
			}
		}
	}
	return file, line, true
}
