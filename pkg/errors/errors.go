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

package errors

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

var (
	// ErrShortRead is returned when the page map channel yields fewer bytes than requested.
	// It usually denotes a race with memory reclamation or an unmapped range.
	ErrShortRead = errors.New("short read from page map")
	// ErrRemapMisplaced signals the remapped pages landed on an address other than the requested destination
	ErrRemapMisplaced = errors.New("remap landed on an unexpected address")
	// ErrMisaligned is thrown when an address doesn't satisfy the requested alignment
	ErrMisaligned = errors.New("address is not aligned to the requested boundary")
	// ErrNotRoot signals that physical frame numbers can't be resolved without administrative privileges
	ErrNotRoot = errors.New("physical frame numbers are only exposed to privileged users. Please run as root or with CAP_SYS_ADMIN")

	// ErrPageSizeMismatch is returned when the modeled page size is not a multiple of the native page size
	ErrPageSizeMismatch = func(model, native uint64) error {
		return fmt.Errorf("modeled page size %d is not a multiple of the OS page size %d", model, native)
	}
	// ErrUnknownProfile is returned when the requested memory hierarchy profile is not registered
	ErrUnknownProfile = func(name string) error {
		return fmt.Errorf("unknown memory hierarchy profile %q", name)
	}
	// ErrUnknownCacheLevel is returned when the profile doesn't describe the requested cache level
	ErrUnknownCacheLevel = func(profile, level string) error {
		return fmt.Errorf("profile %q has no %s cache level", profile, level)
	}
)

// Kind classifies failures raised while running the experiment.
type Kind uint8

const (
	// KindEnvironment designates missing privileges or an unsupported platform.
	KindEnvironment Kind = iota + 1
	// KindAllocation designates the kernel refusing a mapping request.
	KindAllocation
	// KindInvariant designates alignment, page size or remap placement violations.
	KindInvariant
	// KindShortRead designates truncated page map reads.
	KindShortRead
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindAllocation:
		return "allocation"
	case KindInvariant:
		return "invariant"
	case KindShortRead:
		return "short read"
	default:
		return "unknown"
	}
}

// OpError describes a failed OS-level operation. Besides the operation name and
// the underlying errno-style error, it records the call site that raised it so
// the diagnostic line points straight at the failing call.
type OpError struct {
	Kind Kind
	Op   string
	Err  error
	Site string
}

// Error returns the error message.
func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v [%s failure at %s]", e.Op, e.Err, e.Kind, e.Site)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error { return e.Err }

// NewOpError builds the operation error capturing the site of the caller.
func NewOpError(kind Kind, op string, err error) error {
	return &OpError{Kind: kind, Op: op, Err: err, Site: site(2)}
}

// Environment wraps permission and platform failures.
func Environment(op string, err error) error {
	return &OpError{Kind: KindEnvironment, Op: op, Err: err, Site: site(2)}
}

// Allocation wraps failed mapping requests.
func Allocation(op string, err error) error {
	return &OpError{Kind: KindAllocation, Op: op, Err: err, Site: site(2)}
}

// Invariant wraps violated layout assumptions.
func Invariant(op string, err error) error {
	return &OpError{Kind: KindInvariant, Op: op, Err: err, Site: site(2)}
}

// ShortRead wraps truncated reads. The returned error matches ErrShortRead.
func ShortRead(op string, want, got int) error {
	return &OpError{Kind: KindShortRead, Op: op, Err: fmt.Errorf("%w: want %d bytes, got %d", ErrShortRead, want, got), Site: site(2)}
}

// IsKind determines if the error chain contains an operation error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *OpError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func site(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "?"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return fmt.Sprintf("%s %s:%d", filepath.Base(fn.Name()), filepath.Base(file), line)
}
