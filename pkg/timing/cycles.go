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

package timing

import (
	"encoding/binary"
	"unsafe"

	kerrors "github.com/cachecolor/cachecolor/pkg/errors"
	"golang.org/x/sys/unix"
)

// CycleTimer counts the CPU cycles the calling thread spends between Start
// and Stop. It is backed by the hardware cycles counter of the performance
// monitoring unit and only counts user space execution.
type CycleTimer struct {
	fd int
}

// NewCycleTimer opens the cycles counter for the calling thread. The caller
// should keep the goroutine locked to its thread while the timer is open.
func NewCycleTimer() (*CycleTimer, error) {
	attr := &unix.PerfEventAttr{
		Type:   unix.PERF_TYPE_HARDWARE,
		Config: unix.PERF_COUNT_HW_CPU_CYCLES,
		Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
		Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
	}
	fd, err := unix.PerfEventOpen(attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return nil, kerrors.Environment("perf_event_open", err)
	}
	return &CycleTimer{fd: fd}, nil
}

// Start resets and enables the counter.
func (t *CycleTimer) Start() error {
	if err := unix.IoctlSetInt(t.fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
		return kerrors.Environment("ioctl(PERF_EVENT_IOC_RESET)", err)
	}
	if err := unix.IoctlSetInt(t.fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
		return kerrors.Environment("ioctl(PERF_EVENT_IOC_ENABLE)", err)
	}
	return nil
}

// Stop disables the counter and returns the cycles elapsed since Start.
func (t *CycleTimer) Stop() (uint64, error) {
	if err := unix.IoctlSetInt(t.fd, unix.PERF_EVENT_IOC_DISABLE, 0); err != nil {
		return 0, kerrors.Environment("ioctl(PERF_EVENT_IOC_DISABLE)", err)
	}
	var b [8]byte
	n, err := unix.Read(t.fd, b[:])
	if err != nil {
		return 0, kerrors.Environment("read(perf)", err)
	}
	if n < len(b) {
		return 0, kerrors.ShortRead("read(perf)", len(b), n)
	}
	return binary.NativeEndian.Uint64(b[:]), nil
}

// Close releases the counter.
func (t *CycleTimer) Close() error {
	return unix.Close(t.fd)
}

// MeasureCycles runs the operation once and returns the cycles it took.
func MeasureCycles(op func()) (uint64, error) {
	t, err := NewCycleTimer()
	if err != nil {
		return 0, err
	}
	defer t.Close()
	if err := t.Start(); err != nil {
		return 0, err
	}
	op()
	return t.Stop()
}
