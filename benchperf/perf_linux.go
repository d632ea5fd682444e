// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchperf

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// Supported reports whether hardware counter collection is supported
// on this platform.
func Supported() bool { return true }

// hwConfigs lists the fixed set of events we measure, in the order
// their values appear in a grouped read.
var hwConfigs = [...]uint64{
	unix.PERF_COUNT_HW_CPU_CYCLES,
	unix.PERF_COUNT_HW_INSTRUCTIONS,
	unix.PERF_COUNT_HW_BRANCH_INSTRUCTIONS,
	unix.PERF_COUNT_HW_BRANCH_MISSES,
}

// group is a set of perf counters opened for one pid. The first fd
// is the group leader; all counters start disabled and are enabled
// together once the child is released.
type group struct {
	fds [len(hwConfigs)]int
}

func openGroup(pid int) (*group, error) {
	g := &group{}
	leader := -1
	for i, config := range hwConfigs {
		attr := unix.PerfEventAttr{
			Type:        unix.PERF_TYPE_HARDWARE,
			Size:        uint32(unix.PERF_ATTR_SIZE_VER1),
			Config:      config,
			Read_format: unix.PERF_FORMAT_GROUP,
		}
		if i == 0 {
			attr.Bits = unix.PerfBitDisabled
		}
		fd, err := unix.PerfEventOpen(&attr, pid, -1, leader, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			g.close()
			return nil, fmt.Errorf("perf_event_open config %d: %w", config, err)
		}
		g.fds[i] = fd
		if i == 0 {
			leader = fd
		}
	}
	return g, nil
}

func (g *group) close() {
	for _, fd := range g.fds {
		if fd > 0 {
			unix.Close(fd)
		}
	}
}

func (g *group) enable() error {
	if err := unix.IoctlSetInt(g.fds[0], unix.PERF_EVENT_IOC_RESET, unix.PERF_IOC_FLAG_GROUP); err != nil {
		return fmt.Errorf("reset counters: %w", err)
	}
	if err := unix.IoctlSetInt(g.fds[0], unix.PERF_EVENT_IOC_ENABLE, unix.PERF_IOC_FLAG_GROUP); err != nil {
		return fmt.Errorf("enable counters: %w", err)
	}
	return nil
}

func (g *group) disable() error {
	return unix.IoctlSetInt(g.fds[0], unix.PERF_EVENT_IOC_DISABLE, unix.PERF_IOC_FLAG_GROUP)
}

// read gathers the group's values. The grouped read format is a
// count followed by one value per counter in open order.
func (g *group) read() (Counters, error) {
	var c Counters
	buf := make([]byte, 8*(1+len(hwConfigs)))
	n, err := unix.Read(g.fds[0], buf)
	if err != nil {
		return c, fmt.Errorf("read counters: %w", err)
	}
	if n < len(buf) {
		return c, fmt.Errorf("short counter read: %d bytes", n)
	}
	nr := binary.NativeEndian.Uint64(buf)
	if nr != uint64(len(hwConfigs)) {
		return c, fmt.Errorf("unexpected counter group size %d", nr)
	}
	c.Cycles = binary.NativeEndian.Uint64(buf[8:])
	c.Instructions = binary.NativeEndian.Uint64(buf[16:])
	c.Branches = binary.NativeEndian.Uint64(buf[24:])
	c.MissedBranches = binary.NativeEndian.Uint64(buf[32:])
	return c, nil
}

// Collect opens counters on a child blocked on SIGUSR1, releases it,
// and reads the counters once it exits. The child is left in a
// waitable state for the caller to reap.
func Collect(pid int) (Counters, error) {
	g, err := openGroup(pid)
	if err != nil {
		return Counters{}, err
	}
	defer g.close()
	if err := g.enable(); err != nil {
		return Counters{}, err
	}
	if err := unix.Kill(pid, unix.SIGUSR1); err != nil {
		return Counters{}, fmt.Errorf("release child %d: %w", pid, err)
	}
	var info unix.Siginfo
	for {
		err := unix.Waitid(unix.P_PID, pid, &info, unix.WEXITED|unix.WNOWAIT, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return Counters{}, fmt.Errorf("waitid %d: %w", pid, err)
		}
		break
	}
	if err := g.disable(); err != nil {
		return Counters{}, fmt.Errorf("disable counters: %w", err)
	}
	return g.read()
}

// SignalCleanup releases any global counter state on abnormal exit.
// Per-process counter fds are owned by the kernel side of the group
// and close with the process, so there is nothing to do on Linux.
func SignalCleanup() {}
