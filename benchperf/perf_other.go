// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package benchperf

import "errors"

// Supported reports whether hardware counter collection is supported
// on this platform.
func Supported() bool { return false }

var errUnsupported = errors.New("hardware counters are not supported on this platform")

// Collect is unsupported outside Linux.
func Collect(pid int) (Counters, error) {
	return Counters{}, errUnsupported
}

// SignalCleanup releases any global counter state on abnormal exit.
func SignalCleanup() {}
