// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit formats measurement values with human-readable
// units for reports: times are auto-scaled to s/ms/μs/ns, memory
// sizes to B/KB/MB/GB, and custom units printed as-is.
package benchunit

import (
	"fmt"

	"github.com/csbench/csbench/benchcfg"
)

// FormatTime renders t, given in seconds, scaled to the largest unit
// that keeps the value at or above one.
func FormatTime(t float64) string {
	sign := ""
	if t < 0 {
		t = -t
		sign = "-"
	}
	units := "s"
	switch {
	case t >= 1:
	case t >= 1e-3:
		units = "ms"
		t *= 1e3
	case t >= 1e-6:
		units = "μs"
		t *= 1e6
	case t >= 1e-9:
		units = "ns"
		t *= 1e9
	}
	return sign + scaled(t) + " " + units
}

// FormatMemory renders a byte count scaled to the largest power-of-two
// unit that keeps the value at or above one.
func FormatMemory(t float64) string {
	sign := ""
	if t < 0 {
		t = -t
		sign = "-"
	}
	units := "B"
	switch {
	case t >= 1<<30:
		units = "GB"
		t /= 1 << 30
	case t >= 1<<20:
		units = "MB"
		t /= 1 << 20
	case t >= 1<<10:
		units = "KB"
		t /= 1 << 10
	}
	return sign + scaled(t) + " " + units
}

// scaled keeps roughly four significant digits without switching to
// exponent notation for ordinary magnitudes.
func scaled(t float64) string {
	switch {
	case t >= 1e9:
		return fmt.Sprintf("%.4g", t)
	case t >= 1e3:
		return fmt.Sprintf("%.0f", t)
	case t >= 1e2:
		return fmt.Sprintf("%.1f", t)
	case t >= 1e1:
		return fmt.Sprintf("%.2f", t)
	}
	return fmt.Sprintf("%.3f", t)
}

// FormatValue renders a measurement value in its configured units.
// Time and memory units are first converted to the base unit
// (seconds or bytes) so the auto-scaling applies uniformly.
func FormatValue(v float64, u benchcfg.Units) string {
	switch u.Kind {
	case benchcfg.US:
		return FormatTime(v)
	case benchcfg.UMs:
		return FormatTime(v * 1e-3)
	case benchcfg.UUs:
		return FormatTime(v * 1e-6)
	case benchcfg.UNs:
		return FormatTime(v * 1e-9)
	case benchcfg.UB:
		return FormatMemory(v)
	case benchcfg.UKB:
		return FormatMemory(v * (1 << 10))
	case benchcfg.UMB:
		return FormatMemory(v * (1 << 20))
	case benchcfg.UGB:
		return FormatMemory(v * (1 << 30))
	case benchcfg.UCustom:
		return fmt.Sprintf("%.5g %s", v, u.Str)
	}
	return fmt.Sprintf("%.3g", v)
}
