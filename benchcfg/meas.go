// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchcfg defines the configuration model of csbench: what
// to measure, how to execute each command, and when to stop. All
// types here are resolved once before scheduling and treated as
// immutable for the lifetime of a run.
package benchcfg

import "fmt"

// A UnitsKind identifies the unit family of a measurement.
type UnitsKind int

const (
	US UnitsKind = iota // seconds
	UMs
	UUs
	UNs
	UB // bytes
	UKB
	UMB
	UGB
	UCustom
	UNone
)

// Units tags measurement values for formatting. Str is only used
// when Kind is UCustom.
type Units struct {
	Kind UnitsKind
	Str  string
}

// IsTime reports whether the units belong to the time family.
func (u Units) IsTime() bool {
	switch u.Kind {
	case US, UMs, UUs, UNs:
		return true
	}
	return false
}

func (u Units) String() string {
	switch u.Kind {
	case US:
		return "s"
	case UMs:
		return "ms"
	case UUs:
		return "μs"
	case UNs:
		return "ns"
	case UB:
		return "B"
	case UKB:
		return "KB"
	case UMB:
		return "MB"
	case UGB:
		return "GB"
	case UCustom:
		return u.Str
	}
	return ""
}

// ParseUnits interprets a unit string from the command line.
func ParseUnits(s string) Units {
	switch s {
	case "s":
		return Units{Kind: US}
	case "ms":
		return Units{Kind: UMs}
	case "us", "μs":
		return Units{Kind: UUs}
	case "ns":
		return Units{Kind: UNs}
	case "b", "B":
		return Units{Kind: UB}
	case "kb", "KB":
		return Units{Kind: UKB}
	case "mb", "MB":
		return Units{Kind: UMB}
	case "gb", "GB":
		return Units{Kind: UGB}
	case "none", "":
		return Units{Kind: UNone}
	}
	return Units{Kind: UCustom, Str: s}
}

// A MeasKind identifies what a measurement records.
type MeasKind int

const (
	// MeasCustom is derived from the benchmarked command's own
	// stdout by piping it through an extraction command during
	// the post-processing phase.
	MeasCustom MeasKind = iota
	MeasWall
	MeasRUsageUTime
	MeasRUsageSTime
	MeasRUsageMaxRSS
	MeasRUsageMinFlt
	MeasRUsageMajFlt
	MeasRUsageNvCSw
	MeasRUsageNivCSw
	MeasPerfCycles
	MeasPerfInstructions
	MeasPerfBranches
	MeasPerfBranchMisses
)

// IsPerf reports whether the kind requires hardware performance
// counter collection.
func (k MeasKind) IsPerf() bool {
	switch k {
	case MeasPerfCycles, MeasPerfInstructions, MeasPerfBranches, MeasPerfBranchMisses:
		return true
	}
	return false
}

// A Meas describes one measurement to record for every run of a
// benchmark. Immutable once configured.
type Meas struct {
	// Name is used in reports.
	Name string
	// Cmd is the shell command extracting a MeasCustom value from
	// the benchmark's captured stdout.
	Cmd   string
	Units Units
	Kind  MeasKind
	// IsSecondary marks measurements that accompany a primary one
	// (rusage and counter values accompany wall time) and are
	// reported under it rather than compared on their own.
	IsSecondary bool
	PrimaryIdx  int
}

// BuiltinMeas returns the named built-in measurement, as accepted by
// the --meas flag.
func BuiltinMeas(name string) (Meas, error) {
	switch name {
	case "wall":
		return Meas{Name: "wall clock time", Units: Units{Kind: US}, Kind: MeasWall}, nil
	case "utime":
		return Meas{Name: "usrtime", Units: Units{Kind: US}, Kind: MeasRUsageUTime, IsSecondary: true}, nil
	case "stime":
		return Meas{Name: "systime", Units: Units{Kind: US}, Kind: MeasRUsageSTime, IsSecondary: true}, nil
	case "maxrss":
		return Meas{Name: "maxrss", Units: Units{Kind: UB}, Kind: MeasRUsageMaxRSS, IsSecondary: true}, nil
	case "minflt":
		return Meas{Name: "minflt", Units: Units{Kind: UNone}, Kind: MeasRUsageMinFlt, IsSecondary: true}, nil
	case "majflt":
		return Meas{Name: "majflt", Units: Units{Kind: UNone}, Kind: MeasRUsageMajFlt, IsSecondary: true}, nil
	case "nvcsw":
		return Meas{Name: "nvcsw", Units: Units{Kind: UNone}, Kind: MeasRUsageNvCSw, IsSecondary: true}, nil
	case "nivcsw":
		return Meas{Name: "nivcsw", Units: Units{Kind: UNone}, Kind: MeasRUsageNivCSw, IsSecondary: true}, nil
	case "cycles":
		return Meas{Name: "cycles", Units: Units{Kind: UNone}, Kind: MeasPerfCycles, IsSecondary: true}, nil
	case "instructions", "ins":
		return Meas{Name: "ins", Units: Units{Kind: UNone}, Kind: MeasPerfInstructions, IsSecondary: true}, nil
	case "branches", "b":
		return Meas{Name: "b", Units: Units{Kind: UNone}, Kind: MeasPerfBranches, IsSecondary: true}, nil
	case "branch-misses", "bm":
		return Meas{Name: "bm", Units: Units{Kind: UNone}, Kind: MeasPerfBranchMisses, IsSecondary: true}, nil
	}
	return Meas{}, fmt.Errorf("unknown measurement %q", name)
}

// DefaultMeas returns the default measurement list: wall clock time
// with user and system CPU time as secondary measurements.
func DefaultMeas() []Meas {
	wall, _ := BuiltinMeas("wall")
	utime, _ := BuiltinMeas("utime")
	stime, _ := BuiltinMeas("stime")
	return []Meas{wall, utime, stime}
}

// PerfMeas returns the hardware counter measurements, attached to
// primary measurement primaryIdx.
func PerfMeas(primaryIdx int) []Meas {
	var out []Meas
	for _, name := range []string{"cycles", "ins", "b", "bm"} {
		m, _ := BuiltinMeas(name)
		m.PrimaryIdx = primaryIdx
		out = append(out, m)
	}
	return out
}
