// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchcfg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
)

// SplitCommand splits a command string into an exec path and
// argument vector using shell-like word splitting, for use when no
// shell wraps the command.
func SplitCommand(str string) (exe string, args []string, err error) {
	words, err := shlex.Split(str)
	if err != nil {
		return "", nil, fmt.Errorf("invalid command %q: %w", str, err)
	}
	if len(words) == 0 {
		return "", nil, fmt.Errorf("empty command")
	}
	return words[0], words[1:], nil
}

// SubstParam replaces every occurrence of {name} in str with value.
func SubstParam(str, name, value string) string {
	return strings.ReplaceAll(str, "{"+name+"}", value)
}

// UsesParam reports whether str references parameter name.
func UsesParam(str, name string) bool {
	return strings.Contains(str, "{"+name+"}")
}

// ParseParam parses a --param argument of the form
// "name/value1,value2,...".
func ParseParam(s string) (*Param, error) {
	name, list, ok := strings.Cut(s, "/")
	if !ok || name == "" {
		return nil, fmt.Errorf("invalid parameter %q: want name/v1[,v2...]", s)
	}
	values := strings.Split(list, ",")
	if len(values) == 0 || values[0] == "" {
		return nil, fmt.Errorf("parameter %q has no values", name)
	}
	return &Param{Name: name, Values: values}, nil
}

// ParseParamRange parses a --param-range argument of the form
// "name/low/high[/step]". Step defaults to 1.
func ParseParamRange(s string) (*Param, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf("invalid parameter range %q: want name/low/high[/step]", s)
	}
	name := parts[0]
	low, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid range low %q: %w", parts[1], err)
	}
	high, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid range high %q: %w", parts[2], err)
	}
	step := 1.0
	if len(parts) == 4 {
		step, err = strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range step %q: %w", parts[3], err)
		}
	}
	if step <= 0 || high < low {
		return nil, fmt.Errorf("invalid parameter range %q", s)
	}
	p := &Param{Name: name}
	// The epsilon keeps the upper bound inclusive in the face of
	// accumulated floating point error.
	for v := low; v <= high+1e-6; v += step {
		p.Values = append(p.Values, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return p, nil
}

// ParseTimeLimit parses a duration given either as a bare number of
// seconds ("5", "0.5") or with an explicit unit understood by
// time.ParseDuration ("500ms", "2m").
func ParseTimeLimit(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative time limit %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid time limit %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative time limit %q", s)
	}
	return d, nil
}

// Settings is the user intent collected by the CLI before parameter
// substitution: command templates plus everything shared between the
// benchmarks they expand to.
type Settings struct {
	Commands []string
	Meas     []Meas
	Input    InputPolicy
	Output   OutputKind
	Param    *Param
	// Shell wraps command strings when non-empty; otherwise
	// commands are split into argv directly.
	Shell string
	// RenameAll replaces benchmark (or group) names positionally
	// when non-empty.
	RenameAll []string
}

// Instantiate expands command templates over the parameter values,
// producing one BenchParams per concrete command instance and one
// BenchGroup per parameterized template.
func (s *Settings) Instantiate() ([]BenchParams, []BenchGroup, error) {
	if len(s.Commands) == 0 {
		return nil, nil, fmt.Errorf("no commands given")
	}
	meas := s.Meas
	if len(meas) == 0 {
		meas = DefaultMeas()
	}
	output := s.Output
	for i := range meas {
		if meas[i].Kind == MeasCustom {
			output = OutputCapture
			break
		}
	}

	var params []BenchParams
	var groups []BenchGroup
	for _, cmd := range s.Commands {
		if s.Param != nil && UsesParam(cmd, s.Param.Name) {
			grp := BenchGroup{Name: cmd}
			for _, value := range s.Param.Values {
				str := SubstParam(cmd, s.Param.Name, value)
				p, err := s.makeParams(str, meas, output)
				if err != nil {
					return nil, nil, err
				}
				p.GroupIdx = len(groups)
				p.ParamValue = value
				grp.BenchIdxs = append(grp.BenchIdxs, len(params))
				params = append(params, p)
			}
			groups = append(groups, grp)
		} else {
			p, err := s.makeParams(cmd, meas, output)
			if err != nil {
				return nil, nil, err
			}
			params = append(params, p)
		}
	}

	if len(s.RenameAll) != 0 {
		n := len(groups)
		if n == 0 {
			n = len(params)
		}
		if len(s.RenameAll) != n {
			return nil, nil, fmt.Errorf("--rename-all: got %d names, want %d", len(s.RenameAll), n)
		}
		if len(groups) != 0 {
			for i := range groups {
				groups[i].Name = s.RenameAll[i]
			}
		} else {
			for i := range params {
				params[i].Name = s.RenameAll[i]
			}
		}
	}
	return params, groups, nil
}

func (s *Settings) makeParams(str string, meas []Meas, output OutputKind) (BenchParams, error) {
	p := BenchParams{
		Name:     str,
		Str:      str,
		Input:    s.Input,
		Output:   output,
		Meas:     meas,
		GroupIdx: -1,
	}
	if s.Shell != "" {
		shell, shellArgs, err := SplitCommand(s.Shell)
		if err != nil {
			return BenchParams{}, err
		}
		p.Exec = shell
		p.Args = append(shellArgs, "-c", str)
	} else {
		exe, args, err := SplitCommand(str)
		if err != nil {
			return BenchParams{}, err
		}
		p.Exec = exe
		p.Args = args
	}
	return p, nil
}
