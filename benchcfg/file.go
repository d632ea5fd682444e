// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A SuiteFile is the YAML form of a benchmark suite, accepted by the
// --config flag as an alternative to spelling everything out on the
// command line. Flags given explicitly still win over file values.
type SuiteFile struct {
	Commands []string `yaml:"commands"`
	Shell    string   `yaml:"shell,omitempty"`

	Param struct {
		Name   string   `yaml:"name"`
		Values []string `yaml:"values,omitempty"`
		Range  string   `yaml:"range,omitempty"` // "low/high[/step]"
	} `yaml:"param,omitempty"`

	Warmup string `yaml:"warmup,omitempty"`
	Time   string `yaml:"time,omitempty"`
	Runs   int    `yaml:"runs,omitempty"`

	Input  string `yaml:"input,omitempty"`  // stdin file
	Stdin  string `yaml:"stdin,omitempty"`  // inline stdin string
	Output string `yaml:"output,omitempty"` // "null" or "inherit"

	Custom []struct {
		Name  string `yaml:"name"`
		Units string `yaml:"units,omitempty"`
		Cmd   string `yaml:"cmd"`
	} `yaml:"custom,omitempty"`
}

// LoadSuiteFile reads and decodes a suite description.
func LoadSuiteFile(path string) (*SuiteFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var f SuiteFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(f.Commands) == 0 {
		return nil, fmt.Errorf("config %s: no commands", path)
	}
	return &f, nil
}

// Apply merges the suite file into settings and cfg, leaving values
// that the file does not mention untouched.
func (f *SuiteFile) Apply(s *Settings, cfg *RunConfig) error {
	s.Commands = append(s.Commands, f.Commands...)
	if f.Shell != "" {
		if f.Shell == "none" {
			s.Shell = ""
			cfg.Shell = ""
		} else {
			s.Shell = f.Shell
			cfg.Shell = f.Shell
		}
	}
	if f.Param.Name != "" {
		if f.Param.Range != "" {
			p, err := ParseParamRange(f.Param.Name + "/" + f.Param.Range)
			if err != nil {
				return err
			}
			s.Param = p
		} else {
			if len(f.Param.Values) == 0 {
				return fmt.Errorf("param %q: no values or range", f.Param.Name)
			}
			s.Param = &Param{Name: f.Param.Name, Values: f.Param.Values}
		}
	}
	if f.Warmup != "" {
		d, err := ParseTimeLimit(f.Warmup)
		if err != nil {
			return err
		}
		cfg.Warmup.TimeLimit = d
	}
	if f.Time != "" {
		d, err := ParseTimeLimit(f.Time)
		if err != nil {
			return err
		}
		cfg.Bench.TimeLimit = d
	}
	if f.Runs > 0 {
		cfg.Bench.Runs = f.Runs
	}
	switch {
	case f.Input != "":
		s.Input = InputPolicy{Kind: InputFile, File: f.Input}
	case f.Stdin != "":
		s.Input = InputPolicy{Kind: InputString, String: f.Stdin}
	}
	switch f.Output {
	case "", "null":
	case "inherit":
		s.Output = OutputInherit
	default:
		return fmt.Errorf("unknown output policy %q", f.Output)
	}
	for _, c := range f.Custom {
		if c.Name == "" || c.Cmd == "" {
			return fmt.Errorf("custom measurement needs name and cmd")
		}
		units := Units{Kind: US}
		if c.Units != "" {
			units = ParseUnits(c.Units)
		}
		s.Meas = append(s.Meas, Meas{
			Name:  c.Name,
			Cmd:   c.Cmd,
			Units: units,
			Kind:  MeasCustom,
		})
	}
	return nil
}
