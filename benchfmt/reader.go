// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/csbench/csbench/benchcfg"
)

// A SyntaxError reports a malformed line in a data file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (s *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", s.FileName, s.Line, s.Msg)
}

// ReadFile parses one data file. fileName is used in error messages;
// it is purely diagnostic.
func ReadFile(r io.Reader, fileName string) (*File, error) {
	f := &File{
		MeasName: "wall clock time",
		Units:    benchcfg.Units{Kind: benchcfg.US},
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNum := 0
	for s.Scan() {
		lineNum++
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if lineNum == 1 && strings.HasPrefix(line, "#") {
			if err := parseHeader(f, line[1:], fileName); err != nil {
				return nil, err
			}
			continue
		}
		bs, err := parseDataLine(line, fileName, lineNum)
		if err != nil {
			return nil, err
		}
		f.Benches = append(f.Benches, bs)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// parseHeader handles "meas=... units=... extract=..." tokens, with
// single-quoted values allowed to contain spaces.
func parseHeader(f *File, rest, fileName string) error {
	toks, err := splitHeader(rest, fileName)
	if err != nil {
		return err
	}
	for _, tok := range toks {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			return &SyntaxError{fileName, 1, fmt.Sprintf("invalid header keyword %q", tok)}
		}
		val = strings.TrimPrefix(strings.TrimSuffix(val, "'"), "'")
		switch key {
		case "meas":
			f.MeasName = val
		case "units":
			f.Units = benchcfg.ParseUnits(val)
		case "extract":
			f.Extract = val
		default:
			return &SyntaxError{fileName, 1, fmt.Sprintf("invalid header keyword %q", key)}
		}
	}
	return nil
}

// splitHeader splits on spaces outside single quotes.
func splitHeader(s, fileName string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	quoted := false
	for _, c := range s {
		switch {
		case c == '\'':
			quoted = !quoted
			cur.WriteRune(c)
		case (c == ' ' || c == '\t') && !quoted:
			if cur.Len() > 0 {
				toks = append(toks, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(c)
		}
	}
	if quoted {
		return nil, &SyntaxError{fileName, 1, "unterminated header string"}
	}
	if cur.Len() > 0 {
		toks = append(toks, cur.String())
	}
	return toks, nil
}

func parseDataLine(line, fileName string, lineNum int) (BenchSamples, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return BenchSamples{}, &SyntaxError{fileName, lineNum, "expected name and at least one value"}
	}
	bs := BenchSamples{Name: fields[0]}
	for _, field := range fields[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return BenchSamples{}, &SyntaxError{fileName, lineNum, fmt.Sprintf("invalid value %q", field)}
		}
		bs.Samples = append(bs.Samples, v)
	}
	return bs, nil
}
