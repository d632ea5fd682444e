// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/csbench/csbench/benchcfg"
)

// WriteFile renders f in the text data format. Benchmark names
// containing commas cannot be represented and are rejected.
func WriteFile(w io.Writer, f *File) error {
	var sb strings.Builder
	sb.WriteString("# meas=")
	sb.WriteString(quoteHeader(f.MeasName))
	if f.Units.Kind != benchcfg.UNone {
		sb.WriteString(" units=")
		sb.WriteString(quoteHeader(f.Units.String()))
	}
	if f.Extract != "" {
		sb.WriteString(" extract=")
		sb.WriteString(quoteHeader(f.Extract))
	}
	sb.WriteByte('\n')

	for i := range f.Benches {
		b := &f.Benches[i]
		if strings.ContainsRune(b.Name, ',') {
			return fmt.Errorf("benchmark name %q contains a comma", b.Name)
		}
		sb.WriteString(b.Name)
		for _, v := range b.Samples {
			sb.WriteByte(',')
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func quoteHeader(s string) string {
	if strings.ContainsAny(s, " \t") {
		return "'" + s + "'"
	}
	return s
}
