// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtab

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/csbench/csbench/benchan"
)

var csvHeader = []string{
	"name", "runs",
	"mean_low", "mean", "mean_high",
	"st_dev_low", "st_dev", "st_dev_high",
	"min", "q1", "median", "q3", "max",
}

// WriteCSV writes one measurement's statistics, one row per
// benchmark.
func WriteCSV(w io.Writer, an *benchan.Analysis, measIdx int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range an.Benches {
		ba := &an.Benches[i]
		d := ba.Distr[measIdx]
		row := []string{
			ba.Bench.Params.Name,
			strconv.Itoa(ba.Bench.RunCount),
			num(d.Mean.Lower), num(d.Mean.Point), num(d.Mean.Upper),
			num(d.StdDev.Lower), num(d.StdDev.Point), num(d.StdDev.Upper),
			num(d.Min), num(d.Q1), num(d.Median), num(d.Q3), num(d.Max),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
