// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchtab

import (
	"encoding/json"
	"io"

	"github.com/csbench/csbench/benchan"
)

type jsonMeas struct {
	Name  string    `json:"name"`
	Units string    `json:"units"`
	Val   []float64 `json:"val"`
}

type jsonBench struct {
	Command   string     `json:"command"`
	RunCount  int        `json:"run_count"`
	ExitCodes []int      `json:"exit_codes"`
	Meas      []jsonMeas `json:"meas"`
}

type jsonDoc struct {
	Benches []jsonBench `json:"benches"`
}

// WriteJSON dumps the raw run data of every benchmark: commands, exit
// codes, and the full sample sequences of every measurement.
func WriteJSON(w io.Writer, an *benchan.Analysis) error {
	doc := jsonDoc{}
	for i := range an.Benches {
		b := an.Benches[i].Bench
		jb := jsonBench{
			Command:   b.Params.Name,
			RunCount:  b.RunCount,
			ExitCodes: b.ExitCodes,
		}
		for mi := range an.Data.Meas {
			m := &an.Data.Meas[mi]
			jb.Meas = append(jb.Meas, jsonMeas{
				Name:  m.Name,
				Units: m.Units.String(),
				Val:   b.Samples[mi],
			})
		}
		doc.Benches = append(doc.Benches, jb)
	}
	enc := json.NewEncoder(w)
	return enc.Encode(doc)
}
