// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import "fmt"

// A FatalError aborts the entire run: process-control failures
// (spawn, reap, redirection, handshake) and benchmarked-command
// failures under the abort-on-failure policy. Measurement-extraction
// errors are ordinary errors; they name the offending command but do
// not carry this type.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

func fatalf(format string, args ...any) error {
	return &FatalError{Err: fmt.Errorf(format, args...)}
}
