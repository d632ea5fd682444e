// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/csbench/csbench/benchperf"
)

// SetupSignals arranges for SIGINT to release any OS-level counter
// resources before the process dies. There is no graceful
// cancellation of in-flight child processes: after cleanup the
// default disposition is restored and the signal re-raised so the
// shell sees an honest signal death.
func SetupSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		benchperf.SignalCleanup()
		signal.Reset(os.Interrupt)
		unix.Kill(unix.Getpid(), unix.SIGINT)
	}()
}
