// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/sys/unix"
)

// trampolineEnv marks a process as the counter-handshake child. The
// parent sets it; the child strips it before exec.
const trampolineEnv = "CSBENCH_COUNTER_HANDSHAKE"

// TrampolineMain is the child half of the hardware-counter
// handshake and must be the first call in main. When the process was
// spawned as a trampoline it parks on SIGUSR1, reports readiness on
// fd 3, and on release replaces itself with the benchmarked command;
// it never returns in that case. In a normal invocation it does
// nothing.
//
// The handshake lets the parent attach counters to this pid before
// the benchmarked command starts, so the counters bracket exactly
// the command's execution window.
func TrampolineMain() {
	if os.Getenv(trampolineEnv) == "" {
		return
	}
	// os.Args[1] is the resolved exec path, os.Args[2:] the
	// command's own argv.
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "csbench: malformed trampoline invocation")
		os.Exit(127)
	}
	path, argv := os.Args[1], os.Args[2:]

	release := make(chan os.Signal, 1)
	signal.Notify(release, unix.SIGUSR1)

	handshake := os.NewFile(3, "handshake")
	if handshake == nil {
		fmt.Fprintln(os.Stderr, "csbench: trampoline handshake fd missing")
		os.Exit(127)
	}
	handshake.Write([]byte{0})
	// Close-on-exec: the parent distinguishes a clean exec (fd
	// closes, EOF) from an exec failure (error text arrives after
	// the child exits).
	unix.CloseOnExec(3)

	<-release
	signal.Reset(unix.SIGUSR1)

	env := os.Environ()
	kept := env[:0]
	for _, kv := range env {
		if !strings.HasPrefix(kv, trampolineEnv+"=") {
			kept = append(kept, kv)
		}
	}
	err := unix.Exec(path, argv, kept)
	fmt.Fprintf(handshake, "%v", err)
	os.Exit(127)
}
