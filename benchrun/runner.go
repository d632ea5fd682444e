// Copyright 2024 The csbench Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchrun

import (
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/csbench/csbench/benchcfg"
	"github.com/csbench/csbench/benchperf"
)

// A RunOutcome holds everything measured about one execution of a
// benchmarked command.
type RunOutcome struct {
	// ExitCode follows shell semantics: the exit status for a
	// normal exit, 128 plus the signal number for a signal death.
	ExitCode int
	// WallTime is the spawn-to-reap duration in seconds, taken
	// with the monotonic clock.
	WallTime float64
	RUsage   syscall.Rusage
	Counters benchperf.Counters
}

// A Runner executes benchmarked commands according to their input
// and output policies. Failures to spawn, reap or redirect are
// fatal; a non-zero exit of the command itself is an ordinary
// outcome for the caller's failure policy to judge.
type Runner struct {
	cfg *benchcfg.RunConfig
}

func newRunner(cfg *benchcfg.RunConfig) *Runner {
	return &Runner{cfg: cfg}
}

// execute runs the command once. capture receives the command's
// stdout when the output policy asks for it; warmup runs pass
// discard=true to keep warmup output out of the capture file.
func (r *Runner) execute(params *benchcfg.BenchParams, capture *os.File, discard bool) (*RunOutcome, error) {
	if r.cfg.Prepare != "" {
		if err := r.runPrepare(); err != nil {
			return nil, err
		}
	}
	if params.NeedsPerf() && r.cfg.UsePerf {
		return r.executeCounted(params, capture, discard)
	}

	cmd := exec.Command(params.Exec, params.Args...)
	if err := r.redirect(cmd, params, capture, discard); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fatalf("spawn %q: %w", params.Str, err)
	}
	err := cmd.Wait()
	wall := time.Since(start)
	closeInput(cmd)

	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fatalf("wait for %q: %w", params.Str, err)
		}
	}
	return outcomeOf(cmd.ProcessState, wall)
}

// executeCounted runs the command behind the re-exec trampoline so
// hardware counters can be attached before the command starts. The
// child blocks on SIGUSR1 before exec; benchperf.Collect opens the
// counters on its pid, releases it, and reads the counters at exit.
func (r *Runner) executeCounted(params *benchcfg.BenchParams, capture *os.File, discard bool) (*RunOutcome, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fatalf("locate own executable: %w", err)
	}
	path, err := exec.LookPath(params.Exec)
	if err != nil {
		return nil, fatalf("resolve %q: %w", params.Exec, err)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fatalf("handshake pipe: %w", err)
	}
	defer pr.Close()

	args := append([]string{path, params.Exec}, params.Args...)
	cmd := exec.Command(self, args...)
	cmd.Env = append(os.Environ(), trampolineEnv+"=1")
	cmd.ExtraFiles = []*os.File{pw}
	if err := r.redirect(cmd, params, capture, discard); err != nil {
		pw.Close()
		return nil, err
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		pw.Close()
		return nil, fatalf("spawn %q: %w", params.Str, err)
	}
	pw.Close()

	// The child reports readiness with a single byte once it is
	// parked on SIGUSR1. EOF instead means it died before the
	// handshake.
	var ready [1]byte
	if _, err := pr.Read(ready[:]); err != nil {
		cmd.Wait()
		return nil, fatalf("counter handshake with %q: %w", params.Str, err)
	}

	counters, cerr := benchperf.Collect(cmd.Process.Pid)
	err = cmd.Wait()
	wall := time.Since(start)
	closeInput(cmd)

	// The handshake fd is close-on-exec in the child; bytes still
	// arriving after the wait mean exec itself failed.
	var trailer [256]byte
	if n, _ := pr.Read(trailer[:]); n > 0 {
		return nil, fatalf("exec %q: %s", params.Str, trailer[:n])
	}
	if cerr != nil {
		return nil, cerr
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fatalf("wait for %q: %w", params.Str, err)
		}
	}
	out, err := outcomeOf(cmd.ProcessState, wall)
	if err != nil {
		return nil, err
	}
	out.Counters = counters
	return out, nil
}

// redirect applies the benchmark's input and output policies to the
// command before it starts.
func (r *Runner) redirect(cmd *exec.Cmd, params *benchcfg.BenchParams, capture *os.File, discard bool) error {
	switch params.Input.Kind {
	case benchcfg.InputNull:
		// os/exec wires /dev/null for nil stdin.
	case benchcfg.InputFile:
		f, err := os.Open(params.Input.File)
		if err != nil {
			return fatalf("open stdin file: %w", err)
		}
		cmd.Stdin = f
	}

	switch {
	case discard:
		// Warmup output never reaches the capture file.
	case params.Output == benchcfg.OutputInherit:
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	case params.Output == benchcfg.OutputCapture:
		cmd.Stdout = capture
	}
	return nil
}

// closeInput releases the stdin file opened by redirect, if any.
func closeInput(cmd *exec.Cmd) {
	if f, ok := cmd.Stdin.(*os.File); ok {
		f.Close()
	}
}

func (r *Runner) runPrepare() error {
	shell := r.cfg.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.Command(shell, "-c", r.cfg.Prepare)
	if err := cmd.Run(); err != nil {
		return fatalf("prepare command %q: %w", r.cfg.Prepare, err)
	}
	return nil
}

func outcomeOf(ps *os.ProcessState, wall time.Duration) (*RunOutcome, error) {
	ws, ok := ps.Sys().(syscall.WaitStatus)
	if !ok {
		return nil, fatalf("unexpected wait status %T", ps.Sys())
	}
	out := &RunOutcome{WallTime: wall.Seconds()}
	switch {
	case ws.Exited():
		out.ExitCode = ws.ExitStatus()
	case ws.Signaled():
		out.ExitCode = 128 + int(ws.Signal())
	}
	if ru, ok := ps.SysUsage().(*syscall.Rusage); ok && ru != nil {
		out.RUsage = *ru
	}
	return out, nil
}

func timevalSeconds(tv syscall.Timeval) float64 {
	return float64(tv.Sec) + float64(tv.Usec)*1e-6
}
