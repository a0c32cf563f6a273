// Package subject spawns the emulator binary under test, one vector file
// per invocation, and classifies what happened.
//
// The subject contract is a single positional argument naming the vector
// JSON file. Exit code 0 means every case in the vector passed; any other
// exit means at least one mismatch. The subject's stdout and stderr are
// captured (size-capped) for the report, never streamed.
package subject

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"opharness/internal/vector"
)

// Verdict classifies a single case run.
type Verdict int

const (
	// VerdictPassed means the subject exited 0.
	VerdictPassed Verdict = iota
	// VerdictFailed means the subject exited non-zero or could not be run.
	VerdictFailed
	// VerdictSkipped means the vector file was absent; the subject was
	// never spawned.
	VerdictSkipped
	// VerdictTimedOut means the subject was killed at the deadline. It
	// counts as a failure everywhere a pass/fail split is made.
	VerdictTimedOut
)

func (v Verdict) String() string {
	switch v {
	case VerdictPassed:
		return "passed"
	case VerdictFailed:
		return "failed"
	case VerdictSkipped:
		return "skipped"
	case VerdictTimedOut:
		return "timeout"
	default:
		return "unknown"
	}
}

// Result is the outcome of one case.
type Result struct {
	Opcode   string
	Verdict  Verdict
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Message  string
}

// Passed reports whether the case passed.
func (r Result) Passed() bool { return r.Verdict == VerdictPassed }

// Failed reports whether the case counts as a failure. Timeouts do,
// skips do not.
func (r Result) Failed() bool {
	return r.Verdict == VerdictFailed || r.Verdict == VerdictTimedOut
}

// Skipped reports whether the case was skipped.
func (r Result) Skipped() bool { return r.Verdict == VerdictSkipped }

const (
	defaultMaxOutput = 1 << 20
	defaultTimeout   = 30 * time.Second

	// killWaitDelay bounds Wait after the kill, in case a grandchild
	// escaped the process group and holds the pipes open.
	killWaitDelay = 5 * time.Second
)

// Invoker runs the subject binary against vectors from a Store.
type Invoker struct {
	// BinaryPath is the subject executable.
	BinaryPath string
	// Store locates vector files.
	Store vector.Store
	// Timeout is the per-case wall clock limit.
	Timeout time.Duration
	// MaxOutputBytes caps captured stdout and stderr individually.
	// Zero means a 1 MiB default.
	MaxOutputBytes int64
	Logger         *zap.Logger
}

// RunCase executes the subject for one opcode and classifies the outcome.
// It never returns an error: anything that goes wrong is folded into the
// Result so a run can always aggregate every case.
func (inv *Invoker) RunCase(ctx context.Context, opcode string) Result {
	log := inv.logger()
	path := inv.Store.Path(opcode)

	if !inv.Store.Present(opcode) {
		log.Debug("vector missing, skipping", zap.String("opcode", opcode), zap.String("vector", path))
		return Result{
			Opcode:  opcode,
			Verdict: VerdictSkipped,
			Message: fmt.Sprintf("Test file not found: %s", path),
		}
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, inv.BinaryPath, path)
	setupProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = killWaitDelay

	maxOutput := inv.MaxOutputBytes
	if maxOutput <= 0 {
		maxOutput = defaultMaxOutput
	}
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdoutBuf, max: maxOutput}
	cmd.Stderr = &limitedWriter{w: &stderrBuf, max: maxOutput}

	log.Debug("running case", zap.String("opcode", opcode), zap.String("vector", path))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := Result{
		Opcode:   opcode,
		ExitCode: -1,
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: elapsed,
	}

	switch {
	case err == nil:
		res.Verdict = VerdictPassed
		res.ExitCode = 0

	case execCtx.Err() == context.DeadlineExceeded:
		res.Verdict = VerdictTimedOut
		res.Message = fmt.Sprintf("Timeout after %gs", timeout.Seconds())

	case execCtx.Err() == context.Canceled:
		res.Verdict = VerdictFailed
		res.Message = fmt.Sprintf("Unexpected error: %v", context.Canceled)

	default:
		res.Verdict = VerdictFailed
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
			res.Message = fmt.Sprintf("Exit code: %d", res.ExitCode)
			if trimmed := strings.TrimSpace(res.Stderr); trimmed != "" {
				res.Message += fmt.Sprintf(", stderr: %s", trimmed)
			}
		} else {
			// Spawn failures (missing binary, permissions) share the
			// Failed verdict but warrant a louder log than a plain
			// non-zero exit.
			log.Warn("subject failed to spawn", zap.String("opcode", opcode), zap.Error(err))
			res.Message = fmt.Sprintf("Unexpected error: %v", err)
		}
	}

	log.Debug("case finished",
		zap.String("opcode", opcode),
		zap.Stringer("verdict", res.Verdict),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration))
	return res
}

// PrerequisiteError is a failed preflight check, with a hint for fixing it.
type PrerequisiteError struct {
	Problem string
	Hint    string
}

func (e *PrerequisiteError) Error() string { return e.Problem }

// Preflight verifies the subject binary and the vector directory exist
// before any case runs. The returned error is a *PrerequisiteError.
func (inv *Invoker) Preflight() error {
	info, err := os.Stat(inv.BinaryPath)
	if err != nil || info.IsDir() {
		return &PrerequisiteError{
			Problem: fmt.Sprintf("test binary not found: %s", inv.BinaryPath),
			Hint:    "Try building with: make harte",
		}
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return &PrerequisiteError{
			Problem: fmt.Sprintf("test binary is not executable: %s", inv.BinaryPath),
			Hint:    "Try building with: make harte",
		}
	}

	dirInfo, err := os.Stat(inv.Store.Dir)
	if err != nil || !dirInfo.IsDir() {
		return &PrerequisiteError{
			Problem: fmt.Sprintf("test data directory not found: %s", inv.Store.Dir),
			Hint:    "Run with --download to download test data",
		}
	}
	return nil
}

func (inv *Invoker) logger() *zap.Logger {
	if inv.Logger != nil {
		return inv.Logger
	}
	return zap.NewNop()
}
