package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"opharness/internal/report"
	"opharness/internal/subject"
	"opharness/internal/vector"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func mixedResults() []subject.Result {
	return []subject.Result{
		{Opcode: "a9", Verdict: subject.VerdictPassed, Duration: 520 * time.Millisecond},
		{Opcode: "00", Verdict: subject.VerdictFailed, ExitCode: 2,
			Message: "Exit code: 2, stderr: mismatch at case 3", Duration: 130 * time.Millisecond},
		{Opcode: "ff", Verdict: subject.VerdictSkipped,
			Message: "Test file not found: data/ff.json"},
		{Opcode: "ba", Verdict: subject.VerdictTimedOut, ExitCode: -1,
			Message: "Timeout after 30s", Duration: 30 * time.Second},
	}
}

func TestPlainMixedRun(t *testing.T) {
	var buf bytes.Buffer
	r := &plainReporter{w: &buf}

	results := mixedResults()
	for _, res := range results {
		r.Result(res)
	}
	r.Summary(report.Summarize(results))

	golden(t).Assert(t, "mixed_run", buf.Bytes())
}

func TestPlainAllPassed(t *testing.T) {
	var buf bytes.Buffer
	r := &plainReporter{w: &buf}

	results := []subject.Result{
		{Opcode: "a9", Verdict: subject.VerdictPassed, Duration: 100 * time.Millisecond},
		{Opcode: "00", Verdict: subject.VerdictPassed, Duration: 200 * time.Millisecond},
	}
	for _, res := range results {
		r.Result(res)
	}
	r.Summary(report.Summarize(results))

	golden(t).Assert(t, "all_passed", buf.Bytes())
}

func TestPlainEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	r := &plainReporter{w: &buf}

	r.Summary(report.Summarize(nil))

	golden(t).Assert(t, "empty_run", buf.Bytes())
}

func TestPlainFetchProgress(t *testing.T) {
	var buf bytes.Buffer
	r := &plainReporter{w: &buf}

	r.FetchEvent(vector.Event{Opcode: "a9", Status: vector.StatusDownloaded})
	r.FetchEvent(vector.Event{Opcode: "00", Status: vector.StatusPresent})
	r.FetchEvent(vector.Event{Opcode: "ff", Status: vector.StatusFailed, Err: errors.New("HTTP 404")})
	r.FetchSummary(vector.FetchSummary{Downloaded: 1, AlreadyPresent: 1, Failed: 1, FailedOpcodes: []string{"ff"}})

	golden(t).Assert(t, "fetch_mixed", buf.Bytes())
}

func TestPlainFetchComplete(t *testing.T) {
	var buf bytes.Buffer
	r := &plainReporter{w: &buf}

	r.FetchSummary(vector.FetchSummary{Downloaded: 2, AlreadyPresent: 149})

	assert.Equal(t, "Download complete!\n", buf.String())
}

func TestPlainVerboseShowsClippedOutput(t *testing.T) {
	var buf bytes.Buffer
	r := &plainReporter{w: &buf, verbose: true}

	r.Result(subject.Result{
		Opcode:   "00",
		Verdict:  subject.VerdictFailed,
		ExitCode: 1,
		Message:  "Exit code: 1",
		Stdout:   strings.Repeat("x", 250),
		Duration: 50 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "output: "+strings.Repeat("x", 200)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 201))
}

func TestPlainVerboseSilentOnPass(t *testing.T) {
	var buf bytes.Buffer
	r := &plainReporter{w: &buf, verbose: true}

	r.Result(subject.Result{
		Opcode:   "a9",
		Verdict:  subject.VerdictPassed,
		Stdout:   "10000 cases checked",
		Duration: 100 * time.Millisecond,
	})

	assert.NotContains(t, buf.String(), "output:")
}

func TestPlainErrorf(t *testing.T) {
	var buf bytes.Buffer
	r := &plainReporter{w: &buf}

	r.Errorf("test binary not found: %s", "./build/harte")

	assert.Equal(t, "Error: test binary not found: ./build/harte\n", buf.String())
}

// The styled reporter renders the same text as the plain one; assertions
// here are substring-based so they hold with or without ANSI escapes.
func TestStyledCarriesSameContent(t *testing.T) {
	var buf bytes.Buffer
	r := &styledReporter{w: &buf, styles: DefaultStyles()}

	results := mixedResults()
	for _, res := range results {
		r.Result(res)
	}
	r.Summary(report.Summarize(results))

	out := buf.String()
	for _, want := range []string{
		"PASS", "FAIL", "SKIP", "TIMEOUT",
		"a9 (0.52s)",
		"Exit code: 2, stderr: mismatch at case 3",
		"Test Summary",
		"Total:    4",
		"Failed (1): 00",
		"Timeout (1): ba",
		"2 test(s) failed",
	} {
		assert.Contains(t, out, want)
	}
}

func TestNewHonorsNoColor(t *testing.T) {
	var buf bytes.Buffer

	t.Setenv("NO_COLOR", "1")
	_, plain := New(&buf, false, false).(*plainReporter)
	assert.True(t, plain, "NO_COLOR must force the plain reporter")

	t.Setenv("NO_COLOR", "")
	_, styled := New(&buf, false, false).(*styledReporter)
	assert.True(t, styled)

	_, plain = New(&buf, true, false).(*plainReporter)
	assert.True(t, plain, "the flag must force the plain reporter")
}
