// Package report turns a pile of case results into run totals.
//
// A timeout is a failure with extra detail: it is counted in Failed (and so
// fails the run) but listed separately so a hung emulator reads differently
// from a wrong one. Skips count toward Total only; a run where everything
// was skipped still succeeds.
package report

import (
	"time"

	"opharness/internal/subject"
)

// Summary holds the aggregate counts for one run.
type Summary struct {
	Total    int
	Passed   int
	Failed   int // includes timeouts
	Skipped  int
	TimedOut int

	// Duration is the summed wall clock of all cases, not the elapsed
	// run time; in parallel mode it exceeds the latter.
	Duration time.Duration

	// Opcode listings in result order. FailedOpcodes excludes timeouts,
	// which appear in TimedOutOpcodes instead.
	FailedOpcodes   []string
	TimedOutOpcodes []string
	SkippedOpcodes  []string
}

// Summarize aggregates results. Counts depend only on the multiset of
// results, not their order; the opcode listings preserve result order.
func Summarize(results []subject.Result) Summary {
	var s Summary
	s.Total = len(results)
	for _, r := range results {
		s.Duration += r.Duration
		switch r.Verdict {
		case subject.VerdictPassed:
			s.Passed++
		case subject.VerdictSkipped:
			s.Skipped++
			s.SkippedOpcodes = append(s.SkippedOpcodes, r.Opcode)
		case subject.VerdictTimedOut:
			s.Failed++
			s.TimedOut++
			s.TimedOutOpcodes = append(s.TimedOutOpcodes, r.Opcode)
		default:
			s.Failed++
			s.FailedOpcodes = append(s.FailedOpcodes, r.Opcode)
		}
	}
	return s
}

// Success reports whether the run passes as a whole: no failures. Skips
// do not count against it.
func (s Summary) Success() bool {
	return s.Failed == 0
}

// Percent returns part as a percentage of total, 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
