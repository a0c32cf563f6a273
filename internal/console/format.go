package console

import (
	"fmt"
	"strings"

	"opharness/internal/report"
	"opharness/internal/subject"
)

const (
	summaryRule = "=================================================="

	// outputClip bounds how much subject output a verbose failure line
	// carries; full output stays in the result for machine use.
	outputClip = 200
)

func statusLabel(v subject.Verdict) string {
	switch v {
	case subject.VerdictPassed:
		return "PASS"
	case subject.VerdictFailed:
		return "FAIL"
	case subject.VerdictSkipped:
		return "SKIP"
	case subject.VerdictTimedOut:
		return "TIMEOUT"
	default:
		return "?"
	}
}

// resultTail renders everything after the status column: opcode, duration,
// and the message if any. Skips carry no duration worth showing.
func resultTail(r subject.Result) string {
	tail := r.Opcode
	if r.Verdict != subject.VerdictSkipped {
		tail += fmt.Sprintf(" (%.2fs)", r.Duration.Seconds())
	}
	if r.Message != "" {
		tail += ": " + r.Message
	}
	return tail
}

// verboseDetail returns extra lines for a failed case: the subject's
// output, clipped.
func verboseDetail(r subject.Result) []string {
	if !r.Failed() {
		return nil
	}
	var lines []string
	if out := strings.TrimSpace(r.Stdout); out != "" {
		lines = append(lines, "         output: "+clip(out, outputClip))
	}
	return lines
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func summaryRows(sum report.Summary) []string {
	return []string{
		fmt.Sprintf("Total:    %d", sum.Total),
		fmt.Sprintf("Passed:   %d (%.1f%%)", sum.Passed, report.Percent(sum.Passed, sum.Total)),
		fmt.Sprintf("Failed:   %d (%.1f%%)", sum.Failed, report.Percent(sum.Failed, sum.Total)),
		fmt.Sprintf("Skipped:  %d (%.1f%%)", sum.Skipped, report.Percent(sum.Skipped, sum.Total)),
		fmt.Sprintf("Total time: %.2fs", sum.Duration.Seconds()),
	}
}

// listings renders the per-verdict opcode lists that follow the count
// rows, skipping empty ones.
func listings(sum report.Summary) []string {
	var lines []string
	if len(sum.FailedOpcodes) > 0 {
		lines = append(lines, fmt.Sprintf("Failed (%d): %s", len(sum.FailedOpcodes), strings.Join(sum.FailedOpcodes, ", ")))
	}
	if len(sum.TimedOutOpcodes) > 0 {
		lines = append(lines, fmt.Sprintf("Timeout (%d): %s", len(sum.TimedOutOpcodes), strings.Join(sum.TimedOutOpcodes, ", ")))
	}
	if len(sum.SkippedOpcodes) > 0 {
		lines = append(lines, fmt.Sprintf("Skipped (%d): %s", len(sum.SkippedOpcodes), strings.Join(sum.SkippedOpcodes, ", ")))
	}
	return lines
}

func successLine(sum report.Summary) string {
	if sum.Success() {
		return "All tests passed! 🎉"
	}
	return fmt.Sprintf("%d test(s) failed", sum.Failed)
}
