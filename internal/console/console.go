// Package console renders harness progress and summaries for humans.
//
// Rendering goes through the Reporter interface with two implementations:
// a styled one for terminals and a plain one for pipes, CI logs, and
// anyone who sets NO_COLOR. Both produce the same text; the styled
// reporter only adds color, so nothing downstream may depend on styling.
package console

import (
	"io"
	"os"

	"opharness/internal/report"
	"opharness/internal/subject"
	"opharness/internal/vector"
)

// Reporter is the harness's voice. Implementations must be safe to call
// from a single goroutine; the run coordinator serializes result delivery.
type Reporter interface {
	// Infof prints one informational line.
	Infof(format string, args ...any)
	// Errorf prints one error line, prefixed "Error: ".
	Errorf(format string, args ...any)
	// Result prints the line for one finished case.
	Result(res subject.Result)
	// Summary prints the end-of-run aggregate block.
	Summary(sum report.Summary)
	// FetchEvent prints progress for one vector download. Vectors that
	// were already present print nothing.
	FetchEvent(ev vector.Event)
	// FetchSummary closes out a download pass.
	FetchSummary(sum vector.FetchSummary)
}

// New picks a reporter for w. Styling is off when noColor is set, and the
// NO_COLOR convention is honored either way.
func New(w io.Writer, noColor, verbose bool) Reporter {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return &plainReporter{w: w, verbose: verbose}
	}
	return &styledReporter{w: w, verbose: verbose, styles: DefaultStyles()}
}
