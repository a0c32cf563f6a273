package console

import (
	"fmt"
	"io"
	"strings"

	"opharness/internal/report"
	"opharness/internal/subject"
	"opharness/internal/vector"
)

// styledReporter colors the plain format. The status column is padded
// before styling so ANSI escapes never skew the alignment.
type styledReporter struct {
	w       io.Writer
	verbose bool
	styles  Styles
}

func (s *styledReporter) Infof(format string, args ...any) {
	fmt.Fprintf(s.w, format+"\n", args...)
}

func (s *styledReporter) Errorf(format string, args ...any) {
	fmt.Fprintln(s.w, s.styles.Error.Render("Error: "+fmt.Sprintf(format, args...)))
}

func (s *styledReporter) Result(r subject.Result) {
	label := statusLabel(r.Verdict)
	col := s.styles.forVerdict(label).Render(fmt.Sprintf("%-8s", label))
	fmt.Fprintf(s.w, "%s %s\n", col, resultTail(r))
	if s.verbose {
		for _, line := range verboseDetail(r) {
			fmt.Fprintln(s.w, s.styles.Muted.Render(line))
		}
	}
}

func (s *styledReporter) Summary(sum report.Summary) {
	fmt.Fprintln(s.w)
	fmt.Fprintln(s.w, s.styles.Rule.Render(summaryRule))
	fmt.Fprintln(s.w, s.styles.Title.Render("Test Summary"))
	fmt.Fprintln(s.w, s.styles.Rule.Render(summaryRule))
	for _, row := range summaryRows(sum) {
		fmt.Fprintln(s.w, row)
	}
	if lines := listings(sum); len(lines) > 0 {
		fmt.Fprintln(s.w)
		for _, line := range lines {
			fmt.Fprintln(s.w, line)
		}
	}
	fmt.Fprintln(s.w)
	if sum.Success() {
		fmt.Fprintln(s.w, s.styles.Success.Render(successLine(sum)))
	} else {
		fmt.Fprintln(s.w, s.styles.Error.Render(successLine(sum)))
	}
}

func (s *styledReporter) FetchEvent(ev vector.Event) {
	switch ev.Status {
	case vector.StatusDownloaded:
		fmt.Fprintf(s.w, "  Downloading %s.json... %s\n", ev.Opcode, s.styles.Success.Render("OK"))
	case vector.StatusFailed:
		fmt.Fprintf(s.w, "  Downloading %s.json... %s\n", ev.Opcode,
			s.styles.Error.Render(fmt.Sprintf("FAILED: %v", ev.Err)))
	}
}

func (s *styledReporter) FetchSummary(sum vector.FetchSummary) {
	if !sum.OK() {
		fmt.Fprintln(s.w)
		fmt.Fprintln(s.w, s.styles.Error.Render(
			fmt.Sprintf("Failed to download %d files: %s", sum.Failed, strings.Join(sum.FailedOpcodes, ", "))))
		return
	}
	fmt.Fprintln(s.w, s.styles.Success.Render("Download complete!"))
}
