package console

import (
	"fmt"
	"io"
	"strings"

	"opharness/internal/report"
	"opharness/internal/subject"
	"opharness/internal/vector"
)

// plainReporter writes unstyled text. Its output is the reference format;
// golden tests pin it.
type plainReporter struct {
	w       io.Writer
	verbose bool
}

func (p *plainReporter) Infof(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *plainReporter) Errorf(format string, args ...any) {
	fmt.Fprintf(p.w, "Error: "+format+"\n", args...)
}

func (p *plainReporter) Result(r subject.Result) {
	fmt.Fprintf(p.w, "%-8s %s\n", statusLabel(r.Verdict), resultTail(r))
	if p.verbose {
		for _, line := range verboseDetail(r) {
			fmt.Fprintln(p.w, line)
		}
	}
}

func (p *plainReporter) Summary(sum report.Summary) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, summaryRule)
	fmt.Fprintln(p.w, "Test Summary")
	fmt.Fprintln(p.w, summaryRule)
	for _, row := range summaryRows(sum) {
		fmt.Fprintln(p.w, row)
	}
	if lines := listings(sum); len(lines) > 0 {
		fmt.Fprintln(p.w)
		for _, line := range lines {
			fmt.Fprintln(p.w, line)
		}
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, successLine(sum))
}

func (p *plainReporter) FetchEvent(ev vector.Event) {
	switch ev.Status {
	case vector.StatusDownloaded:
		fmt.Fprintf(p.w, "  Downloading %s.json... OK\n", ev.Opcode)
	case vector.StatusFailed:
		fmt.Fprintf(p.w, "  Downloading %s.json... FAILED: %v\n", ev.Opcode, ev.Err)
	}
}

func (p *plainReporter) FetchSummary(sum vector.FetchSummary) {
	if !sum.OK() {
		fmt.Fprintf(p.w, "\nFailed to download %d files: %s\n", sum.Failed, strings.Join(sum.FailedOpcodes, ", "))
		return
	}
	fmt.Fprintln(p.w, "Download complete!")
}
