package vector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"
)

const userAgent = "opharness/1.0"

// Status classifies the outcome of ensuring one vector.
type Status int

const (
	// StatusPresent means the file already existed and was left alone.
	StatusPresent Status = iota
	// StatusDownloaded means the file was fetched and written.
	StatusDownloaded
	// StatusFailed means the fetch failed; Event.Err holds the cause.
	StatusFailed
)

// Event reports the outcome for one opcode as Ensure works through its list.
type Event struct {
	Opcode string
	Status Status
	Err    error
}

// Progress receives per-opcode events during Ensure. May be nil.
type Progress func(Event)

// FetchSummary aggregates an Ensure call.
type FetchSummary struct {
	Downloaded     int
	AlreadyPresent int
	Failed         int
	FailedOpcodes  []string
}

// OK reports whether every requested vector is now present.
func (s FetchSummary) OK() bool {
	return s.Failed == 0
}

// Fetcher downloads missing vectors into a Store. One upstream file per
// opcode: <BaseURL>/<opcode>.json.
type Fetcher struct {
	BaseURL string
	Store   Store
	Client  *http.Client
	Logger  *zap.Logger
}

// Ensure makes each listed vector present, downloading the ones that are
// missing. Failures are recorded per opcode and never abort the remaining
// downloads; the error return is reserved for the store directory being
// unusable or the context ending.
func (f *Fetcher) Ensure(ctx context.Context, opcodes []string, progress Progress) (FetchSummary, error) {
	if err := f.Store.EnsureDir(); err != nil {
		return FetchSummary{}, fmt.Errorf("create vector dir: %w", err)
	}

	var sum FetchSummary
	for _, op := range opcodes {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if f.Store.Present(op) {
			sum.AlreadyPresent++
			emit(progress, Event{Opcode: op, Status: StatusPresent})
			continue
		}
		url := f.BaseURL + "/" + op + ".json"
		if err := f.download(ctx, url, f.Store.Path(op)); err != nil {
			sum.Failed++
			sum.FailedOpcodes = append(sum.FailedOpcodes, op)
			f.logger().Warn("vector download failed",
				zap.String("opcode", op),
				zap.String("url", url),
				zap.Error(err))
			emit(progress, Event{Opcode: op, Status: StatusFailed, Err: err})
			continue
		}
		sum.Downloaded++
		f.logger().Debug("vector downloaded", zap.String("opcode", op))
		emit(progress, Event{Opcode: op, Status: StatusDownloaded})
	}
	return sum, nil
}

// download writes the response body to dest via a temp file so a partial
// download never satisfies Store.Present.
func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	tmp := dest + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) logger() *zap.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return zap.NewNop()
}

func emit(p Progress, ev Event) {
	if p != nil {
		p(ev)
	}
}
