package ifs

import (
	"context"
	"fmt"
)

// ProgressFunc receives a percentage in [0,100] and a human-readable status.
// It is invoked synchronously on the calling goroutine; a slow sink slows the
// codec, so callers own any buffering.
type ProgressFunc func(pct float64, status string)

// DefaultProgressInterval is the number of points between progress reports.
const DefaultProgressInterval = 5000

// Options tunes progress reporting for Encode and Decode.
type Options struct {
	// Progress, when non-nil, is called every ProgressInterval points and
	// once more with exactly 100 on completion.
	Progress ProgressFunc
	// ProgressInterval overrides the reporting cadence when positive.
	ProgressInterval int
}

func (o *Options) interval() int {
	if o == nil || o.ProgressInterval <= 0 {
		return DefaultProgressInterval
	}
	return o.ProgressInterval
}

func (o *Options) sink() ProgressFunc {
	if o == nil {
		return nil
	}
	return o.Progress
}

// meter drives the per-loop progress and cancellation cadence shared by the
// encode and decode loops.
type meter struct {
	total    int
	interval int
	sink     ProgressFunc
	verb     string
}

func newMeter(total int, opts *Options, verb string) meter {
	return meter{total: total, interval: opts.interval(), sink: opts.sink(), verb: verb}
}

// step reports after the (done)th point and checks for cancellation.
// done is 1-based. The 100% report is left to finish so the final call is
// exact even when total is a multiple of the interval.
func (m meter) step(ctx context.Context, done int) error {
	if done%m.interval != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return wrapError(KindCanceled, "RVL-CTX-001", fmt.Sprintf("%s canceled after %d of %d points", m.verb, done, m.total), err)
	}
	if m.sink != nil && done < m.total {
		pct := float64(done) / float64(m.total) * 100
		m.sink(pct, fmt.Sprintf("%s %d of %d points", m.verb, done, m.total))
	}
	return nil
}

func (m meter) finish() {
	if m.sink != nil {
		m.sink(100, fmt.Sprintf("%s complete: %d points", m.verb, m.total))
	}
}
