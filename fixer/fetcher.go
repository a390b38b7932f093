package fixer

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/poscalc/market"
	"go.uber.org/zap"
)

// RateSource is anything that can produce a rate table for a base currency.
type RateSource interface {
	Latest(ctx context.Context, base string, symbols ...string) (market.Rates, error)
}

// Result is delivered once per FetchLatest call.
type Result struct {
	Seq      uint64
	Base     string
	Rates    market.Rates
	Err      error
	Duration time.Duration
}

// Fetcher runs one rate request at a time in the background. Starting a
// new request cancels the one in flight; its result still arrives but
// IsStale reports true for it.
type Fetcher struct {
	src RateSource
	log *zap.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewFetcher(src RateSource, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{src: src, log: log}
}

// FetchLatest starts a request for base and returns a channel that yields
// exactly one Result and is then closed.
func (f *Fetcher) FetchLatest(ctx context.Context, base string) <-chan Result {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	seq := f.seq
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer cancel()

		start := time.Now()
		rates, err := f.src.Latest(ctx, base)
		res := Result{Seq: seq, Base: base, Rates: rates, Err: err, Duration: time.Since(start)}

		if err != nil {
			f.log.Warn("rates_fetch_failed",
				zap.Uint64("seq", seq),
				zap.String("base", base),
				zap.Error(err),
			)
		} else {
			f.log.Debug("rates_fetched",
				zap.Uint64("seq", seq),
				zap.String("base", rates.Base),
				zap.Int("count", rates.Len()),
				zap.Duration("took", res.Duration),
			)
		}
		out <- res
	}()
	return out
}

// IsStale reports whether a newer request was started after r's.
func (f *Fetcher) IsStale(r Result) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return r.Seq != f.seq
}

// Close cancels any request in flight.
func (f *Fetcher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}
