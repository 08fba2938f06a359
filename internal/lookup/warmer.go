package lookup

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Warmer periodically looks up every directory ticker so the provider
// caches stay warm.
type Warmer struct {
	svc         *Service
	schedule    string
	concurrency int
	log         zerolog.Logger
	cron        *cron.Cron
}

// WarmResult summarises one warm run.
type WarmResult struct {
	OK       int
	Failed   int
	Duration time.Duration
}

// NewWarmer validates schedule (standard five-field cron syntax or a
// descriptor such as "@every 30m").
func NewWarmer(svc *Service, schedule string, concurrency int, log zerolog.Logger) (*Warmer, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("warm schedule %q: %w", schedule, err)
	}
	if concurrency <= 0 {
		concurrency = 2
	}
	return &Warmer{
		svc:         svc,
		schedule:    schedule,
		concurrency: concurrency,
		log:         log.With().Str("component", "warmer").Logger(),
	}, nil
}

// Start runs the warmer on its schedule until Stop.
func (w *Warmer) Start() error {
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.schedule, func() {
		res := w.Run(context.Background())
		w.log.Info().
			Int("ok", res.OK).
			Int("failed", res.Failed).
			Dur("took", res.Duration).
			Msg("cache warm finished")
	}); err != nil {
		return err
	}
	w.cron.Start()
	w.log.Info().Str("schedule", w.schedule).Msg("cache warmer started")
	return nil
}

// Stop halts the schedule and waits for a running warm to finish or ctx
// to expire.
func (w *Warmer) Stop(ctx context.Context) {
	if w.cron == nil {
		return
	}
	select {
	case <-w.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Run looks up every directory ticker once.
func (w *Warmer) Run(ctx context.Context) WarmResult {
	start := time.Now()
	var ok, failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, ticker := range w.svc.Directory().Tickers() {
		g.Go(func() error {
			if _, err := w.svc.Lookup(gctx, Request{Ticker: ticker}); err != nil {
				failed.Add(1)
				w.log.Debug().Err(err).Str("ticker", ticker).Msg("warm lookup failed")
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return WarmResult{OK: int(ok.Load()), Failed: int(failed.Load()), Duration: time.Since(start)}
}
