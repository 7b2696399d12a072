// Package refresher re-prices stale market snapshots and evicts cold ones.
package refresher

import (
	"context"
	"time"

	"pazaryeri/internal/config"
	"pazaryeri/internal/models"
	"pazaryeri/internal/pricing"
	"pazaryeri/internal/repository"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Store interface {
	FindStale(ctx context.Context, now time.Time, limit int) ([]models.MarketPriceSnapshot, error)
	ApplyRefresh(ctx context.Context, key string, u repository.SnapshotUpdate) error
	DeleteCold(ctx context.Context, cutoff time.Time) (int64, error)
}

// Searcher is the marketplace-restricted web search used for refreshes.
type Searcher interface {
	RefreshPrice(ctx context.Context, title string) (*pricing.WebAnswer, error)
}

// Report summarizes one sweep.
type Report struct {
	Refreshed int     `json:"refreshed"`
	Errors    int     `json:"errors"`
	Deleted   int64   `json:"deleted"`
	Cost      float64 `json:"cost"`
}

type Deps struct {
	Store    Store
	Searcher Searcher
	// Credential reports a missing search key. A failure aborts the run
	// before anything is touched.
	Credential func() error
	Logger     *zap.Logger
	Now        func() time.Time
	// Progress, if set, is called after every candidate.
	Progress func(done, total int, key string, err error)
}

type Refresher struct {
	cfg     config.Pricing
	deps    Deps
	parser  *pricing.RangeParser
	limiter *rate.Limiter
}

func New(cfg config.Pricing, deps Deps) *Refresher {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	limit := rate.Inf
	if cfg.RefreshDelayMs > 0 {
		limit = rate.Every(time.Duration(cfg.RefreshDelayMs) * time.Millisecond)
	}

	return &Refresher{
		cfg:     cfg,
		deps:    deps,
		parser:  pricing.NewRangeParser(cfg.MinDigits),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Run performs one sweep. Candidates are processed one at a time; a failed
// candidate is counted and skipped.
func (r *Refresher) Run(ctx context.Context) (Report, error) {
	return r.run(ctx, r.deps.Progress)
}

// RunWithProgress is Run with a per-call progress callback in place of
// Deps.Progress.
func (r *Refresher) RunWithProgress(ctx context.Context, progress func(done, total int, key string, err error)) (Report, error) {
	return r.run(ctx, progress)
}

func (r *Refresher) run(ctx context.Context, progress func(done, total int, key string, err error)) (Report, error) {
	var report Report
	log := r.deps.Logger.With(zap.String("action", "refresh_market_data"))

	if r.deps.Credential != nil {
		if err := r.deps.Credential(); err != nil {
			return report, err
		}
	}

	now := r.deps.Now()
	stale, err := r.deps.Store.FindStale(ctx, now, r.cfg.StaleScanLimit)
	if err != nil {
		return report, eris.Wrap(err, "find stale snapshots")
	}

	queue := r.prioritize(stale)
	log.Info("refresh started",
		zap.Int("stale", len(stale)),
		zap.Int("queued", len(queue)),
	)

	for i := range queue {
		snap := &queue[i]
		if err := r.limiter.Wait(ctx); err != nil {
			return report, eris.Wrap(err, "refresh interrupted")
		}

		err := r.refreshOne(ctx, snap)
		if err != nil {
			report.Errors++
			log.Warn("refresh failed", zap.String("product_key", snap.ProductKey), zap.Error(err))
		} else {
			report.Refreshed++
			log.Debug("refreshed", zap.String("product_key", snap.ProductKey))
		}
		if progress != nil {
			progress(i+1, len(queue), snap.ProductKey, err)
		}
	}

	cutoff := now.AddDate(0, 0, -r.cfg.EvictAfterDays)
	deleted, err := r.deps.Store.DeleteCold(ctx, cutoff)
	if err != nil {
		log.Error("eviction failed", zap.Error(err))
	}
	report.Deleted = deleted
	report.Cost = float64(report.Refreshed) * r.cfg.CostPerCall

	log.Info("refresh finished",
		zap.Int("refreshed", report.Refreshed),
		zap.Int("errors", report.Errors),
		zap.Int64("deleted", report.Deleted),
		zap.Float64("cost_usd", report.Cost),
	)
	return report, nil
}

// prioritize puts popular snapshots first, keeping the store order within
// each group, and applies the per-run cap.
func (r *Refresher) prioritize(stale []models.MarketPriceSnapshot) []models.MarketPriceSnapshot {
	queue := make([]models.MarketPriceSnapshot, 0, len(stale))
	var regular []models.MarketPriceSnapshot
	for _, s := range stale {
		if s.QueryCount > r.cfg.PriorityQueryCount {
			queue = append(queue, s)
		} else {
			regular = append(regular, s)
		}
	}
	queue = append(queue, regular...)

	if r.cfg.MaxRefreshPerRun >= 0 && len(queue) > r.cfg.MaxRefreshPerRun {
		queue = queue[:r.cfg.MaxRefreshPerRun]
	}
	return queue
}

func (r *Refresher) refreshOne(ctx context.Context, snap *models.MarketPriceSnapshot) error {
	title := snap.OriginalTitle
	if title == "" {
		title = snap.ProductKey
	}

	ans, err := r.deps.Searcher.RefreshPrice(ctx, title)
	if err != nil {
		return err
	}

	rng, ok := r.parser.ParseWeb(ans.Text)
	if !ok {
		return eris.Errorf("unparseable answer %q", ans.Text)
	}

	now := r.deps.Now()
	return r.deps.Store.ApplyRefresh(ctx, snap.ProductKey, repository.SnapshotUpdate{
		MinPrice:    rng.Min,
		MaxPrice:    rng.Max,
		AvgPrice:    rng.Avg,
		Confidence:  pricing.Confidence(len(ans.Hits), rng.Min, rng.Max, rng.Avg),
		Sources:     pricing.ClassifySources(ans.Hits, r.cfg.SourceSites),
		ExpiresAt:   now.Add(pricing.TTL(r.cfg, snap.Category)),
		UpdatedAt:   now,
		RawResponse: ans.Raw,
	})
}
