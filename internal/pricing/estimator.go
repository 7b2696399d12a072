package pricing

import (
	"context"
	"time"

	"pazaryeri/internal/config"
	"pazaryeri/internal/models"
	"pazaryeri/internal/repository"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	webSourceLive   = "Perplexity Web Search"
	webSourceSingle = "Perplexity Web Search (tek fiyat)"
	webSourceCache  = "Piyasa Önbelleği"

	defaultSuggestTimeout = time.Minute
)

// Request is one price suggestion request.
type Request struct {
	Title       string
	Category    string
	Description string
	Condition   string
}

type ListingSource interface {
	PricedInCategory(ctx context.Context, category string) ([]models.Listing, error)
}

type SnapshotStore interface {
	Touch(ctx context.Context, seed repository.SnapshotSeed, now time.Time) (*models.MarketPriceSnapshot, error)
	ApplyRefresh(ctx context.Context, key string, u repository.SnapshotUpdate) error
}

// WebSearcher asks a search-augmented model for current market prices.
type WebSearcher interface {
	FetchPrice(ctx context.Context, title, category string) (*WebAnswer, error)
}

// AIEstimator asks a plain model for a price range. It is only consulted
// when the web search produced nothing.
type AIEstimator interface {
	EstimatePrice(ctx context.Context, req Request) (Range, error)
}

type EstimatorDeps struct {
	Listings  ListingSource
	Snapshots SnapshotStore
	Web       WebSearcher // optional
	AI        AIEstimator // optional
	Logger    *zap.Logger
	Now       func() time.Time
	// Timeout bounds one shared suggestion run. Zero means one minute.
	Timeout time.Duration
}

// Estimator runs the hybrid price pipeline for interactive requests.
type Estimator struct {
	cfg    config.Pricing
	deps   EstimatorDeps
	parser *RangeParser
	group  singleflight.Group
}

func NewEstimator(cfg config.Pricing, deps EstimatorDeps) *Estimator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Timeout <= 0 {
		deps.Timeout = defaultSuggestTimeout
	}
	return &Estimator{
		cfg:    cfg,
		deps:   deps,
		parser: NewRangeParser(cfg.MinDigits),
	}
}

// SuggestPrice gathers the site average, a web or cached market price and,
// if needed, an AI estimate, then resolves them into one price.
// Concurrent requests for the same product and condition share one run.
// The shared run is detached from its first caller and bounded by Timeout.
// Each caller returns early when its own ctx is done.
func (e *Estimator) SuggestPrice(ctx context.Context, req Request) (Decision, error) {
	key := ProductKey(req.Category, req.Title)
	ch := e.group.DoChan(key+"#"+req.Condition, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.deps.Timeout)
		defer cancel()
		return e.suggest(runCtx, key, req)
	})

	select {
	case <-ctx.Done():
		return Decision{}, eris.Wrap(ctx.Err(), "suggest price")
	case res := <-ch:
		if res.Err != nil {
			return Decision{}, res.Err
		}
		return res.Val.(Decision), nil
	}
}

func (e *Estimator) suggest(ctx context.Context, key string, req Request) (Decision, error) {
	log := e.deps.Logger.With(
		zap.String("action", "suggest_price"),
		zap.String("product_key", key),
		zap.String("category", req.Category),
	)
	now := e.deps.Now()

	snap, err := e.deps.Snapshots.Touch(ctx, repository.SnapshotSeed{
		ProductKey: key,
		Title:      req.Title,
		Category:   req.Category,
		Condition:  req.Condition,
	}, now)
	if err != nil {
		log.Warn("snapshot touch failed", zap.Error(err))
		snap = nil
	}

	in := Inputs{Condition: req.Condition}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		listings, err := e.deps.Listings.PricedInCategory(gctx, req.Category)
		if err != nil {
			log.Error("site average failed", zap.Error(err))
			return nil
		}
		in.SiteAvg, in.SiteCount = SiteAverage(req.Title, listings)
		return nil
	})
	g.Go(func() error {
		if snap != nil && snap.IsFresh(now) && snap.HasPrice() {
			in.Web = &Range{Min: snap.MinPrice, Max: snap.MaxPrice, Avg: snap.AvgPrice}
			in.WebSource = webSourceCache
			return nil
		}
		in.Web, in.WebSource = e.searchWeb(gctx, log, key, req, now)
		return nil
	})
	// Both legs are best-effort: failures are logged and leave their
	// inputs empty, so Wait never reports an error.
	g.Wait()

	if (in.Web == nil || in.Web.Avg <= 0) && e.deps.AI != nil {
		r, err := e.deps.AI.EstimatePrice(ctx, req)
		switch {
		case eris.Is(err, config.ErrMissingCredential):
			return Decision{}, err
		case err != nil:
			log.Error("ai estimate failed", zap.Error(err))
			return Decision{}, eris.Wrapf(ErrPricingUnavailable, "ai estimate: %v", err)
		}
		in.AIAvg = r.Avg
	}

	d, err := Resolve(e.cfg, in)
	if err != nil {
		log.Warn("no price source produced data")
		return Decision{}, err
	}
	log.Info("price suggested",
		zap.String("rule", d.Rule),
		zap.Float64("price", d.Price),
		zap.Int("site_count", in.SiteCount),
	)
	return d, nil
}

// searchWeb queries the web searcher and stores a successful answer on the
// snapshot. Every failure is logged and reported as no data.
func (e *Estimator) searchWeb(ctx context.Context, log *zap.Logger, key string, req Request, now time.Time) (*Range, string) {
	if e.deps.Web == nil {
		return nil, ""
	}

	ans, err := e.deps.Web.FetchPrice(ctx, req.Title, req.Category)
	if err != nil {
		if eris.Is(err, config.ErrMissingCredential) {
			log.Warn("web search skipped", zap.Error(err))
		} else {
			log.Error("web search failed", zap.Error(err))
		}
		return nil, ""
	}

	r, ok := e.parser.ParseWeb(ans.Text)
	if !ok || r.Avg <= 0 {
		log.Warn("web answer not parseable", zap.String("answer", ans.Text))
		return nil, ""
	}

	update := repository.SnapshotUpdate{
		MinPrice:    r.Min,
		MaxPrice:    r.Max,
		AvgPrice:    r.Avg,
		Confidence:  Confidence(len(ans.Hits), r.Min, r.Max, r.Avg),
		Sources:     ClassifySources(ans.Hits, e.cfg.SourceSites),
		ExpiresAt:   now.Add(TTL(e.cfg, req.Category)),
		UpdatedAt:   now,
		RawResponse: ans.Raw,
	}
	if err := e.deps.Snapshots.ApplyRefresh(ctx, key, update); err != nil {
		log.Warn("snapshot update failed", zap.Error(err))
	}

	if r.Single {
		return &r, webSourceSingle
	}
	return &r, webSourceLive
}
