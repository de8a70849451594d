package scan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kitescreener/config"
	"kitescreener/internal/cache"
	"kitescreener/internal/detect"
	"kitescreener/internal/indicators"
	"kitescreener/internal/kite"
	"kitescreener/internal/universe"
	"kitescreener/models"
)

// ErrScanInProgress is returned when a scan is requested while one is
// already running; only one scan may be in flight.
var ErrScanInProgress = errors.New("scan already in progress")

// Options tunes the orchestrator.
type Options struct {
	HistoryDays int           // candle range fetched per symbol
	RetryWait   time.Duration // wait before the single rate-limit retry
	EventBuffer int
	Clock       func() time.Time
}

// Orchestrator runs one end-to-end scan: resolve universe, fetch quotes,
// fetch per-symbol history through the cache, analyze, score, sort. Stages
// run strictly in sequence.
type Orchestrator struct {
	client   models.MarketClient
	resolver *universe.Resolver
	store    *cache.Store
	opts     Options
	events   chan models.ProgressEvent
	mu       sync.Mutex
	logger   zerolog.Logger
}

// New creates an Orchestrator around a market client and cache store.
func New(client models.MarketClient, store *cache.Store, opts Options) *Orchestrator {
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 400
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 1500 * time.Millisecond
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Orchestrator{
		client:   client,
		resolver: universe.New(client),
		store:    store,
		opts:     opts,
		events:   make(chan models.ProgressEvent, opts.EventBuffer),
		logger:   log.With().Str("component", "scan").Logger(),
	}
}

// Events is the progress stream. Sends never block: a slow consumer loses
// intermediate events, not the scan.
func (o *Orchestrator) Events() <-chan models.ProgressEvent {
	return o.events
}

func (o *Orchestrator) emit(ev models.ProgressEvent) {
	select {
	case o.events <- ev:
	default:
	}
}

func (o *Orchestrator) fail(stage models.ScanStage, err error) error {
	o.emit(models.ProgressEvent{Stage: models.StageError, Message: err.Error()})
	o.logger.Error().Err(err).Str("stage", string(stage)).Msg("scan failed")
	return err
}

// ClearCache drops all cached state, forcing the next scan to refetch
// everything.
func (o *Orchestrator) ClearCache() {
	o.store.Clear()
}

// Scan runs one full pass over the universe and returns results sorted by
// descending score (stable: equal scores keep universe order). A failure
// before the history stage aborts the scan; per-symbol history failures
// only shrink the result set. Cached state is never partially overwritten.
func (o *Orchestrator) Scan(ctx context.Context, cfg config.Thresholds) ([]models.ScanResult, error) {
	if !o.mu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer o.mu.Unlock()

	// Universe: resolved once per calendar day
	o.emit(models.ProgressEvent{Stage: models.StageResolvingUniverse})
	instruments, ok := o.store.Universe()
	if !ok {
		var err error
		instruments, err = o.resolver.Resolve(ctx)
		if err != nil {
			return nil, o.fail(models.StageResolvingUniverse, fmt.Errorf("resolving universe: %w", err))
		}
		o.store.PutUniverse(instruments)
	}

	// Quotes: one snapshot per scan, fatal on failure since scoring needs
	// both a live snapshot and history
	o.emit(models.ProgressEvent{Stage: models.StageFetchingQuotes, Total: len(instruments)})
	symbols := make([]string, 0, len(instruments))
	for _, inst := range instruments {
		symbols = append(symbols, inst.Symbol)
	}
	quotes, err := o.client.FetchQuotes(ctx, symbols)
	if err != nil {
		return nil, o.fail(models.StageFetchingQuotes, fmt.Errorf("fetching quotes: %w", err))
	}

	// History: sequential, cache-first, skip-and-continue per symbol
	now := o.opts.Clock()
	from := now.AddDate(0, 0, -o.opts.HistoryDays)
	histories := make(map[string][]models.Candle, len(instruments))

	for i, inst := range instruments {
		o.emit(models.ProgressEvent{
			Stage:   models.StageFetchingHistory,
			Current: i + 1,
			Total:   len(instruments),
			Message: inst.Symbol,
		})

		if _, ok := quotes[inst.Symbol]; !ok {
			o.logger.Debug().Str("symbol", inst.Symbol).Msg("no quote, skipped")
			continue
		}

		if candles, ok := o.store.History(inst.Symbol); ok {
			histories[inst.Symbol] = candles
			continue
		}

		candles, err := o.fetchHistory(ctx, inst.Token, from, now)
		if err != nil {
			if errors.Is(err, kite.ErrNotAuthenticated) {
				return nil, o.fail(models.StageFetchingHistory, err)
			}
			if ctx.Err() != nil {
				return nil, o.fail(models.StageFetchingHistory, ctx.Err())
			}
			o.logger.Warn().Err(err).Str("symbol", inst.Symbol).Msg("history fetch failed, symbol dropped")
			continue
		}
		o.store.PutHistory(inst.Symbol, candles)
		histories[inst.Symbol] = candles
	}

	// Analysis: indicators, detectors, score
	o.emit(models.ProgressEvent{Stage: models.StageAnalyzing, Total: len(histories)})
	results := make([]models.ScanResult, 0, len(histories))
	for _, inst := range instruments {
		quote, ok := quotes[inst.Symbol]
		if !ok {
			continue
		}
		candles, ok := histories[inst.Symbol]
		if !ok {
			continue
		}
		results = append(results, o.analyze(inst, quote, candles, cfg))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	o.emit(models.ProgressEvent{Stage: models.StageDone, Total: len(results)})
	o.logger.Info().Int("results", len(results)).Msg("scan complete")
	return results, nil
}

// fetchHistory retries exactly once, and only on a 429. Everything else is
// permanent as far as this symbol is concerned.
func (o *Orchestrator) fetchHistory(ctx context.Context, token int64, from, to time.Time) ([]models.Candle, error) {
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(o.opts.RetryWait), 1)
	return backoff.RetryWithData(func() ([]models.Candle, error) {
		candles, err := o.client.FetchDailyHistory(ctx, token, from, to)
		if err != nil {
			if errors.Is(err, kite.ErrRateLimited) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return candles, nil
	}, backoff.WithContext(policy, ctx))
}

func (o *Orchestrator) analyze(inst models.Instrument, quote models.Quote, candles []models.Candle, cfg config.Thresholds) models.ScanResult {
	derived := indicators.ComputeDerived(candles)
	price := quote.LastPrice

	result := models.ScanResult{
		Instrument: inst,
		Quote:      quote,
		Derived:    derived,
		Volume:     detect.Volume(quote, derived, cfg),
		EMAHits:    detect.EMAHits(price, derived, cfg),
		High52W:    detect.Breakout52Week(price, derived, cfg),
		High20D:    detect.Breakout20Day(price, derived),
		Confluence: detect.Confluence(candles, price, cfg),
	}
	result.Score = Score(result)
	return result
}
