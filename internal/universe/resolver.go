package universe

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kitescreener/models"
)

// Catalog is the slice of the API client the resolver needs.
type Catalog interface {
	ListUniverseInstruments(ctx context.Context) ([]models.Instrument, error)
	ListExchangeInstruments(ctx context.Context, symbols []string) (map[string]models.Instrument, error)
}

// Resolver derives the scan universe: underlyings present in the futures
// catalog that also have a cash-market listing.
type Resolver struct {
	catalog Catalog
	logger  zerolog.Logger
}

func New(catalog Catalog) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve builds the universe for the current cache epoch. Underlyings that
// fail to map to a cash listing are logged and dropped, not errors.
func (r *Resolver) Resolve(ctx context.Context) ([]models.Instrument, error) {
	futures, err := r.catalog.ListUniverseInstruments(ctx)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(futures))
	for _, f := range futures {
		symbols = append(symbols, f.Symbol)
	}

	cash, err := r.catalog.ListExchangeInstruments(ctx, symbols)
	if err != nil {
		return nil, err
	}

	universe := make([]models.Instrument, 0, len(cash))
	for _, f := range futures {
		inst, ok := cash[f.Symbol]
		if !ok {
			r.logger.Debug().Str("symbol", f.Symbol).Msg("no cash listing, dropped from universe")
			continue
		}
		universe = append(universe, inst)
	}

	r.logger.Info().Int("futures", len(futures)).Int("universe", len(universe)).Msg("universe resolved")
	return universe, nil
}
