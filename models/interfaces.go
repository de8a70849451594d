package models

import (
	"context"
	"time"
)

// SessionProvider hands the client a broker session token. Establishing the
// token (login, OAuth, TOTP automation) lives outside this module.
type SessionProvider interface {
	Token() string
	Valid() bool
}

// MarketClient is what the scan pipeline needs from the broker API.
type MarketClient interface {
	ListUniverseInstruments(ctx context.Context) ([]Instrument, error)
	ListExchangeInstruments(ctx context.Context, symbols []string) (map[string]Instrument, error)
	FetchQuotes(ctx context.Context, symbols []string) (map[string]Quote, error)
	FetchDailyHistory(ctx context.Context, token int64, from, to time.Time) ([]Candle, error)
}
