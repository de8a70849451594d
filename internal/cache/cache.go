package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kitescreener/models"
)

// Clock returns the current time; swapped out in tests to simulate day
// rollover.
type Clock func() time.Time

const universeKey = "__universe__"

type historyEntry struct {
	candles   []models.Candle
	fetchedAt time.Time
}

type universeEntry struct {
	instruments []models.Instrument
	resolvedAt  time.Time
}

// Store is the single authority on whether a network round-trip is needed.
// Entries are valid for the calendar day they were fetched on, measured in
// the exchange timezone. Entries are written whole or not at all.
type Store struct {
	data   *gocache.Cache
	now    Clock
	loc    *time.Location
	logger zerolog.Logger
}

// New creates a Store. A nil clock means real time.
func New(clock Clock) *Store {
	if clock == nil {
		clock = time.Now
	}
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.Local
	}
	return &Store{
		data:   gocache.New(gocache.NoExpiration, 0),
		now:    clock,
		loc:    loc,
		logger: log.With().Str("component", "cache").Logger(),
	}
}

func (s *Store) sameDay(t time.Time) bool {
	now := s.now().In(s.loc)
	t = t.In(s.loc)
	return now.Year() == t.Year() && now.YearDay() == t.YearDay()
}

// History returns a symbol's candles if they were fetched today.
func (s *Store) History(symbol string) ([]models.Candle, bool) {
	v, ok := s.data.Get(symbol)
	if !ok {
		return nil, false
	}
	entry := v.(historyEntry)
	if !s.sameDay(entry.fetchedAt) {
		return nil, false
	}
	return entry.candles, true
}

// PutHistory stores a symbol's freshly fetched candles.
func (s *Store) PutHistory(symbol string, candles []models.Candle) {
	s.data.Set(symbol, historyEntry{candles: candles, fetchedAt: s.now()}, gocache.NoExpiration)
}

// Universe returns the resolved instrument universe if it is still valid
// for today.
func (s *Store) Universe() ([]models.Instrument, bool) {
	v, ok := s.data.Get(universeKey)
	if !ok {
		return nil, false
	}
	entry := v.(universeEntry)
	if !s.sameDay(entry.resolvedAt) {
		return nil, false
	}
	return entry.instruments, true
}

// PutUniverse stores today's resolved universe.
func (s *Store) PutUniverse(instruments []models.Instrument) {
	s.data.Set(universeKey, universeEntry{instruments: instruments, resolvedAt: s.now()}, gocache.NoExpiration)
}

// Clear drops all cached state unconditionally, forcing a full refetch on
// the next scan.
func (s *Store) Clear() {
	s.data.Flush()
	s.logger.Debug().Msg("cache cleared")
}
