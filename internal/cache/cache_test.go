package cache

import (
	"testing"
	"time"

	"kitescreener/models"
)

func TestHistoryValidSameDay(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	store := New(func() time.Time { return now })

	candles := []models.Candle{{Close: 100}}
	store.PutHistory("RELIANCE", candles)

	got, ok := store.History("RELIANCE")
	if !ok || len(got) != 1 {
		t.Fatalf("same-day lookup missed: ok=%v len=%d", ok, len(got))
	}

	// Later the same day is still a hit
	now = now.Add(5 * time.Hour)
	if _, ok := store.History("RELIANCE"); !ok {
		t.Error("later same-day lookup missed")
	}
}

func TestHistoryExpiresNextDay(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	store := New(func() time.Time { return now })

	store.PutHistory("TCS", []models.Candle{{Close: 100}})

	now = now.AddDate(0, 0, 1)
	if _, ok := store.History("TCS"); ok {
		t.Error("stale entry served on the next calendar day")
	}
}

func TestHistoryMissUnknownSymbol(t *testing.T) {
	store := New(nil)
	if _, ok := store.History("INFY"); ok {
		t.Error("hit for a symbol never stored")
	}
}

func TestUniverseSameDayAndRollover(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	store := New(func() time.Time { return now })

	store.PutUniverse([]models.Instrument{{Symbol: "RELIANCE", Token: 738561}})

	got, ok := store.Universe()
	if !ok || len(got) != 1 || got[0].Symbol != "RELIANCE" {
		t.Fatalf("same-day universe lookup missed: ok=%v %v", ok, got)
	}

	now = now.AddDate(0, 0, 1)
	if _, ok := store.Universe(); ok {
		t.Error("stale universe served on the next calendar day")
	}
}

func TestClear(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	store := New(func() time.Time { return now })

	store.PutHistory("RELIANCE", []models.Candle{{Close: 100}})
	store.PutUniverse([]models.Instrument{{Symbol: "RELIANCE"}})

	store.Clear()

	if _, ok := store.History("RELIANCE"); ok {
		t.Error("history survived Clear")
	}
	if _, ok := store.Universe(); ok {
		t.Error("universe survived Clear")
	}
}
