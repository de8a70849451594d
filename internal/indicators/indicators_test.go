package indicators

import (
	"math"
	"testing"
	"time"

	"kitescreener/models"
)

func generateTestCandles(n int, generator func(int) models.Candle) []models.Candle {
	candles := make([]models.Candle, n)
	for i := 0; i < n; i++ {
		candles[i] = generator(i)
		candles[i].Date = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
	}
	return candles
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEMAConstantSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 42.5
	}

	for _, period := range []int{5, 10, 20, 30} {
		ema, ok := EMA(closes, period)
		if !ok {
			t.Fatalf("EMA(%d) undefined for series of length %d", period, len(closes))
		}
		if !almostEqual(ema, 42.5) {
			t.Errorf("EMA(%d) = %v, want 42.5", period, ema)
		}
	}
}

func TestEMAUndefinedOnShortSeries(t *testing.T) {
	closes := []float64{1, 2, 3}
	if _, ok := EMA(closes, 4); ok {
		t.Error("EMA(4) defined for 3 closes, want undefined")
	}
	if series := EMASeries(closes, 4); series != nil {
		t.Errorf("EMASeries(4) = %v, want nil", series)
	}
}

func TestEMASeriesSeed(t *testing.T) {
	closes := []float64{10, 20, 30, 40, 50, 60}
	series := EMASeries(closes, 4)
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}
	// Seed is the simple average of the first 4 closes
	if !almostEqual(series[0], 25) {
		t.Errorf("seed = %v, want 25", series[0])
	}
	// Then ema = (close-ema)*k + ema with k = 2/5
	want := (50.0-25.0)*0.4 + 25.0
	if !almostEqual(series[1], want) {
		t.Errorf("series[1] = %v, want %v", series[1], want)
	}
}

func TestSlope(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   float64
	}{
		{name: "rising", series: []float64{100, 105, 110}, want: 10},
		{name: "constant", series: []float64{100, 100, 100}, want: 0},
		{name: "falling", series: []float64{100, 95, 90}, want: -10},
		{name: "too short", series: []float64{100}, want: 0},
		{name: "empty", series: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slope(tt.series); !almostEqual(got, tt.want) {
				t.Errorf("Slope() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAvgVolume20(t *testing.T) {
	tooFew := generateTestCandles(9, func(i int) models.Candle {
		return models.Candle{Volume: 1000}
	})
	if _, ok := AvgVolume20(tooFew); ok {
		t.Error("AvgVolume20 defined for 9 candles, want undefined")
	}

	fifteen := generateTestCandles(15, func(i int) models.Candle {
		return models.Candle{Volume: int64(100 * (i + 1))}
	})
	avg, ok := AvgVolume20(fifteen)
	if !ok {
		t.Fatal("AvgVolume20 undefined for 15 candles")
	}
	if !almostEqual(avg, 800) { // mean of 100..1500
		t.Errorf("avg = %v, want 800", avg)
	}

	thirty := generateTestCandles(30, func(i int) models.Candle {
		v := int64(100)
		if i >= 10 {
			v = 200 // last 20 candles
		}
		return models.Candle{Volume: v}
	})
	avg, ok = AvgVolume20(thirty)
	if !ok || !almostEqual(avg, 200) {
		t.Errorf("avg over last 20 = %v (ok=%v), want 200", avg, ok)
	}
}

func TestHighestHighLowestLow(t *testing.T) {
	candles := generateTestCandles(300, func(i int) models.Candle {
		return models.Candle{High: 100 + float64(i%50), Low: 90 - float64(i%30)}
	})

	high, ok := HighestHigh(candles, 252)
	if !ok || high != 149 {
		t.Errorf("HighestHigh(252) = %v (ok=%v), want 149", high, ok)
	}
	low, ok := LowestLow(candles, 252)
	if !ok || low != 61 {
		t.Errorf("LowestLow(252) = %v (ok=%v), want 61", low, ok)
	}

	if _, ok := HighestHigh(nil, 20); ok {
		t.Error("HighestHigh defined for empty series")
	}
}

func TestComputeDerivedShortHistory(t *testing.T) {
	candles := generateTestCandles(15, func(i int) models.Candle {
		return models.Candle{Close: 100, High: 101, Low: 99, Volume: 1000}
	})

	d := ComputeDerived(candles)

	if len(d.EMA) != 0 {
		t.Errorf("EMA map = %v, want empty for 15 candles", d.EMA)
	}
	if !d.HasAvgVolume || !almostEqual(d.AvgVolume20, 1000) {
		t.Errorf("AvgVolume20 = %v (has=%v), want 1000", d.AvgVolume20, d.HasAvgVolume)
	}
	if d.High52Week != 101 || d.Low52Week != 99 || d.High20Day != 101 {
		t.Errorf("rolling extremes = %v/%v/%v, want 101/99/101", d.High52Week, d.Low52Week, d.High20Day)
	}
}

func TestComputeDerivedEMAPresence(t *testing.T) {
	candles := generateTestCandles(120, func(i int) models.Candle {
		return models.Candle{Close: 50, High: 50, Low: 50, Volume: 10}
	})

	d := ComputeDerived(candles)

	for _, period := range []int{20, 50, 100} {
		if v, ok := d.EMA[period]; !ok || !almostEqual(v, 50) {
			t.Errorf("EMA[%d] = %v (ok=%v), want 50", period, v, ok)
		}
	}
	if _, ok := d.EMA[200]; ok {
		t.Error("EMA[200] defined for 120 candles, want absent")
	}
}
