package detect

import (
	"math"
	"reflect"
	"testing"
	"time"

	"kitescreener/config"
	"kitescreener/internal/indicators"
	"kitescreener/models"
)

func datedCandles(closes, highs []float64, volume int64) []models.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i := range closes {
		candles[i] = models.Candle{
			Date:   base.AddDate(0, 0, i),
			Open:   closes[i],
			High:   highs[i],
			Low:    closes[i],
			Close:  closes[i],
			Volume: volume,
		}
	}
	return candles
}

// pullbackSeries builds a long flat base at 100, then a spike candle with
// the given high at the start of the lookback window, then the rest of the
// window flat at price. Division-friendly values keep the pullback percent
// exact in floating point.
func pullbackSeries(spikeHigh, price float64) []models.Candle {
	const total, lookback = 312, 60
	closes := make([]float64, total)
	highs := make([]float64, total)
	for i := 0; i < total-lookback; i++ {
		closes[i] = 100
		highs[i] = 100
	}
	for i := total - lookback; i < total; i++ {
		closes[i] = price
		highs[i] = price
	}
	highs[total-lookback] = spikeHigh
	return datedCandles(closes, highs, 1000)
}

// BreakoutPullbackScenario is the full synthetic setup: ~300 days rising
// steadily, a rally well above the prior 252-day high 15 days back, then a
// pullback onto the still-rising EMA-20.
func BreakoutPullbackScenario() ([]models.Candle, float64) {
	closes := make([]float64, 0, 300)
	highs := make([]float64, 0, 300)

	for i := 0; i < 285; i++ {
		c := 100 + 0.1*float64(i)
		closes = append(closes, c)
		highs = append(highs, c+0.2)
	}
	for _, c := range []float64{132, 135, 138, 140, 141} {
		closes = append(closes, c)
		highs = append(highs, c+0.5)
	}
	for _, c := range []float64{140, 139, 138, 137, 136, 135, 134, 133, 132, 131} {
		closes = append(closes, c)
		highs = append(highs, c+0.3)
	}

	candles := datedCandles(closes, highs, 1_000_000)

	// Park the live price exactly on the EMA-20
	price, _ := indicators.EMA(closes, 20)
	return candles, price
}

func TestConfluenceInsufficientHistory(t *testing.T) {
	candles, _ := BreakoutPullbackScenario()
	out := Confluence(candles[:200], 130, config.DefaultThresholds())
	if out.Detected || out.Strength != 0 {
		t.Errorf("detected on 200 candles: %+v", out)
	}
}

func TestConfluenceDetectsBreakoutPullback(t *testing.T) {
	candles, price := BreakoutPullbackScenario()
	out := Confluence(candles, price, config.DefaultThresholds())

	if !out.Detected {
		t.Fatalf("not detected: %+v", out)
	}
	if out.PullbackToEMA != 20 {
		t.Errorf("PullbackToEMA = %d, want 20", out.PullbackToEMA)
	}
	if !out.EMARising {
		t.Errorf("EMA slope %v not flagged rising", out.EMASlope)
	}
	if out.PullbackPercent < 2 || out.PullbackPercent > 20 {
		t.Errorf("pullback %v outside the configured window", out.PullbackPercent)
	}
	if out.RecentHigh != 141.5 {
		t.Errorf("RecentHigh = %v, want 141.5", out.RecentHigh)
	}
	if out.LevelType != models.Level52WeekHigh {
		t.Errorf("LevelType = %q, want %q", out.LevelType, models.Level52WeekHigh)
	}
	if out.Strength < 3 {
		t.Errorf("Strength = %d, want at least 3 (detected, on EMA, rising)", out.Strength)
	}
}

func TestConfluenceIdempotent(t *testing.T) {
	candles, price := BreakoutPullbackScenario()
	cfg := config.DefaultThresholds()

	first := Confluence(candles, price, cfg)
	second := Confluence(candles, price, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated invocation differs:\n%+v\n%+v", first, second)
	}
}

func TestConfluenceNoBreakout(t *testing.T) {
	// Recent high never clears the prior high's confirmation margin
	candles := pullbackSeries(100.2, 98)
	out := Confluence(candles, 98, config.DefaultThresholds())
	if out.Detected {
		t.Errorf("detected without a confirmed breakout: %+v", out)
	}
}

func TestConfluencePullbackBounds(t *testing.T) {
	// spike high 256, so pullback percent is (256-price)/256*100 and stays
	// exact in floating point for these prices: 192 -> 25.0,
	// 236.75 -> 7.51953125, 237 -> 7.421875
	cfg := config.DefaultThresholds()
	cfg.ConfluenceMinPullbackPercent = 7.51953125
	cfg.ConfluenceMaxPullbackPercent = 25.0

	tests := []struct {
		name     string
		price    float64
		detected bool
	}{
		{name: "exactly max pullback", price: 192, detected: true},
		{name: "just past max pullback", price: 191.8, detected: false},
		{name: "exactly min pullback", price: 236.75, detected: true},
		{name: "just under min pullback", price: 237, detected: false},
		{name: "inside the window", price: 224, detected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candles := pullbackSeries(256, tt.price)
			out := Confluence(candles, tt.price, cfg)
			if out.Detected != tt.detected {
				t.Errorf("price %v: detected = %v (pullback %v), want %v",
					tt.price, out.Detected, out.PullbackPercent, tt.detected)
			}
		})
	}
}

func TestConfluenceRequiresEMAProximity(t *testing.T) {
	// Price sits inside the pullback window but far from both EMAs: the
	// last closes stay near 250 while the price has pulled back to 225.
	candles := pullbackSeries(256, 250)
	out := Confluence(candles, 225, config.DefaultThresholds())
	if out.Detected {
		t.Errorf("detected with price %v%% away from EMA-20: %+v",
			math.Abs(225-250)/250*100, out)
	}
}
