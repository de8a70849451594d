package detect

import (
	"math"

	"kitescreener/config"
	"kitescreener/internal/indicators"
	"kitescreener/models"
)

// Confluence pullback tuning. The setup is: price broke above a prior
// resistance level, retraced partway, and is resting on a still-rising EMA
// near that former resistance.
const (
	confluenceMinHistory = 252
	// Recent high must clear the breakout level by this factor to count as
	// a confirmed breakout rather than a touch.
	breakoutConfirmFactor = 1.005
	slopeWindow           = 10
	risingSlopePercent    = 0.3
	doubleSupportPercent  = 3.0
	levelClassifyPercent  = 2.0
)

// Confluence runs the multi-step pullback check over one instrument's full
// candle history and current price. It never errors: anything short of a
// full match returns a zero-valued, not-detected result. Output is a pure
// function of its inputs.
func Confluence(candles []models.Candle, price float64, cfg config.Thresholds) models.ConfluencePullback {
	var out models.ConfluencePullback

	if len(candles) < confluenceMinHistory || price <= 0 {
		return out
	}

	lookback := cfg.ConfluenceLookbackDays
	if lookback <= 0 {
		lookback = 60
	}
	if lookback >= len(candles) {
		return out
	}

	split := len(candles) - lookback
	prior := candles[:split]
	recent := candles[split:]

	priorHigh := highestHigh(prior)

	// 52-week window ending just before the lookback period
	start := split - confluenceMinHistory
	if start < 0 {
		start = 0
	}
	prior52WeekHigh := highestHigh(candles[start:split])

	breakoutLevel := math.Max(priorHigh, prior52WeekHigh)
	if breakoutLevel <= 0 {
		return out
	}
	out.BreakoutLevel = breakoutLevel

	recentHigh := highestHigh(recent)
	out.RecentHigh = recentHigh
	if recentHigh <= breakoutLevel*breakoutConfirmFactor {
		return out
	}

	pullback := (recentHigh - price) / recentHigh * 100
	out.PullbackPercent = pullback
	if pullback < cfg.ConfluenceMinPullbackPercent || pullback > cfg.ConfluenceMaxPullbackPercent {
		return out
	}

	// Pullback must land on EMA-20 or EMA-50, checked in that order.
	closes := indicators.Closes(candles)
	var winningSeries []float64
	for _, period := range []int{20, 50} {
		series := indicators.EMASeries(closes, period)
		if series == nil {
			continue
		}
		ema := series[len(series)-1]
		if ema <= 0 {
			continue
		}
		if math.Abs((price-ema)/ema*100) <= cfg.EMAProximityPercent {
			out.PullbackToEMA = period
			winningSeries = series
			break
		}
	}
	if out.PullbackToEMA == 0 {
		return out
	}

	out.Detected = true

	tail := winningSeries
	if len(tail) > slopeWindow {
		tail = tail[len(tail)-slopeWindow:]
	}
	out.EMASlope = indicators.Slope(tail)
	out.EMARising = out.EMASlope > risingSlopePercent

	// Old resistance acting as support right where the pullback EMA sits
	levelDistance := (price - breakoutLevel) / breakoutLevel * 100
	out.DoubleSupport = math.Abs(levelDistance) <= doubleSupportPercent

	if prior52WeekHigh > 0 && math.Abs(breakoutLevel-prior52WeekHigh)/prior52WeekHigh*100 <= levelClassifyPercent {
		out.LevelType = models.Level52WeekHigh
	} else {
		out.LevelType = models.LevelSwingHigh
	}

	out.Strength = 2 // detected + pullback on an EMA
	if out.EMARising {
		out.Strength++
	}
	if out.DoubleSupport {
		out.Strength++
	}

	return out
}

func highestHigh(candles []models.Candle) float64 {
	var max float64
	for _, c := range candles {
		if c.High > max {
			max = c.High
		}
	}
	return max
}
