package indicators

import (
	"kitescreener/models"
)

// EMAPeriods are the moving averages computed for every instrument.
var EMAPeriods = []int{20, 50, 100, 200}

// The volume average runs over up to 20 bars but is undefined under 10, so
// thin histories don't produce a noisy mean.
const (
	avgVolumeWindow  = 20
	avgVolumeMinBars = 10
)

// Closes extracts the closing-price series.
func Closes(candles []models.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// EMASeries computes the exponential moving average over the whole series,
// one value per close from bar period-1 onward. The seed is the simple
// average of the first period closes; nil when the series is too short.
func EMASeries(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}

	// Simple moving average for the initial value
	var sum float64
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	ema := sum / float64(period)

	// Multiplier for weighting the EMA
	multiplier := 2.0 / float64(period+1)

	series := make([]float64, 0, len(closes)-period+1)
	series = append(series, ema)
	for i := period; i < len(closes); i++ {
		ema = (closes[i]-ema)*multiplier + ema
		series = append(series, ema)
	}

	return series
}

// EMA returns the latest EMA value; ok is false when the series is shorter
// than the period.
func EMA(closes []float64, period int) (float64, bool) {
	series := EMASeries(closes, period)
	if series == nil {
		return 0, false
	}
	return series[len(series)-1], true
}

// AvgVolume20 is the mean volume over the last 20 (or fewer) candles,
// undefined under 10 candles.
func AvgVolume20(candles []models.Candle) (float64, bool) {
	if len(candles) < avgVolumeMinBars {
		return 0, false
	}
	window := candles
	if len(window) > avgVolumeWindow {
		window = window[len(window)-avgVolumeWindow:]
	}
	var sum float64
	for _, c := range window {
		sum += float64(c.Volume)
	}
	return sum / float64(len(window)), true
}

// HighestHigh is the max high over the last n (or fewer) candles.
func HighestHigh(candles []models.Candle, n int) (float64, bool) {
	if len(candles) == 0 || n <= 0 {
		return 0, false
	}
	window := candles
	if len(window) > n {
		window = window[len(window)-n:]
	}
	max := window[0].High
	for _, c := range window[1:] {
		if c.High > max {
			max = c.High
		}
	}
	return max, true
}

// LowestLow is the min low over the last n (or fewer) candles.
func LowestLow(candles []models.Candle, n int) (float64, bool) {
	if len(candles) == 0 || n <= 0 {
		return 0, false
	}
	window := candles
	if len(window) > n {
		window = window[len(window)-n:]
	}
	min := window[0].Low
	for _, c := range window[1:] {
		if c.Low < min {
			min = c.Low
		}
	}
	return min, true
}

// Slope is the percent change from the first to the last value of a series.
// It reads trend direction off an EMA tail; it is not a technical property
// of the EMA itself.
func Slope(series []float64) float64 {
	if len(series) < 2 || series[0] == 0 {
		return 0
	}
	return (series[len(series)-1] - series[0]) / series[0] * 100
}

// ComputeDerived computes every indicator the detectors read, from one
// candle history. Missing values stay absent rather than zero-filled.
func ComputeDerived(candles []models.Candle) models.Derived {
	d := models.Derived{EMA: make(map[int]float64)}

	closes := Closes(candles)
	for _, period := range EMAPeriods {
		if v, ok := EMA(closes, period); ok {
			d.EMA[period] = v
		}
	}

	d.AvgVolume20, d.HasAvgVolume = AvgVolume20(candles)

	if v, ok := HighestHigh(candles, 252); ok {
		d.High52Week = v
	}
	if v, ok := LowestLow(candles, 252); ok {
		d.Low52Week = v
	}
	if v, ok := HighestHigh(candles, 20); ok {
		d.High20Day = v
	}

	return d
}
