package detect

import (
	"math"

	"kitescreener/config"
	"kitescreener/internal/indicators"
	"kitescreener/models"
)

// EMAHits produces one reading per defined EMA: signed percent distance of
// price from the EMA (positive = price above) and whether it sits inside
// the proximity band. The band boundary is inclusive.
func EMAHits(price float64, derived models.Derived, cfg config.Thresholds) []models.EMAProximity {
	if price <= 0 {
		return nil
	}

	var hits []models.EMAProximity
	for _, period := range indicators.EMAPeriods {
		ema, ok := derived.EMA[period]
		if !ok || ema <= 0 {
			continue
		}
		distance := (price - ema) / ema * 100
		hits = append(hits, models.EMAProximity{
			Period:   period,
			Value:    ema,
			Distance: distance,
			Near:     math.Abs(distance) <= cfg.EMAProximityPercent,
		})
	}
	return hits
}
