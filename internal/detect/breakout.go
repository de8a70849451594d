package detect

import (
	"kitescreener/config"
	"kitescreener/models"
)

// The 20-day band is fixed, not user-tunable.
const breakout20DayPercent = 2.0

// breakout computes price vs a rolling high. Distance is the percent gap
// below the level, zero or negative once price reaches it. Near covers the
// whole band at or above level*(1-percent/100), so an actual breakout is
// always also near.
func breakout(price, level, nearPercent float64) models.Breakout {
	if price <= 0 || level <= 0 {
		return models.Breakout{}
	}
	distance := (level - price) / level * 100
	return models.Breakout{
		Level:    level,
		Distance: distance,
		Near:     distance <= nearPercent,
		Above:    price > level,
	}
}

// Breakout52Week checks price against the 52-week high using the configured
// proximity band.
func Breakout52Week(price float64, derived models.Derived, cfg config.Thresholds) models.Breakout {
	return breakout(price, derived.High52Week, cfg.Breakout52WeekPercent)
}

// Breakout20Day checks price against the 20-day high with the fixed band.
func Breakout20Day(price float64, derived models.Derived) models.Breakout {
	return breakout(price, derived.High20Day, breakout20DayPercent)
}
