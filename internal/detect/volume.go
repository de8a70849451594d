package detect

import (
	"kitescreener/config"
	"kitescreener/models"
)

// Volume flags a volume spike: today's cumulative volume at or above the
// configured multiple of the 20-day average. Multiplier stays 0 when the
// average is undefined.
func Volume(quote models.Quote, derived models.Derived, cfg config.Thresholds) models.VolumeSpike {
	if !derived.HasAvgVolume || derived.AvgVolume20 <= 0 {
		return models.VolumeSpike{}
	}
	ratio := float64(quote.Volume) / derived.AvgVolume20
	return models.VolumeSpike{
		Spike:      ratio >= cfg.VolumeSpikeMultiplier,
		Multiplier: ratio,
	}
}
