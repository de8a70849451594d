package scan

import (
	"kitescreener/models"
)

// Score folds the detector outputs into one relevance integer. The
// confluence strength count deliberately stays out: only the boolean
// detection pays.
func Score(r models.ScanResult) int {
	score := 0

	if r.Volume.Spike {
		score++
	}
	for _, hit := range r.EMAHits {
		if hit.Near {
			score++
		}
	}
	if r.High52W.Near {
		score += 2
	}
	if r.High52W.Above {
		score++
	}
	if r.High20D.Near {
		score++
	}
	if r.High20D.Above {
		score++
	}
	if r.Confluence.Detected {
		score += 3
	}

	return score
}
