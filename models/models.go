package models

import (
	"time"
)

// Candle represents one trading day's price bar
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Instrument is one tradable listing resolved from the exchange catalogs
type Instrument struct {
	Token    int64  `json:"instrument_token"`
	Symbol   string `json:"tradingsymbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}

// Quote is a point-in-time market snapshot for one instrument.
// PreviousClose comes from the quote payload's ohlc.close, which the API
// fills with the previous session's close rather than today's.
type Quote struct {
	LastPrice     float64 `json:"last_price"`
	Volume        int64   `json:"volume"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	PreviousClose float64 `json:"previous_close"`
}

// Derived holds the indicator values computed from a candle history.
// EMA keys are periods; a missing key means the history was too short.
type Derived struct {
	EMA          map[int]float64 `json:"ema"`
	AvgVolume20  float64         `json:"avg_volume_20"`
	HasAvgVolume bool            `json:"has_avg_volume"`
	High52Week   float64         `json:"high_52_week"`
	Low52Week    float64         `json:"low_52_week"`
	High20Day    float64         `json:"high_20_day"`
}

// VolumeSpike is the volume detector output. Multiplier is today's volume
// over the 20-day average, 0 when the average is undefined.
type VolumeSpike struct {
	Spike      bool    `json:"spike"`
	Multiplier float64 `json:"multiplier"`
}

// EMAProximity is one EMA reading: signed percent distance of price from the
// EMA (positive = price above) and whether it is inside the proximity band.
type EMAProximity struct {
	Period   int     `json:"period"`
	Value    float64 `json:"value"`
	Distance float64 `json:"distance_pct"`
	Near     bool    `json:"near"`
}

// Breakout describes price relative to a rolling high. Distance is the
// percent below the level, zero or negative once price is above it.
type Breakout struct {
	Level    float64 `json:"level"`
	Distance float64 `json:"distance_pct"`
	Near     bool    `json:"near"`
	Above    bool    `json:"above"`
}

// Confluence breakout-level classification
const (
	Level52WeekHigh = "52w-high"
	LevelSwingHigh  = "swing-high"
)

// ConfluencePullback is the multi-step pullback detector output.
type ConfluencePullback struct {
	Detected        bool    `json:"detected"`
	BreakoutLevel   float64 `json:"breakout_level"`
	LevelType       string  `json:"level_type"`
	RecentHigh      float64 `json:"recent_high"`
	PullbackPercent float64 `json:"pullback_pct"`
	PullbackToEMA   int     `json:"pullback_to_ema"` // 20 or 50, 0 when none
	EMASlope        float64 `json:"ema_slope_pct"`
	EMARising       bool    `json:"ema_rising"`
	DoubleSupport   bool    `json:"double_support"`
	Strength        int     `json:"strength"` // 0-4, display only
}

// ScanResult is one instrument's full scan outcome.
type ScanResult struct {
	Instrument Instrument         `json:"instrument"`
	Quote      Quote              `json:"quote"`
	Derived    Derived            `json:"derived"`
	Volume     VolumeSpike        `json:"volume"`
	EMAHits    []EMAProximity     `json:"ema_hits"`
	High52W    Breakout           `json:"high_52w"`
	High20D    Breakout           `json:"high_20d"`
	Confluence ConfluencePullback `json:"confluence"`
	Score      int                `json:"score"`
}

// ScanStage identifies the orchestrator's current stage.
type ScanStage string

const (
	StageIdle              ScanStage = "idle"
	StageResolvingUniverse ScanStage = "resolving_universe"
	StageFetchingQuotes    ScanStage = "fetching_quotes"
	StageFetchingHistory   ScanStage = "fetching_history"
	StageAnalyzing         ScanStage = "analyzing"
	StageDone              ScanStage = "done"
	StageError             ScanStage = "error"
)

// ProgressEvent is emitted by the orchestrator as a scan advances.
// Current/Total are meaningful only during the history stage.
type ProgressEvent struct {
	Stage   ScanStage `json:"stage"`
	Current int       `json:"current,omitempty"`
	Total   int       `json:"total,omitempty"`
	Message string    `json:"message,omitempty"`
}
