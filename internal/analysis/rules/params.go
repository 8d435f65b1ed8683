package rules

import "time"

// Params holds the detector thresholds.
type Params struct {
	FOMOPriceChangePct float64
	FOMONearHighPct    float64

	RevengeLossPct    float64
	RevengeWindow     time.Duration
	SizeIncreaseRatio float64

	TiltDrawdownPct       float64
	TiltFrequencyMultiple float64
	TiltSessionWinRate    float64
	TiltMinSessionTrades  int
	SessionWindow         time.Duration

	WinStreakLength     int
	OverconfidentWindow time.Duration

	OvertradingMultiple     float64
	OvertradingWarnMultiple float64
	OvertradingWinRate      float64
	OvertradingMinClosed    int
	MaxTradesPerDay         int
}

// DefaultParams returns the default thresholds.
func DefaultParams() Params {
	return Params{
		FOMOPriceChangePct: 5,
		FOMONearHighPct:    2,

		RevengeLossPct:    2,
		RevengeWindow:     10 * time.Minute,
		SizeIncreaseRatio: 1.3,

		TiltDrawdownPct:       5,
		TiltFrequencyMultiple: 2,
		TiltSessionWinRate:    0.3,
		TiltMinSessionTrades:  5,
		SessionWindow:         8 * time.Hour,

		WinStreakLength:     3,
		OverconfidentWindow: 10 * time.Minute,

		OvertradingMultiple:     2,
		OvertradingWarnMultiple: 1.5,
		OvertradingWinRate:      0.4,
		OvertradingMinClosed:    3,
		MaxTradesPerDay:         10,
	}
}

// DefaultDetectors returns the built-in detectors in evaluation order.
func DefaultDetectors(p Params) []Detector {
	return []Detector{
		NewFOMODetector(p),
		NewRevengeDetector(p),
		NewTiltDetector(p),
		NewOverconfidenceDetector(p),
		NewOvertradingDetector(p),
	}
}
