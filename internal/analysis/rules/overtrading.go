package rules

import (
	"fmt"
	"time"

	"trading-journal/internal/models"
)

const day = 24 * time.Hour

// OvertradingDetector flags a rolling day with far more trades than usual.
type OvertradingDetector struct {
	p Params
}

// NewOvertradingDetector creates an overtrading detector.
func NewOvertradingDetector(p Params) *OvertradingDetector {
	return &OvertradingDetector{p: p}
}

// Type implements Detector.
func (d *OvertradingDetector) Type() models.AlertType { return models.AlertOvertrading }

// Detect implements Detector.
func (d *OvertradingDetector) Detect(ctx Context) Signal {
	var sig Signal
	window := tradesSince(ctx.Recent, ctx.Now().Add(-day))
	count := len(window) + 1

	if base, ok := d.dailyRate(ctx); ok {
		switch {
		case float64(count) > d.p.OvertradingMultiple*base:
			sig.add(50, fmt.Sprintf("%d trades in 24h vs %.1f usual", count, base))
		case float64(count) > d.p.OvertradingWarnMultiple*base:
			sig.add(30, fmt.Sprintf("%d trades in 24h vs %.1f usual", count, base))
		}
	}

	closed := closedOnly(window)
	if len(closed) >= d.p.OvertradingMinClosed {
		if wr := winRate(closed); wr < d.p.OvertradingWinRate {
			sig.add(30, fmt.Sprintf("Win rate over the last 24h is %.0f%%", wr*100))
		}
	}

	if d.p.MaxTradesPerDay > 0 && count >= d.p.MaxTradesPerDay {
		sig.add(20, fmt.Sprintf("Reached the daily limit of %d trades", d.p.MaxTradesPerDay))
	}
	return sig
}

func (d *OvertradingDetector) dailyRate(ctx Context) (float64, bool) {
	if ctx.Baseline != nil && ctx.Baseline.AvgTradesPerDay > 0 {
		return ctx.Baseline.AvgTradesPerDay, true
	}
	return historicalRate(ctx.Recent, ctx.Now(), day)
}

// Grade implements Detector.
func (d *OvertradingDetector) Grade(score int) (models.Severity, bool) {
	switch {
	case score >= 70:
		return models.SeverityHigh, true
	case score >= 50:
		return models.SeverityMedium, true
	}
	return models.SeverityInfo, false
}

// Recommendation implements Detector.
func (d *OvertradingDetector) Recommendation(lang models.Language) string {
	if lang == models.LangVietnamese {
		return "Giảm số lệnh trong ngày. Chỉ vào lệnh theo setup đã lên kế hoạch."
	}
	return "Cut the number of trades today. Only take planned setups."
}
