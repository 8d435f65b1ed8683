package rules

import (
	"fmt"
	"time"

	"trading-journal/internal/models"
)

// TiltDetector flags degraded decision making within a session.
type TiltDetector struct {
	p Params
}

// NewTiltDetector creates a tilt detector.
func NewTiltDetector(p Params) *TiltDetector {
	return &TiltDetector{p: p}
}

// Type implements Detector.
func (d *TiltDetector) Type() models.AlertType { return models.AlertTilt }

// Detect implements Detector. The session is the trades entered within
// SessionWindow before the evaluated trade.
func (d *TiltDetector) Detect(ctx Context) Signal {
	var sig Signal
	now := ctx.Now()
	session := closedOnly(tradesSince(ctx.Recent, now.Add(-d.p.SessionWindow)))

	if dd := currentDrawdown(session); dd > d.p.TiltDrawdownPct {
		sig.add(40, fmt.Sprintf("Session drawdown is %.1f%%", dd))
	}

	lastHour := len(tradesSince(ctx.Recent, now.Add(-time.Hour))) + 1
	if rate, ok := d.hourlyRate(ctx); ok && float64(lastHour) > d.p.TiltFrequencyMultiple*rate {
		sig.add(30, fmt.Sprintf("%d trades in the last hour vs %.1f usual", lastHour, rate))
	}

	if len(session) >= d.p.TiltMinSessionTrades {
		if wr := winRate(session); wr < d.p.TiltSessionWinRate {
			sig.add(30, fmt.Sprintf("Session win rate is %.0f%% over %d trades", wr*100, len(session)))
		}
	}
	return sig
}

func (d *TiltDetector) hourlyRate(ctx Context) (float64, bool) {
	if ctx.Baseline != nil && ctx.Baseline.AvgTradesPerHour > 0 {
		return ctx.Baseline.AvgTradesPerHour, true
	}
	return historicalRate(ctx.Recent, ctx.Now(), time.Hour)
}

// currentDrawdown is how far the cumulative session PnL% sits below its
// peak, counting from zero.
func currentDrawdown(session []models.Trade) float64 {
	var cum, peak float64
	for _, t := range session {
		cum += t.PnLPercent()
		if cum > peak {
			peak = cum
		}
	}
	return peak - cum
}

// Grade implements Detector.
func (d *TiltDetector) Grade(score int) (models.Severity, bool) {
	if score >= 60 {
		return models.SeverityCritical, true
	}
	return models.SeverityInfo, false
}

// Recommendation implements Detector.
func (d *TiltDetector) Recommendation(lang models.Language) string {
	if lang == models.LangVietnamese {
		return "Bạn đang tilt. Dừng giao dịch hôm nay và xem lại nhật ký."
	}
	return "You are on tilt. Stop trading for the day and review your journal."
}
