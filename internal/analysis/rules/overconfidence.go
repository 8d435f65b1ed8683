package rules

import (
	"fmt"

	"trading-journal/internal/models"
)

// OverconfidenceDetector flags sizing up and rushing back in during a
// winning streak.
type OverconfidenceDetector struct {
	p Params
}

// NewOverconfidenceDetector creates an overconfidence detector.
func NewOverconfidenceDetector(p Params) *OverconfidenceDetector {
	return &OverconfidenceDetector{p: p}
}

// Type implements Detector.
func (d *OverconfidenceDetector) Type() models.AlertType { return models.AlertOverconfidence }

// Detect implements Detector.
func (d *OverconfidenceDetector) Detect(ctx Context) Signal {
	var sig Signal

	if streak := winStreak(ctx.Recent); streak >= d.p.WinStreakLength {
		sig.add(35, fmt.Sprintf("%d winning trades in a row", streak))
	}

	if prev, ok := lastTrade(ctx.Recent); ok && prev.IsWin() && prev.ExitTime != nil {
		since := ctx.Now().Sub(*prev.ExitTime)
		if since >= 0 && since <= d.p.OverconfidentWindow {
			sig.add(35, fmt.Sprintf("Entered %.0f minutes after closing a win", since.Minutes()))
		}
	}

	if avg, ok := averageQuantity(ctx); ok && ctx.Trade.Quantity > avg*d.p.SizeIncreaseRatio {
		sig.add(30, fmt.Sprintf("Position size is %.0f%% above your average", (ctx.Trade.Quantity/avg-1)*100))
	}
	return sig
}

// winStreak counts consecutive wins among the latest closed trades.
func winStreak(recent []models.Trade) int {
	closed := closedOnly(recent)
	streak := 0
	for i := len(closed) - 1; i >= 0 && closed[i].IsWin(); i-- {
		streak++
	}
	return streak
}

// Grade implements Detector.
func (d *OverconfidenceDetector) Grade(score int) (models.Severity, bool) {
	switch {
	case score >= 80:
		return models.SeverityHigh, true
	case score >= 60:
		return models.SeverityMedium, true
	}
	return models.SeverityInfo, false
}

// Recommendation implements Detector.
func (d *OverconfidenceDetector) Recommendation(lang models.Language) string {
	if lang == models.LangVietnamese {
		return "Chuỗi thắng không thay đổi xác suất. Giữ size theo kế hoạch."
	}
	return "A winning streak does not change the odds. Keep size per plan."
}
