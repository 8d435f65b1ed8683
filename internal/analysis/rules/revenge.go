package rules

import (
	"fmt"

	"trading-journal/internal/models"
)

// RevengeDetector flags trades that try to win back a fresh loss.
type RevengeDetector struct {
	p Params
}

// NewRevengeDetector creates a revenge trading detector.
func NewRevengeDetector(p Params) *RevengeDetector {
	return &RevengeDetector{p: p}
}

// Type implements Detector.
func (d *RevengeDetector) Type() models.AlertType { return models.AlertRevenge }

// Detect implements Detector.
func (d *RevengeDetector) Detect(ctx Context) Signal {
	var sig Signal

	if prev, ok := lastTrade(ctx.Recent); ok && prev.IsLoss() {
		if -*prev.PnLPct > d.p.RevengeLossPct {
			sig.add(35, fmt.Sprintf("Previous trade lost %.1f%%", -*prev.PnLPct))
		}
		if prev.ExitTime != nil {
			since := ctx.Now().Sub(*prev.ExitTime)
			if since >= 0 && since <= d.p.RevengeWindow {
				sig.add(35, fmt.Sprintf("Entered %.0f minutes after closing a loss", since.Minutes()))
			}
		}
	}

	if avg, ok := averageQuantity(ctx); ok && ctx.Trade.Quantity > avg*d.p.SizeIncreaseRatio {
		sig.add(30, fmt.Sprintf("Position size is %.0f%% above your average", (ctx.Trade.Quantity/avg-1)*100))
	}
	return sig
}

// Grade implements Detector.
func (d *RevengeDetector) Grade(score int) (models.Severity, bool) {
	switch {
	case score >= 80:
		return models.SeverityCritical, true
	case score >= 60:
		return models.SeverityHigh, true
	}
	return models.SeverityInfo, false
}

// Recommendation implements Detector.
func (d *RevengeDetector) Recommendation(lang models.Language) string {
	if lang == models.LangVietnamese {
		return "Dừng giao dịch ít nhất 30 phút. Giữ size cố định sau khi thua."
	}
	return "Stop trading for at least 30 minutes. Keep size fixed after a loss."
}
