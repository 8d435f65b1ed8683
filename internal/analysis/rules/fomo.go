package rules

import (
	"fmt"

	"trading-journal/internal/models"
)

// FOMODetector flags entries that chase a fast move.
type FOMODetector struct {
	p Params
}

// NewFOMODetector creates a FOMO detector.
func NewFOMODetector(p Params) *FOMODetector {
	return &FOMODetector{p: p}
}

// Type implements Detector.
func (d *FOMODetector) Type() models.AlertType { return models.AlertFOMO }

// Detect implements Detector. Missing market data leaves its terms out.
func (d *FOMODetector) Detect(ctx Context) Signal {
	var sig Signal
	t := ctx.Trade

	if pct := ctx.Market.PriceChangePct; pct != nil {
		move := *pct
		if t.Side == models.SideShort {
			move = -move
		}
		if move > d.p.FOMOPriceChangePct {
			sig.add(40, fmt.Sprintf("Price moved %.1f%% in your direction before entry", *pct))
		}
	}

	if ctx.Note != nil && ctx.Note.HasEmotion(models.EmotionFOMO) {
		sig.add(30, "Note contains FOMO language")
	}

	if high := ctx.Market.LocalHigh; high != nil && *high > 0 && t.Side != models.SideShort {
		dist := (*high - t.EntryPrice) / *high * 100
		if dist <= d.p.FOMONearHighPct {
			sig.add(30, fmt.Sprintf("Entry is within %.1f%% of the local high", dist))
		}
	}
	return sig
}

// Grade implements Detector.
func (d *FOMODetector) Grade(score int) (models.Severity, bool) {
	switch {
	case score >= 70:
		return models.SeverityHigh, true
	case score >= 50:
		return models.SeverityMedium, true
	}
	return models.SeverityInfo, false
}

// Recommendation implements Detector.
func (d *FOMODetector) Recommendation(lang models.Language) string {
	if lang == models.LangVietnamese {
		return "Đợi pullback hoặc xác nhận trước khi vào lệnh. Đừng đuổi giá."
	}
	return "Wait for a pullback or confirmation before entering. Do not chase price."
}
