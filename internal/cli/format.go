package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"trading-journal/internal/models"
)

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPrice formats a price with appropriate decimal places.
func FormatPrice(price float64) string {
	if price >= 10 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.4f", price)
}

// FormatQuantity formats a quantity without trailing zeros.
func FormatQuantity(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}

// FormatMinutes formats a minute count as a duration.
func FormatMinutes(minutes float64) string {
	return FormatDuration(time.Duration(minutes * float64(time.Minute)))
}

// FormatConfidence formats a [0,1] confidence as a percentage.
func FormatConfidence(conf float64) string {
	return fmt.Sprintf("%.0f%%", conf*100)
}

// FormatSentiment formats a sentiment score with its label.
func FormatSentiment(score float64, label models.SentimentLabel) string {
	return fmt.Sprintf("%+.2f (%s)", score, label)
}

// FormatEmotions renders emotions as "TYPE 60%" pairs.
func FormatEmotions(emotions []models.Emotion) string {
	if len(emotions) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(emotions))
	for _, e := range emotions {
		parts = append(parts, fmt.Sprintf("%s %s", e.Type, FormatConfidence(e.Confidence)))
	}
	return strings.Join(parts, ", ")
}

// timeFormatter renders timestamps in the configured zone and layout.
type timeFormatter struct {
	loc    *time.Location
	layout string
}

func newTimeFormatter(loc *time.Location, layout string) timeFormatter {
	if loc == nil {
		loc = time.UTC
	}
	if layout == "" {
		layout = "2006-01-02 15:04"
	}
	return timeFormatter{loc: loc, layout: layout}
}

func (f timeFormatter) Format(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(f.loc).Format(f.layout)
}

func (f timeFormatter) FormatPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return f.Format(*t)
}

// parseTime accepts RFC 3339 timestamps, or "2006-01-02 15:04[:05]" in loc.
// An empty value means now.
func parseTime(value string, loc *time.Location, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339 or YYYY-MM-DD HH:MM", value)
}
