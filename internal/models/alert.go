package models

import "time"

// AlertType identifies the behavioral pattern an alert reports.
type AlertType string

const (
	AlertFOMO           AlertType = "FOMO"
	AlertRevenge        AlertType = "REVENGE_TRADING"
	AlertOverconfidence AlertType = "OVERCONFIDENCE"
	AlertTilt           AlertType = "TILT"
	AlertOvertrading    AlertType = "OVERTRADING"
)

// Severity represents alert severity.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank orders severities from INFO (0) to CRITICAL (3).
func (s Severity) Rank() int {
	switch s {
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// Alert represents a behavioral alert raised for a trade.
// Acknowledged is only changed by the surrounding application.
type Alert struct {
	ID             string
	UserID         string
	TradeID        string
	Type           AlertType
	Severity       Severity
	Score          int
	Reasons        []string
	Recommendation string
	Acknowledged   bool
	CreatedAt      time.Time
}

// AlertFilter filters stored alerts.
type AlertFilter struct {
	UserID         string
	TradeID        string
	Type           AlertType
	Unacknowledged bool
	Limit          int
}
