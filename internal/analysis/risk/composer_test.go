package risk

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/analysis/passive"
	"trading-journal/internal/analysis/rules"
	"trading-journal/internal/models"
)

var now = time.Date(2024, 3, 4, 10, 5, 0, 0, time.UTC)

func newTestComposer() *Composer {
	n := 0
	return NewComposer(
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("alert-%d", n)
		}),
	)
}

func result(typ models.AlertType, sev models.Severity, score int) rules.Result {
	return rules.Result{
		Type:           typ,
		Score:          score,
		Severity:       sev,
		Triggered:      true,
		Reasons:        []string{string(typ) + " reason"},
		Recommendation: "slow down",
	}
}

var trade = models.Trade{ID: "t1", UserID: "u1", Symbol: "BTC", Side: models.SideLong, EntryPrice: 100, Quantity: 1, EntryTime: now}

func TestCompose_NoAlerts(t *testing.T) {
	quiet := []rules.Result{{Type: models.AlertFOMO, Score: 40, Severity: models.SeverityInfo}}
	a := newTestComposer().Compose(trade, quiet, &passive.Report{RiskScore: 80})

	assert.NotNil(t, a.Alerts)
	assert.Empty(t, a.Alerts)
	assert.Zero(t, a.RiskScore)
	assert.False(t, a.HasCritical)
	assert.False(t, a.ShouldBlockTrade)
}

func TestCompose_OrdersBySeverityThenScore(t *testing.T) {
	a := newTestComposer().Compose(trade, []rules.Result{
		result(models.AlertFOMO, models.SeverityHigh, 70),
		result(models.AlertRevenge, models.SeverityCritical, 100),
		result(models.AlertOverconfidence, models.SeverityMedium, 60),
		result(models.AlertOvertrading, models.SeverityHigh, 80),
	}, nil)

	require.Len(t, a.Alerts, 4)
	var order []models.AlertType
	for _, al := range a.Alerts {
		order = append(order, al.Type)
	}
	assert.Equal(t, []models.AlertType{
		models.AlertRevenge, models.AlertOvertrading, models.AlertFOMO, models.AlertOverconfidence,
	}, order)

	// (2*100 + 1.5*80 + 1.5*70 + 60) / 6 + 3*5
	assert.Equal(t, 96, a.RiskScore)
	assert.True(t, a.HasCritical)
	assert.True(t, a.HasHigh)
	assert.True(t, a.ShouldBlockTrade)
}

func TestCompose_AlertFields(t *testing.T) {
	res := result(models.AlertRevenge, models.SeverityHigh, 70)
	a := newTestComposer().Compose(trade, []rules.Result{res}, nil)

	require.Len(t, a.Alerts, 1)
	al := a.Alerts[0]
	assert.Equal(t, "alert-1", al.ID)
	assert.Equal(t, "u1", al.UserID)
	assert.Equal(t, "t1", al.TradeID)
	assert.Equal(t, now, al.CreatedAt)
	assert.Equal(t, "slow down", al.Recommendation)
	assert.False(t, al.Acknowledged)

	al.Reasons[0] = "changed"
	assert.Equal(t, "REVENGE_TRADING reason", res.Reasons[0])
}

func TestCompose_CriticalFloor(t *testing.T) {
	a := newTestComposer().Compose(trade, []rules.Result{
		result(models.AlertTilt, models.SeverityCritical, 60),
	}, nil)
	assert.Equal(t, CriticalFloor, a.RiskScore)
	assert.True(t, a.ShouldBlockTrade)
}

func TestCompose_BlockNeedsTwoHighs(t *testing.T) {
	c := newTestComposer()

	one := c.Compose(trade, []rules.Result{result(models.AlertFOMO, models.SeverityHigh, 70)}, nil)
	assert.True(t, one.HasHigh)
	assert.False(t, one.ShouldBlockTrade)
	assert.Equal(t, 70, one.RiskScore)

	two := c.Compose(trade, []rules.Result{
		result(models.AlertFOMO, models.SeverityHigh, 70),
		result(models.AlertRevenge, models.SeverityHigh, 70),
	}, nil)
	assert.True(t, two.ShouldBlockTrade)
	assert.Equal(t, 75, two.RiskScore)
}

func TestCompose_PassiveFlagsReinforceAlerts(t *testing.T) {
	report := &passive.Report{
		Interval:  passive.IntervalAnalysis{Status: passive.StatusOK, RushingAfterLoss: true, Recommendation: "rushing"},
		Hold:      passive.HoldAnalysis{Status: passive.StatusOK, LossAversion: true, Recommendation: "holding losers"},
		Sizing:    passive.SizingAnalysis{Status: passive.StatusNotApplicable, RevengePattern: true, Recommendation: "ignored"},
		RiskScore: 45,
	}
	a := newTestComposer().Compose(trade, []rules.Result{
		result(models.AlertRevenge, models.SeverityHigh, 70),
		result(models.AlertTilt, models.SeverityCritical, 60),
		result(models.AlertFOMO, models.SeverityMedium, 50),
	}, report)

	require.Len(t, a.Alerts, 3)
	byType := map[models.AlertType]models.Alert{}
	for _, al := range a.Alerts {
		byType[al.Type] = al
	}

	assert.Equal(t, 75, byType[models.AlertRevenge].Score)
	assert.Equal(t, []string{"REVENGE_TRADING reason", "rushing"}, byType[models.AlertRevenge].Reasons)
	assert.Equal(t, 70, byType[models.AlertTilt].Score)
	assert.Equal(t, []string{"TILT reason", "rushing", "holding losers"}, byType[models.AlertTilt].Reasons)
	assert.Equal(t, 50, byType[models.AlertFOMO].Score)
	assert.Len(t, byType[models.AlertFOMO].Reasons, 1)

	assert.Equal(t, models.AlertTilt, a.Alerts[0].Type)
	// (2*70 + 1.5*75 + 50) / 4.5 + 2*5 + 45/10
	assert.Equal(t, 82, a.RiskScore)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		alerts  []models.Alert
		passive int
		want    int
	}{
		{"none", nil, 100, 0},
		{"single medium", []models.Alert{{Severity: models.SeverityMedium, Score: 50}}, 0, 50},
		{"passive adds a tenth", []models.Alert{{Severity: models.SeverityMedium, Score: 50}}, 40, 54},
		{"capped", []models.Alert{
			{Severity: models.SeverityCritical, Score: 100},
			{Severity: models.SeverityCritical, Score: 100},
		}, 100, 100},
		{"critical floor", []models.Alert{{Severity: models.SeverityCritical, Score: 10}}, 0, 80},
		{"weighted not plain mean", []models.Alert{
			{Severity: models.SeverityHigh, Score: 90},
			{Severity: models.SeverityMedium, Score: 50},
		}, 0, 79},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.alerts, tt.passive))
		})
	}
}
