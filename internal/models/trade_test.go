package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeClose(t *testing.T) {
	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	long := Trade{ID: "a", Side: SideLong, EntryPrice: 100, Quantity: 2, EntryTime: entry}
	require.False(t, long.IsClosed())

	closed := long.Close(97, entry.Add(30*time.Minute))
	require.True(t, closed.IsClosed())
	assert.InDelta(t, -6, *closed.PnL, 1e-9)
	assert.InDelta(t, -3, *closed.PnLPct, 1e-9)
	assert.True(t, closed.IsLoss())
	assert.False(t, long.IsClosed(), "original trade must not be mutated")

	hold, ok := closed.HoldDuration()
	require.True(t, ok)
	assert.Equal(t, 30*time.Minute, hold)

	short := Trade{Side: SideShort, EntryPrice: 100, Quantity: 1, EntryTime: entry}.Close(90, entry)
	assert.InDelta(t, 10, *short.PnLPct, 1e-9)
	assert.True(t, short.IsWin())
}

func TestTradeHistoryOrdering(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	h := NewTradeHistory([]Trade{
		{ID: "c", EntryTime: base.Add(2 * time.Hour)},
		{ID: "a", EntryTime: base},
		{ID: "b", EntryTime: base.Add(time.Hour)},
	})

	ids := func(ts []Trade) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(h.Trades()))
	assert.Equal(t, []string{"a"}, ids(h.Before(base.Add(time.Hour))))
	assert.Equal(t, []string{"b", "c"}, ids(h.Since(base.Add(time.Hour))))
	assert.Equal(t, []string{"a", "c"}, ids(h.Without("b").Trades()))

	unsaved := NewTradeHistory([]Trade{{EntryTime: base}, {EntryTime: base.Add(time.Hour)}})
	assert.Len(t, unsaved.Without("").Trades(), 2)
	assert.Empty(t, h.Closed())
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityInfo.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
}

func TestEmotionTypes(t *testing.T) {
	for _, e := range EmotionTypes {
		assert.True(t, e.Valid())
	}
	assert.False(t, EmotionType("BOREDOM").Valid())
	assert.True(t, EmotionFear.Dangerous())
	assert.False(t, EmotionRational.Dangerous())
	assert.False(t, EmotionDiscipline.Dangerous())
}

func TestTradeValidate(t *testing.T) {
	entry := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	valid := Trade{Symbol: "BTCUSDT", Side: SideLong, EntryPrice: 100, Quantity: 1, EntryTime: entry}
	require.NoError(t, valid.Validate())
	require.NoError(t, valid.Close(110, entry.Add(time.Hour)).Validate())

	noSymbol := valid
	noSymbol.Symbol = " "
	assert.Error(t, noSymbol.Validate())

	badSide := valid
	badSide.Side = "sideways"
	assert.Error(t, badSide.Validate())

	half := valid
	price := 101.0
	half.ExitPrice = &price
	assert.Error(t, half.Validate(), "exit price without pnl must be rejected")

	backwards := valid.Close(110, entry.Add(-time.Hour))
	assert.Error(t, backwards.Validate())
}
