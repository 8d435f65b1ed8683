package models

import (
	"sort"
	"strings"
	"time"

	apperrors "trading-journal/internal/errors"
)

// TradeSide represents the direction of a position.
type TradeSide string

const (
	SideLong  TradeSide = "long"
	SideShort TradeSide = "short"
)

// Valid reports whether the side is a known value.
func (s TradeSide) Valid() bool {
	return s == SideLong || s == SideShort
}

// Trade represents a journaled trade. ExitPrice, PnL and PnLPct are either
// all set or all nil; a trade is open until Close sets them together.
type Trade struct {
	ID         string
	UserID     string
	Symbol     string
	Side       TradeSide
	EntryPrice float64
	ExitPrice  *float64
	Quantity   float64
	EntryTime  time.Time
	ExitTime   *time.Time
	PnL        *float64
	PnLPct     *float64
	Notes      string
}

// Validate checks the trade's fields and the exit/PnL pairing.
func (t Trade) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return apperrors.NewValidationError("symbol", t.Symbol, "symbol is required")
	}
	if !t.Side.Valid() {
		return apperrors.NewValidationError("side", t.Side, "side must be long or short")
	}
	if t.EntryPrice <= 0 {
		return apperrors.NewValidationError("entry_price", t.EntryPrice, "entry price must be positive")
	}
	if t.Quantity <= 0 {
		return apperrors.NewValidationError("quantity", t.Quantity, "quantity must be positive")
	}
	if t.EntryTime.IsZero() {
		return apperrors.NewValidationError("entry_time", t.EntryTime, "entry time is required")
	}
	exitSet := t.ExitPrice != nil
	if exitSet != (t.PnL != nil) || exitSet != (t.PnLPct != nil) {
		return apperrors.NewValidationError("exit_price", t.ExitPrice, "exit price and pnl must be set together")
	}
	if t.ExitTime != nil && t.ExitTime.Before(t.EntryTime) {
		return apperrors.NewValidationError("exit_time", *t.ExitTime, "exit time precedes entry time")
	}
	return nil
}

// IsClosed reports whether the trade carries its exit and PnL fields.
func (t Trade) IsClosed() bool {
	return t.ExitPrice != nil && t.PnL != nil && t.PnLPct != nil
}

// IsWin reports whether the trade closed with a positive PnL.
func (t Trade) IsWin() bool {
	return t.IsClosed() && *t.PnLPct > 0
}

// IsLoss reports whether the trade closed with a negative PnL.
func (t Trade) IsLoss() bool {
	return t.IsClosed() && *t.PnLPct < 0
}

// PnLPercent returns the realized PnL percentage, or 0 for open trades.
func (t Trade) PnLPercent() float64 {
	if t.PnLPct == nil {
		return 0
	}
	return *t.PnLPct
}

// HoldDuration returns the time between entry and exit. The second return
// value is false when the trade has no exit time.
func (t Trade) HoldDuration() (time.Duration, bool) {
	if t.ExitTime == nil {
		return 0, false
	}
	return t.ExitTime.Sub(t.EntryTime), true
}

// Close returns a copy of the trade with exit price, exit time and PnL set.
func (t Trade) Close(exitPrice float64, exitTime time.Time) Trade {
	diff := exitPrice - t.EntryPrice
	if t.Side == SideShort {
		diff = -diff
	}
	pnl := diff * t.Quantity
	var pct float64
	if t.EntryPrice != 0 {
		pct = diff / t.EntryPrice * 100
	}

	closed := t
	closed.ExitPrice = &exitPrice
	closed.ExitTime = &exitTime
	closed.PnL = &pnl
	closed.PnLPct = &pct
	return closed
}

// TradeHistory is a point-in-time view of a trader's trades ordered by
// entry time, oldest first. It is never mutated after construction.
type TradeHistory struct {
	trades []Trade
}

// NewTradeHistory copies trades into a history sorted by entry time.
func NewTradeHistory(trades []Trade) TradeHistory {
	cp := make([]Trade, len(trades))
	copy(cp, trades)
	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].EntryTime.Before(cp[j].EntryTime)
	})
	return TradeHistory{trades: cp}
}

// Len returns the number of trades in the history.
func (h TradeHistory) Len() int {
	return len(h.trades)
}

// Trades returns a copy of the trades in chronological order.
func (h TradeHistory) Trades() []Trade {
	cp := make([]Trade, len(h.trades))
	copy(cp, h.trades)
	return cp
}

// Closed returns the closed trades in chronological order.
func (h TradeHistory) Closed() []Trade {
	var closed []Trade
	for _, t := range h.trades {
		if t.IsClosed() {
			closed = append(closed, t)
		}
	}
	return closed
}

// Before returns the trades that entered strictly before the given time.
func (h TradeHistory) Before(ts time.Time) []Trade {
	var out []Trade
	for _, t := range h.trades {
		if t.EntryTime.Before(ts) {
			out = append(out, t)
		}
	}
	return out
}

// Since returns the trades that entered at or after the given time.
func (h TradeHistory) Since(ts time.Time) []Trade {
	var out []Trade
	for _, t := range h.trades {
		if !t.EntryTime.Before(ts) {
			out = append(out, t)
		}
	}
	return out
}

// Without returns a history that excludes the trade with the given ID.
// An empty ID identifies no trade, so the history is returned unchanged.
func (h TradeHistory) Without(id string) TradeHistory {
	if id == "" {
		return h
	}
	out := make([]Trade, 0, len(h.trades))
	for _, t := range h.trades {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return TradeHistory{trades: out}
}

// TradeFilter filters journaled trades.
type TradeFilter struct {
	UserID    string
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	OpenOnly  bool
	Limit     int
}

// Baseline holds a trader's typical activity levels.
type Baseline struct {
	AvgQuantity      float64
	AvgTradesPerHour float64
	AvgTradesPerDay  float64
	SampleSize       int
}

// IsZero reports whether the baseline carries no data.
func (b Baseline) IsZero() bool {
	return b.SampleSize == 0 && b.AvgQuantity == 0 && b.AvgTradesPerHour == 0 && b.AvgTradesPerDay == 0
}
