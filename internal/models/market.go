package models

import "time"

// Candle represents OHLCV data for a time period.
type Candle struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// MarketContext is the market information a trade is evaluated against.
// Nil fields mean the data was unavailable.
type MarketContext struct {
	PriceChangePct *float64
	LocalHigh      *float64
}
