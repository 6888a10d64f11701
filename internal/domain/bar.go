package domain

import "time"

// Bar is one OHLCV price sample. Bars for a symbol are ordered ascending
// by timestamp with no duplicates, and are immutable once produced.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
