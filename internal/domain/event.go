package domain

import (
	"fmt"
	"time"
)

// EventType es el conjunto cerrado de eventos que el recorder acepta.
// Nada de payloads libres: cada variante tiene sus campos obligatorios y
// la agregación hace switch exhaustivo sobre el tipo.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventBuy          EventType = "buy"
	EventSell         EventType = "sell"
)

// Valid devuelve true si el tipo es una de las variantes conocidas.
func (t EventType) Valid() bool {
	switch t {
	case EventSessionStart, EventBuy, EventSell:
		return true
	}
	return false
}

// TradeEvent es un registro del log de trading persistido. El log es
// append-only: los eventos no se editan ni se borran una vez escritos.
type TradeEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Type      EventType `json:"type"`
	Symbol    string    `json:"symbol,omitempty"`
	Price     float64   `json:"price,omitempty"`
	Quantity  float64   `json:"quantity,omitempty"`
	// Profit es el P&L realizado en moneda quote. Solo en eventos sell.
	Profit float64 `json:"profit,omitempty"`
	// InitialCapital solo viene en session_start (y opcionalmente en el
	// primer evento de una sesión antigua); se usa para inferir el
	// capital de partida del resumen.
	InitialCapital float64   `json:"initial_capital,omitempty"`
	Mode           string    `json:"mode,omitempty"` // session_start: paper | live
	Timestamp      time.Time `json:"timestamp"`
}

// Validate comprueba los campos obligatorios de cada variante.
func (e TradeEvent) Validate() error {
	switch e.Type {
	case EventSessionStart:
		if e.InitialCapital < 0 {
			return fmt.Errorf("session_start: negative initial_capital %f", e.InitialCapital)
		}
		return nil
	case EventBuy:
		if e.Symbol == "" {
			return fmt.Errorf("buy event without symbol")
		}
		if e.Price <= 0 {
			return fmt.Errorf("buy event for %s with non-positive price %f", e.Symbol, e.Price)
		}
		return nil
	case EventSell:
		if e.Symbol == "" {
			return fmt.Errorf("sell event without symbol")
		}
		if e.Price <= 0 {
			return fmt.Errorf("sell event for %s with non-positive price %f", e.Symbol, e.Price)
		}
		return nil
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
}

// DailyReturn es el P&L realizado agrupado por fecha de calendario (UTC).
type DailyReturn struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Return float64 `json:"return"`
}

// PerformanceSummary es el resumen derivado del log completo. Se recalcula
// entero en cada append — el log es la única fuente de verdad y el resumen
// siempre tiene que poder derivarse solo de él.
type PerformanceSummary struct {
	StartCapital   float64       `json:"start_capital"`
	CurrentCapital float64       `json:"current_capital"`
	TotalProfit    float64       `json:"total_profit"`
	WinRate        float64       `json:"win_rate"`
	TotalTrades    int           `json:"total_trades"`
	WinningTrades  int           `json:"winning_trades"`
	LosingTrades   int           `json:"losing_trades"`
	DailyReturns   []DailyReturn `json:"daily_returns"`
}
