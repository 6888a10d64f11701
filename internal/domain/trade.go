package domain

import "time"

// Position es la intención abierta de salida: se crea con un BUY sin
// posición abierta y se convierte en Trade con el siguiente SELL.
// Como máximo hay una posición abierta por run.
type Position struct {
	EntryPrice float64
	EntryTime  time.Time
}

// Trade es un round trip completado. Inmutable una vez creado; se añade a
// la secuencia en orden cronológico de salida.
type Trade struct {
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64
	ProfitPct  float64 // (exit - entry) / entry × 100
}

// NewTrade cierra una posición al precio y momento de salida dados.
func NewTrade(pos Position, exitPrice float64, exitTime time.Time) Trade {
	return Trade{
		EntryTime:  pos.EntryTime,
		EntryPrice: pos.EntryPrice,
		ExitTime:   exitTime,
		ExitPrice:  exitPrice,
		ProfitPct:  (exitPrice - pos.EntryPrice) / pos.EntryPrice * 100,
	}
}

// BuildEquityCurve devuelve la curva de capital: empieza en initialCapital
// y añade un punto por trade, componiendo secuencialmente.
func BuildEquityCurve(initialCapital float64, trades []Trade) []float64 {
	equity := make([]float64, 0, len(trades)+1)
	equity = append(equity, initialCapital)

	capital := initialCapital
	for _, t := range trades {
		capital *= 1 + t.ProfitPct/100
		equity = append(equity, capital)
	}
	return equity
}
