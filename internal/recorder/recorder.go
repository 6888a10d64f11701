package recorder

// recorder.go — registro incremental de eventos de trading y estadísticas
// derivadas. El log persistido es la única fuente de verdad: el resumen se
// recalcula entero en cada append, así nunca puede divergir del log. A
// volumen bajo (trading manual o periódico) el coste O(n) por append es
// irrelevante.

import (
	"context"
	"sort"
	"time"

	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/alejandrodnm/tradebot/internal/ports"
	"github.com/google/uuid"
)

// DefaultStartCapital se usa cuando ningún evento declara capital inicial.
const DefaultStartCapital = 1000

// Recorder persiste eventos de trading y deriva estadísticas acumuladas.
type Recorder struct {
	log       ports.EventLog
	sessionID string
	now       func() time.Time
}

// New crea un Recorder sobre el event log dado. Genera un session ID nuevo
// que se estampa en todos los eventos que no traigan uno.
func New(log ports.EventLog) *Recorder {
	return &Recorder{
		log:       log,
		sessionID: uuid.NewString(),
		now:       time.Now,
	}
}

// SessionID devuelve el identificador de la sesión actual.
func (r *Recorder) SessionID() string { return r.sessionID }

// Record valida el evento, le estampa ID, sesión y timestamp si faltan, y
// lo añade al log. El resumen se recalcula del log completo en la misma
// transacción que el insert.
func (r *Recorder) Record(ctx context.Context, ev domain.TradeEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.SessionID == "" {
		ev.SessionID = r.sessionID
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = r.now().UTC()
	}

	return r.log.Append(ctx, ev, ComputeSummary)
}

// Summary devuelve el resumen persistido actual.
func (r *Recorder) Summary(ctx context.Context) (domain.PerformanceSummary, error) {
	return r.log.Summary(ctx)
}

// ComputeSummary deriva el resumen del log completo. Solo los eventos sell
// cuentan como trades completados; se parten en ganadores (profit > 0) y
// perdedores (profit <= 0). El capital de partida se infiere del campo
// initial_capital del evento más antiguo que lo declare, con fallback a
// DefaultStartCapital.
func ComputeSummary(events []domain.TradeEvent) domain.PerformanceSummary {
	sells := filterSells(events)
	if len(sells) == 0 {
		return domain.PerformanceSummary{}
	}

	var sum domain.PerformanceSummary
	sum.StartCapital = inferStartCapital(events)

	for _, ev := range sells {
		sum.TotalTrades++
		if ev.Profit > 0 {
			sum.WinningTrades++
		} else {
			sum.LosingTrades++
		}
		sum.TotalProfit += ev.Profit
	}
	sum.WinRate = float64(sum.WinningTrades) / float64(sum.TotalTrades) * 100
	sum.CurrentCapital = sum.StartCapital + sum.TotalProfit
	sum.DailyReturns = dailyReturns(sells)

	return sum
}

// TradingPeriod es el rango de fechas observado en el log.
type TradingPeriod struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// SymbolStats son las estadísticas de trades completados de un símbolo.
type SymbolStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalProfit   float64 `json:"total_profit"`
	AverageProfit float64 `json:"average_profit"`
	BestTrade     float64 `json:"best_trade"`
	WorstTrade    float64 `json:"worst_trade"`
}

// Report es el informe de rendimiento serializable.
type Report struct {
	Summary   domain.PerformanceSummary `json:"summary"`
	Period    TradingPeriod             `json:"trading_period"`
	PerSymbol map[string]SymbolStats    `json:"per_crypto"`
}

// Report genera el informe sobre los eventos del rango dado. from/to en
// cero dejan el extremo sin acotar. El resumen se calcula sobre los
// eventos filtrados, no sobre el persistido, para que el recorte por
// fechas sea coherente en todos los campos.
func (r *Recorder) Report(ctx context.Context, from, to time.Time) (Report, error) {
	events, err := r.log.Events(ctx, from, to)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Summary:   ComputeSummary(events),
		PerSymbol: perSymbolStats(filterSells(events)),
	}
	for _, ev := range events {
		if rep.Period.Start.IsZero() || ev.Timestamp.Before(rep.Period.Start) {
			rep.Period.Start = ev.Timestamp
		}
		if ev.Timestamp.After(rep.Period.End) {
			rep.Period.End = ev.Timestamp
		}
	}
	return rep, nil
}

// --- helpers internos ---

func filterSells(events []domain.TradeEvent) []domain.TradeEvent {
	var sells []domain.TradeEvent
	for _, ev := range events {
		if ev.Type == domain.EventSell {
			sells = append(sells, ev)
		}
	}
	return sells
}

// inferStartCapital busca el initial_capital del evento más antiguo que lo
// declare. Si ninguno lo trae, DefaultStartCapital.
func inferStartCapital(events []domain.TradeEvent) float64 {
	for _, ev := range events { // ya vienen en orden cronológico
		if ev.InitialCapital > 0 {
			return ev.InitialCapital
		}
	}
	return DefaultStartCapital
}

// dailyReturns agrupa el P&L de los sells por fecha de calendario UTC.
func dailyReturns(sells []domain.TradeEvent) []domain.DailyReturn {
	byDate := make(map[string]float64)
	for _, ev := range sells {
		date := ev.Timestamp.UTC().Format("2006-01-02")
		byDate[date] += ev.Profit
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]domain.DailyReturn, 0, len(dates))
	for _, d := range dates {
		out = append(out, domain.DailyReturn{Date: d, Return: byDate[d]})
	}
	return out
}

// perSymbolStats agrupa los sells por símbolo. Solo símbolos observados:
// un bucket sin trades nunca se emite.
func perSymbolStats(sells []domain.TradeEvent) map[string]SymbolStats {
	stats := make(map[string]SymbolStats)
	for _, ev := range sells {
		s := stats[ev.Symbol]
		if s.TotalTrades == 0 {
			s.BestTrade = ev.Profit
			s.WorstTrade = ev.Profit
		} else {
			if ev.Profit > s.BestTrade {
				s.BestTrade = ev.Profit
			}
			if ev.Profit < s.WorstTrade {
				s.WorstTrade = ev.Profit
			}
		}
		s.TotalTrades++
		if ev.Profit > 0 {
			s.WinningTrades++
		}
		s.TotalProfit += ev.Profit
		stats[ev.Symbol] = s
	}

	for sym, s := range stats {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
		s.AverageProfit = s.TotalProfit / float64(s.TotalTrades)
		stats[sym] = s
	}
	return stats
}
