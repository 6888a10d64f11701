package backtest

// engine.go — replay de barras históricas a través de una estrategia.
// El loop es estrictamente secuencial: la estrategia solo ve bars[0..i]
// en la barra i. Ese no-look-ahead es el invariante de corrección del
// engine, no una decisión de rendimiento.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/alejandrodnm/tradebot/internal/ports"
	"github.com/alejandrodnm/tradebot/internal/strategy"
)

// Result es el resultado completo de un run.
type Result struct {
	Symbol         string                    `json:"symbol"`
	From           time.Time                 `json:"from"`
	To             time.Time                 `json:"to"`
	InitialCapital float64                   `json:"initial_capital"`
	Trades         []domain.Trade            `json:"trades"`
	EquityCurve    []float64                 `json:"equity_curve"`
	Metrics        domain.PerformanceMetrics `json:"metrics"`

	// OpenPosition es la posición que seguía abierta en la última barra
	// cuando no se fuerza el cierre. Queda fuera de Trades y Metrics.
	OpenPosition *domain.Position `json:"open_position,omitempty"`
}

// Engine ejecuta backtests sobre una fuente de datos históricos.
type Engine struct {
	data            ports.HistoricalDataSource
	forceCloseFinal bool
}

// Option configura el Engine.
type Option func(*Engine)

// WithForceCloseFinal hace que una posición aún abierta al final del run
// se realice al close de la última barra. Por defecto queda excluida del
// trade list — cambiar esto altera win rate y conteo de trades, así que
// el Result deja constancia vía OpenPosition.
func WithForceCloseFinal() Option {
	return func(e *Engine) { e.forceCloseFinal = true }
}

// New crea un Engine con la fuente de datos dada.
func New(data ports.HistoricalDataSource, opts ...Option) *Engine {
	e := &Engine{data: data}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run ejecuta el backtest completo: carga barras, itera la estrategia
// sobre cada prefijo, convierte señales en trades y calcula métricas.
func (e *Engine) Run(ctx context.Context, strat strategy.Strategy, symbol string, from, to time.Time, initialCapital float64) (*Result, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("backtest.Run: initial capital must be positive, got %f", initialCapital)
	}

	slog.Info("running backtest",
		"strategy", strat.Name(),
		"symbol", symbol,
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
	)

	bars, err := e.data.GetBars(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("backtest.Run: %w", err)
	}
	if len(bars) == 0 {
		return nil, &domain.DataUnavailableError{Symbol: symbol, From: from, To: to}
	}

	trades, open, err := e.replay(ctx, strat, bars)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Symbol:         symbol,
		From:           from,
		To:             to,
		InitialCapital: initialCapital,
		Trades:         trades,
		EquityCurve:    domain.BuildEquityCurve(initialCapital, trades),
		Metrics:        domain.ComputeMetrics(trades, initialCapital),
		OpenPosition:   open,
	}

	slog.Info("backtest complete",
		"bars", len(bars),
		"trades", result.Metrics.TotalTrades,
		"win_rate", fmt.Sprintf("%.2f%%", result.Metrics.WinRate),
		"profit_loss", fmt.Sprintf("%.2f%%", result.Metrics.ProfitLoss),
	)
	return result, nil
}

// replay recorre las barras en orden y aplica la regla de transición de
// posición: BUY abre si no hay posición, SELL cierra si la hay, todo lo
// demás es no-op. El engine es el único dueño del estado de posición.
func (e *Engine) replay(ctx context.Context, strat strategy.Strategy, bars []domain.Bar) ([]domain.Trade, *domain.Position, error) {
	var trades []domain.Trade
	var position *domain.Position

	for i := range bars {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("backtest.replay: %w", err)
		}

		// La estrategia ve el prefijo hasta la barra actual inclusive,
		// nunca barras futuras.
		signal, err := strat.GenerateSignal(bars[:i+1])
		if err != nil {
			return nil, nil, fmt.Errorf("backtest.replay: bar %d: %w", i, err)
		}
		if !signal.Valid() {
			return nil, nil, &domain.InvalidSignalError{Strategy: strat.Name(), Value: signal}
		}

		bar := bars[i]
		switch signal {
		case domain.SignalBuy:
			if position == nil {
				position = &domain.Position{EntryPrice: bar.Close, EntryTime: bar.Timestamp}
			}
		case domain.SignalSell:
			if position != nil {
				trades = append(trades, domain.NewTrade(*position, bar.Close, bar.Timestamp))
				position = nil
			}
		}
	}

	if position != nil && e.forceCloseFinal {
		last := bars[len(bars)-1]
		trades = append(trades, domain.NewTrade(*position, last.Close, last.Timestamp))
		position = nil
	}

	return trades, position, nil
}
