// Package bot implementa el loop de paper trading: cada ciclo descarga
// las barras recientes de cada símbolo, ejecuta la estrategia sobre
// ellas y registra las operaciones simuladas en el event log.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/alejandrodnm/tradebot/internal/ports"
	"github.com/alejandrodnm/tradebot/internal/recorder"
	"github.com/alejandrodnm/tradebot/internal/strategy"
)

const defaultLookbackDays = 60

// Config contiene la configuración del loop de trading.
type Config struct {
	Symbols        []string
	Interval       time.Duration
	InitialCapital float64
	InvestmentPct  float64 // % del capital que se invierte por operación
	LookbackDays   int     // historial entregado a la estrategia por ciclo
	DryRun         bool    // ejecuta un solo ciclo y termina
}

// DefaultConfig devuelve una configuración sensata para paper trading.
func DefaultConfig() Config {
	return Config{
		Symbols:        []string{"BTCUSDT"},
		Interval:       60 * time.Second,
		InitialCapital: 1000,
		InvestmentPct:  10,
		LookbackDays:   defaultLookbackDays,
	}
}

// position es una posición abierta del loop, con la cantidad comprada.
type position struct {
	entryPrice float64
	quantity   float64
}

// Bot es el orquestador del loop de paper trading.
type Bot struct {
	cfg       Config
	data      ports.HistoricalDataSource
	rec       *recorder.Recorder
	notifier  ports.Notifier
	strat     strategy.Strategy
	capital   float64
	positions map[string]*position
	now       func() time.Time
}

// New crea un Bot con todas las dependencias inyectadas.
func New(
	cfg Config,
	data ports.HistoricalDataSource,
	rec *recorder.Recorder,
	notifier ports.Notifier,
	strat strategy.Strategy,
) *Bot {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaultLookbackDays
	}
	return &Bot{
		cfg:       cfg,
		data:      data,
		rec:       rec,
		notifier:  notifier,
		strat:     strat,
		capital:   cfg.InitialCapital,
		positions: make(map[string]*position),
		now:       time.Now,
	}
}

// Run ejecuta el loop hasta que el contexto se cancele. Registra un
// evento session_start al arrancar. Si cfg.DryRun está activo, solo
// ejecuta un ciclo.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("bot starting",
		"mode", "paper",
		"strategy", b.strat.Name(),
		"symbols", b.cfg.Symbols,
		"interval", b.cfg.Interval,
		"capital", b.cfg.InitialCapital,
	)

	start := domain.TradeEvent{
		Type:           domain.EventSessionStart,
		InitialCapital: b.cfg.InitialCapital,
		Mode:           "paper",
	}
	if err := b.record(ctx, start); err != nil {
		return fmt.Errorf("bot.Run: record session start: %w", err)
	}

	if err := b.runCycle(ctx); err != nil {
		slog.Error("trading cycle failed", "err", err)
		if b.cfg.DryRun {
			return err
		}
	}

	if b.cfg.DryRun {
		return nil
	}

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("bot stopped")
			return nil
		case <-ticker.C:
			if err := b.runCycle(ctx); err != nil {
				slog.Error("trading cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo de trading.
func (b *Bot) RunOnce(ctx context.Context) error {
	return b.runCycle(ctx)
}

// Capital devuelve el capital simulado actual.
func (b *Bot) Capital() float64 {
	return b.capital
}

// runCycle procesa todos los símbolos configurados.
func (b *Bot) runCycle(ctx context.Context) error {
	start := b.now()

	for _, symbol := range b.cfg.Symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.processSymbol(ctx, symbol); err != nil {
			slog.Warn("symbol cycle failed", "symbol", symbol, "err", err)
		}
	}

	slog.Info("trading cycle complete",
		"symbols", len(b.cfg.Symbols),
		"capital", b.capital,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// processSymbol descarga el historial reciente del símbolo, genera la
// señal y ejecuta la operación simulada que corresponda.
func (b *Bot) processSymbol(ctx context.Context, symbol string) error {
	to := b.now()
	from := to.AddDate(0, 0, -b.cfg.LookbackDays)

	bars, err := b.data.GetBars(ctx, symbol, from, to)
	if err != nil {
		return fmt.Errorf("bot.processSymbol: %w", err)
	}
	if len(bars) == 0 {
		return &domain.DataUnavailableError{Symbol: symbol, From: from, To: to}
	}

	signal, err := b.strat.GenerateSignal(bars)
	if err != nil {
		return fmt.Errorf("bot.processSymbol: strategy %s: %w", b.strat.Name(), err)
	}
	if !signal.Valid() {
		return &domain.InvalidSignalError{Strategy: b.strat.Name(), Value: signal}
	}

	price := bars[len(bars)-1].Close

	switch signal {
	case domain.SignalBuy:
		return b.openPosition(ctx, symbol, price)
	case domain.SignalSell:
		return b.closePosition(ctx, symbol, price)
	}
	return nil
}

// openPosition abre una posición si no hay una abierta para el símbolo.
func (b *Bot) openPosition(ctx context.Context, symbol string, price float64) error {
	if _, open := b.positions[symbol]; open {
		slog.Debug("buy ignored, position already open", "symbol", symbol)
		return nil
	}

	investment := b.capital * b.cfg.InvestmentPct / 100
	if investment <= 0 {
		slog.Warn("buy skipped, no capital available", "symbol", symbol, "capital", b.capital)
		return nil
	}
	quantity := investment / price

	ev := domain.TradeEvent{
		Type:     domain.EventBuy,
		Symbol:   symbol,
		Price:    price,
		Quantity: quantity,
	}
	if err := b.record(ctx, ev); err != nil {
		return err
	}

	b.positions[symbol] = &position{entryPrice: price, quantity: quantity}
	slog.Info("position opened", "symbol", symbol, "price", price, "quantity", quantity)
	return nil
}

// closePosition cierra la posición abierta del símbolo, si existe, y
// aplica el profit al capital simulado.
func (b *Bot) closePosition(ctx context.Context, symbol string, price float64) error {
	pos, open := b.positions[symbol]
	if !open {
		slog.Debug("sell ignored, no open position", "symbol", symbol)
		return nil
	}

	profit := (price - pos.entryPrice) * pos.quantity

	ev := domain.TradeEvent{
		Type:   domain.EventSell,
		Symbol: symbol,
		Price:  price,
		Profit: profit,
	}
	if err := b.record(ctx, ev); err != nil {
		return err
	}

	delete(b.positions, symbol)
	b.capital += profit
	slog.Info("position closed",
		"symbol", symbol,
		"entry", pos.entryPrice,
		"exit", price,
		"profit", profit,
	)
	return nil
}

// record persiste el evento y lo pasa al notifier. Un fallo del
// notifier no interrumpe el loop.
func (b *Bot) record(ctx context.Context, ev domain.TradeEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = b.now().UTC()
	}
	if err := b.rec.Record(ctx, ev); err != nil {
		return err
	}
	if b.notifier != nil {
		if err := b.notifier.NotifyEvent(ctx, ev); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	return nil
}
