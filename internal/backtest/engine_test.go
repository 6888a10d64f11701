package backtest_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/tradebot/internal/backtest"
	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource sirve barras fijas sin tocar red.
type stubSource struct {
	bars []domain.Bar
	err  error
}

func (s *stubSource) GetBars(_ context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bars, nil
}

// scriptedStrategy devuelve una señal predefinida por índice de barra.
type scriptedStrategy struct {
	signals []domain.Signal
	// seen registra la longitud del prefijo visto en cada invocación,
	// para comprobar que nunca llegan barras futuras.
	seen []int
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) GenerateSignal(bars []domain.Bar) (domain.Signal, error) {
	s.seen = append(s.seen, len(bars))
	idx := len(bars) - 1
	if idx >= len(s.signals) {
		return domain.SignalHold, nil
	}
	return s.signals[idx], nil
}

func makeBars(closes ...float64) []domain.Bar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c, High: c, Low: c, Close: c,
			Volume: 1000,
		}
	}
	return bars
}

var testRange = struct{ from, to time.Time }{
	from: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	to:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
}

func TestEngine_RoundTrip(t *testing.T) {
	src := &stubSource{bars: makeBars(100, 110, 120, 110)}
	strat := &scriptedStrategy{signals: []domain.Signal{
		domain.SignalBuy, domain.SignalHold, domain.SignalSell, domain.SignalHold,
	}}
	e := backtest.New(src)

	res, err := e.Run(context.Background(), strat, "SOLUSDT", testRange.from, testRange.to, 1000)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.InDelta(t, 100.0, trade.EntryPrice, 0.001)
	assert.InDelta(t, 120.0, trade.ExitPrice, 0.001)
	assert.InDelta(t, 20.0, trade.ProfitPct, 0.001)
	assert.Nil(t, res.OpenPosition)

	assert.Equal(t, 1, res.Metrics.TotalTrades)
	assert.InDelta(t, 100.0, res.Metrics.WinRate, 0.001)
	assert.InDelta(t, 20.0, res.Metrics.ProfitLoss, 0.001)
	assert.Equal(t, []float64{1000, 1200}, res.EquityCurve)
}

func TestEngine_NoLookAhead(t *testing.T) {
	src := &stubSource{bars: makeBars(100, 110, 120, 130, 140)}
	strat := &scriptedStrategy{}
	e := backtest.New(src)

	_, err := e.Run(context.Background(), strat, "SOLUSDT", testRange.from, testRange.to, 1000)
	require.NoError(t, err)

	// En la barra i la estrategia ve exactamente i+1 barras
	assert.Equal(t, []int{1, 2, 3, 4, 5}, strat.seen)
}

func TestEngine_PositionDiscipline(t *testing.T) {
	// BUY con posición abierta y SELL sin posición son no-ops
	src := &stubSource{bars: makeBars(100, 105, 110, 115, 120, 90)}
	strat := &scriptedStrategy{signals: []domain.Signal{
		domain.SignalSell, // sin posición → no-op
		domain.SignalBuy,
		domain.SignalBuy, // posición ya abierta → no-op
		domain.SignalSell,
		domain.SignalSell, // ya cerrada → no-op
		domain.SignalHold,
	}}
	e := backtest.New(src)

	res, err := e.Run(context.Background(), strat, "SOLUSDT", testRange.from, testRange.to, 1000)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	// Entrada en la segunda barra (105), no en la tercera
	assert.InDelta(t, 105.0, res.Trades[0].EntryPrice, 0.001)
	assert.InDelta(t, 115.0, res.Trades[0].ExitPrice, 0.001)
}

func TestEngine_OpenPositionExcludedByDefault(t *testing.T) {
	src := &stubSource{bars: makeBars(100, 110, 120)}
	strat := &scriptedStrategy{signals: []domain.Signal{
		domain.SignalBuy, domain.SignalHold, domain.SignalHold,
	}}
	e := backtest.New(src)

	res, err := e.Run(context.Background(), strat, "SOLUSDT", testRange.from, testRange.to, 1000)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	require.NotNil(t, res.OpenPosition)
	assert.InDelta(t, 100.0, res.OpenPosition.EntryPrice, 0.001)
	assert.Equal(t, 0, res.Metrics.TotalTrades)
}

func TestEngine_ForceCloseFinal(t *testing.T) {
	src := &stubSource{bars: makeBars(100, 110, 120)}
	strat := &scriptedStrategy{signals: []domain.Signal{
		domain.SignalBuy, domain.SignalHold, domain.SignalHold,
	}}
	e := backtest.New(src, backtest.WithForceCloseFinal())

	res, err := e.Run(context.Background(), strat, "SOLUSDT", testRange.from, testRange.to, 1000)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.InDelta(t, 20.0, res.Trades[0].ProfitPct, 0.001)
	assert.Nil(t, res.OpenPosition)
}

func TestEngine_NoData(t *testing.T) {
	src := &stubSource{err: &domain.DataUnavailableError{Symbol: "SOLUSDT"}}
	e := backtest.New(src)

	_, err := e.Run(context.Background(), &scriptedStrategy{}, "SOLUSDT", testRange.from, testRange.to, 1000)

	var dataErr *domain.DataUnavailableError
	require.ErrorAs(t, err, &dataErr)
}

func TestEngine_InvalidSignalFailsFast(t *testing.T) {
	src := &stubSource{bars: makeBars(100, 110)}
	strat := &scriptedStrategy{signals: []domain.Signal{domain.Signal(42)}}
	e := backtest.New(src)

	_, err := e.Run(context.Background(), strat, "SOLUSDT", testRange.from, testRange.to, 1000)

	var sigErr *domain.InvalidSignalError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "scripted", sigErr.Strategy)
}

func TestEngine_InvalidCapital(t *testing.T) {
	e := backtest.New(&stubSource{bars: makeBars(100)})

	_, err := e.Run(context.Background(), &scriptedStrategy{}, "SOLUSDT", testRange.from, testRange.to, 0)
	assert.Error(t, err)
}

func TestEngine_CancelledContext(t *testing.T) {
	src := &stubSource{bars: makeBars(100, 110, 120)}
	e := backtest.New(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, &scriptedStrategy{}, "SOLUSDT", testRange.from, testRange.to, 1000)
	require.ErrorIs(t, err, context.Canceled)
}
