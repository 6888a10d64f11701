package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/tradebot/internal/adapters/notify"
	"github.com/alejandrodnm/tradebot/internal/backtest"
	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/alejandrodnm/tradebot/internal/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestConsole_NotifyEvent(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	err := c.NotifyEvent(context.Background(), domain.TradeEvent{
		Type:      domain.EventBuy,
		Symbol:    "BTCUSDT",
		Price:     50000,
		Quantity:  0.02,
		Timestamp: day(1),
	})
	require.NoError(t, err)

	err = c.NotifyEvent(context.Background(), domain.TradeEvent{
		Type:      domain.EventSell,
		Symbol:    "BTCUSDT",
		Price:     55000,
		Profit:    100,
		Timestamp: day(2),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "+100.00")
}

func TestConsole_PrintBacktest(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	res := &backtest.Result{
		Symbol:         "ETHUSDT",
		From:           day(1),
		To:             day(10),
		InitialCapital: 1000,
		Trades: []domain.Trade{
			{EntryTime: day(2), EntryPrice: 100, ExitTime: day(4), ExitPrice: 110, ProfitPct: 10},
			{EntryTime: day(5), EntryPrice: 110, ExitTime: day(7), ExitPrice: 99, ProfitPct: -10},
		},
		Metrics: domain.PerformanceMetrics{
			TotalTrades: 2,
			WinRate:     50,
			ProfitLoss:  -1,
			MaxDrawdown: 10,
		},
	}

	c.PrintBacktest(res)

	out := buf.String()
	assert.Contains(t, out, "ETHUSDT")
	assert.Contains(t, out, "Win rate:        50.00%")
	assert.Contains(t, out, "Profit/Loss:     -1.00%")
	assert.Contains(t, out, "+10.00")
	assert.Contains(t, out, "-10.00")
}

func TestConsole_PrintBacktest_OpenPosition(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	res := &backtest.Result{
		Symbol:         "BTCUSDT",
		From:           day(1),
		To:             day(5),
		InitialCapital: 1000,
		OpenPosition:   &domain.Position{EntryPrice: 50000, EntryTime: day(3)},
	}

	c.PrintBacktest(res)

	out := buf.String()
	assert.Contains(t, out, "Open position")
	assert.Contains(t, out, "No completed trades")
}

func TestConsole_PrintReport(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	rep := recorder.Report{
		Summary: domain.PerformanceSummary{
			StartCapital:   1000,
			CurrentCapital: 1050,
			TotalProfit:    50,
			WinRate:        66.67,
			TotalTrades:    3,
			WinningTrades:  2,
			LosingTrades:   1,
		},
		Period: recorder.TradingPeriod{Start: day(1), End: day(10)},
		PerSymbol: map[string]recorder.SymbolStats{
			"BTCUSDT": {TotalTrades: 2, WinningTrades: 2, WinRate: 100, TotalProfit: 70, AverageProfit: 35, BestTrade: 40, WorstTrade: 30},
			"ETHUSDT": {TotalTrades: 1, WinRate: 0, TotalProfit: -20, AverageProfit: -20, BestTrade: -20, WorstTrade: -20},
		},
	}

	c.PrintReport(rep)

	out := buf.String()
	assert.Contains(t, out, "Start capital:   1000.00")
	assert.Contains(t, out, "Current capital: 1050.00")
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "ETHUSDT")
	assert.Contains(t, out, "100.00%")
}

func TestConsole_PrintReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintReport(recorder.Report{})

	assert.Contains(t, buf.String(), "No completed trades")
}
