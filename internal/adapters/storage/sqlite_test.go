package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/tradebot/internal/adapters/storage"
	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEvent(id string, typ domain.EventType, profit float64, at time.Time) domain.TradeEvent {
	return domain.TradeEvent{
		ID:        id,
		SessionID: "session-1",
		Type:      typ,
		Symbol:    "SOLUSDT",
		Price:     150,
		Quantity:  2,
		Profit:    profit,
		Timestamp: at,
	}
}

func countSummary(events []domain.TradeEvent) domain.PerformanceSummary {
	sum := domain.PerformanceSummary{}
	for _, ev := range events {
		if ev.Type == domain.EventSell {
			sum.TotalTrades++
			sum.TotalProfit += ev.Profit
		}
	}
	return sum
}

func TestSQLiteStorage_AppendAndEvents(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Append(ctx, makeEvent("ev-1", domain.EventBuy, 0, base), countSummary))
	require.NoError(t, db.Append(ctx, makeEvent("ev-2", domain.EventSell, 12.5, base.Add(time.Hour)), countSummary))

	events, err := db.Events(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Orden cronológico
	assert.Equal(t, "ev-1", events[0].ID)
	assert.Equal(t, domain.EventBuy, events[0].Type)
	assert.Equal(t, "ev-2", events[1].ID)
	assert.InDelta(t, 12.5, events[1].Profit, 0.001)
	assert.Equal(t, base.Add(time.Hour), events[1].Timestamp)
	assert.Equal(t, "session-1", events[1].SessionID)
}

func TestSQLiteStorage_SummaryRecomputedOnAppend(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, db.Append(ctx, makeEvent("ev-1", domain.EventSell, 10, base), countSummary))

	sum, err := db.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalTrades)
	assert.InDelta(t, 10.0, sum.TotalProfit, 0.001)

	require.NoError(t, db.Append(ctx, makeEvent("ev-2", domain.EventSell, -4, base.Add(time.Minute)), countSummary))

	sum, err = db.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalTrades)
	assert.InDelta(t, 6.0, sum.TotalProfit, 0.001)
}

func TestSQLiteStorage_SummaryEmpty(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	sum, err := db.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PerformanceSummary{}, sum)
}

func TestSQLiteStorage_EventsDateRange(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Append(ctx, makeEvent("ev-jan", domain.EventSell, 1, jan), countSummary))
	require.NoError(t, db.Append(ctx, makeEvent("ev-feb", domain.EventSell, 2, feb), countSummary))

	events, err := db.Events(ctx, jan.Add(24*time.Hour), time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-feb", events[0].ID)

	events, err = db.Events(ctx, time.Time{}, jan.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-jan", events[0].ID)
}

func TestSQLiteStorage_DuplicateEventID(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	ev := makeEvent("dup", domain.EventSell, 1, time.Now().UTC())

	require.NoError(t, db.Append(ctx, ev, countSummary))
	err = db.Append(ctx, ev, countSummary)

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)

	// El append fallido no debe dejar medio estado: sigue habiendo 1 evento
	events, err := db.Events(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSQLiteStorage_BarCacheRoundTrip(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	bars := []domain.Bar{
		{Timestamp: start, Open: 100, High: 102, Low: 99, Close: 101, Volume: 5000},
		{Timestamp: start.AddDate(0, 0, 1), Open: 101, High: 104, Low: 100, Close: 103, Volume: 6000},
	}
	require.NoError(t, db.SaveBars(ctx, "SOLUSDT", bars))

	got, err := db.GetBars(ctx, "SOLUSDT", start, start.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, bars[0], got[0])
	assert.Equal(t, bars[1], got[1])

	// Otro símbolo no ve las barras
	got, err = db.GetBars(ctx, "AVAXUSDT", start, start.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStorage_SaveBarsUpsert(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.SaveBars(ctx, "SOLUSDT", []domain.Bar{{Timestamp: ts, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}}))
	require.NoError(t, db.SaveBars(ctx, "SOLUSDT", []domain.Bar{{Timestamp: ts, Open: 2, High: 2, Low: 2, Close: 2, Volume: 2}}))

	got, err := db.GetBars(ctx, "SOLUSDT", ts, ts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Close)
}
