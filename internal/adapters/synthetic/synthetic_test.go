package synthetic_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/tradebot/internal/adapters/storage"
	"github.com/alejandrodnm/tradebot/internal/adapters/synthetic"
	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_GeneratesOneBarPerDay(t *testing.T) {
	s := synthetic.NewSource(nil)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	bars, err := s.GetBars(context.Background(), "SOLUSDT", from, to)
	require.NoError(t, err)
	require.Len(t, bars, 10)

	for i, b := range bars {
		assert.Equal(t, from.AddDate(0, 0, i), b.Timestamp)
		assert.Greater(t, b.Open, 0.0)
		assert.GreaterOrEqual(t, b.High, b.Close)
		assert.LessOrEqual(t, b.Low, b.Close)
		assert.GreaterOrEqual(t, b.High, b.Low)
		assert.GreaterOrEqual(t, b.Volume, 0.0)
	}
}

func TestSource_Deterministic(t *testing.T) {
	s := synthetic.NewSource(nil)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)

	a, err := s.GetBars(context.Background(), "SOLUSDT", from, to)
	require.NoError(t, err)
	b, err := s.GetBars(context.Background(), "SOLUSDT", from, to)
	require.NoError(t, err)

	assert.Equal(t, a, b)

	// Otro símbolo genera otra serie
	c, err := s.GetBars(context.Background(), "AVAXUSDT", from, to)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSource_InvalidRange(t *testing.T) {
	s := synthetic.NewSource(nil)
	now := time.Now().UTC().Truncate(24 * time.Hour)

	_, err := s.GetBars(context.Background(), "SOLUSDT", now, now.AddDate(0, 0, -5))

	var dataErr *domain.DataUnavailableError
	require.ErrorAs(t, err, &dataErr)
}

func TestSource_ServesFromCache(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	s := synthetic.NewSource(db)
	ctx := context.Background()
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 5)

	first, err := s.GetBars(ctx, "SOLUSDT", from, to)
	require.NoError(t, err)

	// La segunda lectura tiene que venir de la cache con el mismo contenido
	cached, err := db.GetBars(ctx, "SOLUSDT", from, to)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	second, err := s.GetBars(ctx, "SOLUSDT", from, to)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
