package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/tradebot/internal/domain"
)

// HistoricalDataSource entrega la serie de barras OHLCV de un símbolo en
// un rango de fechas, ordenada ascendente por timestamp.
type HistoricalDataSource interface {
	// GetBars devuelve las barras de [from, to]. Si la fuente no puede
	// producir ninguna barra para el rango, devuelve *domain.DataUnavailableError.
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error)
}

// BarCache persiste barras ya descargadas o generadas para no volver a
// pedirlas. La implementación SQLite lo comparte con el event log.
type BarCache interface {
	SaveBars(ctx context.Context, symbol string, bars []domain.Bar) error
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error)
}
