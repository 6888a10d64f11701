package ports

import (
	"context"

	"github.com/alejandrodnm/tradebot/internal/domain"
)

// Notifier presenta al usuario los eventos que genera el trading loop.
// En la implementación de consola, imprime una línea por evento.
type Notifier interface {
	NotifyEvent(ctx context.Context, ev domain.TradeEvent) error
}
