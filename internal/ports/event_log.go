package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/tradebot/internal/domain"
)

// SummaryFunc recalcula el resumen a partir del log completo, en orden
// cronológico. La agregación vive en el recorder; el adapter solo aporta
// la transacción.
type SummaryFunc func(events []domain.TradeEvent) domain.PerformanceSummary

// EventLog persiste el log append-only de eventos de trading y el resumen
// derivado. Estado compartido entre procesos: cada Append es un ciclo
// read-modify-write bajo lock exclusivo del adapter.
type EventLog interface {
	// Append añade el evento y reemplaza el resumen almacenado con el
	// valor que produce recompute sobre el log entero, todo en una única
	// transacción. Errores de I/O se devuelven como *domain.PersistenceError.
	Append(ctx context.Context, ev domain.TradeEvent, recompute SummaryFunc) error

	// Events devuelve los eventos del rango dado en orden cronológico.
	// Un from/to en cero deja ese extremo sin acotar.
	Events(ctx context.Context, from, to time.Time) ([]domain.TradeEvent, error)

	// Summary devuelve el último resumen persistido.
	Summary(ctx context.Context) (domain.PerformanceSummary, error)

	// Close cierra el almacenamiento limpiamente.
	Close() error
}
