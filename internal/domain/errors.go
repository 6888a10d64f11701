package domain

import (
	"fmt"
	"time"
)

// DataUnavailableError indica que la fuente de datos históricos no pudo
// producir ninguna barra para el rango pedido. Fatal para ese backtest.
type DataUnavailableError struct {
	Symbol string
	From   time.Time
	To     time.Time
	Err    error
}

func (e *DataUnavailableError) Error() string {
	msg := fmt.Sprintf("no historical data for %s in [%s, %s]",
		e.Symbol, e.From.Format("2006-01-02"), e.To.Format("2006-01-02"))
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// PersistenceError indica que el estado persistido no se pudo leer o
// escribir. El caller decide si continúa o aborta — nunca debe tumbar
// el proceso entero.
type PersistenceError struct {
	Op  string // operación que falló, p.ej. "storage.AppendEvent"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConfigurationError indica un campo de configuración ausente o fuera de
// rango. Fatal en el arranque.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// InvalidSignalError indica que una estrategia devolvió un valor fuera de
// {BUY, SELL, HOLD}. Se falla rápido en lugar de coaccionar a HOLD para
// que los bugs de estrategia salgan a la superficie.
type InvalidSignalError struct {
	Strategy string
	Value    Signal
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf("strategy %q returned invalid signal %d", e.Strategy, int(e.Value))
}
