package strategy

import (
	"github.com/alejandrodnm/tradebot/internal/domain"
)

// Strategy define el contrato para generar señales de trading. Cada
// estrategia encapsula una lógica distinta, pero todas son puras respecto
// a la posición: solo ven el histórico de barras hasta la barra actual
// inclusive, nunca barras futuras ni el estado de posición del engine.
type Strategy interface {
	// Name devuelve el identificador único de la estrategia.
	Name() string

	// GenerateSignal evalúa el prefijo de barras (la última es la barra
	// actual) y devuelve BUY, SELL o HOLD. Devuelve error si el histórico
	// es insuficiente de una forma irrecuperable; con pocas barras lo
	// normal es devolver HOLD.
	GenerateSignal(bars []domain.Bar) (domain.Signal, error)
}

// Registry mantiene las estrategias disponibles indexadas por nombre.
type Registry map[string]Strategy

// NewRegistry crea un registry con las estrategias de serie.
func NewRegistry() Registry {
	r := make(Registry)
	r.Register(NewSMACross(9, 21))
	r.Register(NewMomentum(5, 0.5, 0.3))
	return r
}

// Register añade una estrategia al registry.
func (r Registry) Register(s Strategy) {
	r[s.Name()] = s
}

// Get devuelve la estrategia por nombre.
func (r Registry) Get(name string) (Strategy, bool) {
	s, ok := r[name]
	return s, ok
}

// Names devuelve los nombres registrados, para mensajes de error del CLI.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}
