package strategy

import (
	"fmt"

	"github.com/alejandrodnm/tradebot/internal/domain"
)

// SMACross es el crossover clásico de dos medias móviles simples: BUY
// cuando la media corta cruza por encima de la larga, SELL cuando cruza
// por debajo, HOLD en cualquier otro caso.
type SMACross struct {
	short int
	long  int
}

// NewSMACross crea la estrategia con los períodos dados. short debe ser
// menor que long.
func NewSMACross(short, long int) *SMACross {
	return &SMACross{short: short, long: long}
}

func (s *SMACross) Name() string {
	return fmt.Sprintf("sma_cross_%d_%d", s.short, s.long)
}

// GenerateSignal necesita al menos long+1 barras para comparar el cruce
// actual con el de la barra anterior. Con menos, HOLD.
func (s *SMACross) GenerateSignal(bars []domain.Bar) (domain.Signal, error) {
	if s.short <= 0 || s.long <= s.short {
		return domain.SignalHold, fmt.Errorf("sma_cross: invalid periods short=%d long=%d", s.short, s.long)
	}
	if len(bars) < s.long+1 {
		return domain.SignalHold, nil
	}

	shortNow := smaClose(bars, s.short)
	longNow := smaClose(bars, s.long)
	prev := bars[:len(bars)-1]
	shortPrev := smaClose(prev, s.short)
	longPrev := smaClose(prev, s.long)

	switch {
	case shortPrev <= longPrev && shortNow > longNow:
		return domain.SignalBuy, nil
	case shortPrev >= longPrev && shortNow < longNow:
		return domain.SignalSell, nil
	default:
		return domain.SignalHold, nil
	}
}

// smaClose calcula la media simple de los últimos n cierres.
func smaClose(bars []domain.Bar, n int) float64 {
	sum := 0.0
	for _, b := range bars[len(bars)-n:] {
		sum += b.Close
	}
	return sum / float64(n)
}
