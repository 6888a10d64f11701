package strategy

import (
	"fmt"

	"github.com/alejandrodnm/tradebot/internal/domain"
)

// Momentum compra cuando el precio subió más que buyThresholdPct en las
// últimas lookback barras, y vende cuando cayó más que sellThresholdPct.
// Los umbrales salen de la config de trading (alvo de lucro / stop loss).
type Momentum struct {
	lookback         int
	buyThresholdPct  float64
	sellThresholdPct float64
}

// NewMomentum crea la estrategia. Los umbrales son porcentajes positivos.
func NewMomentum(lookback int, buyThresholdPct, sellThresholdPct float64) *Momentum {
	return &Momentum{
		lookback:         lookback,
		buyThresholdPct:  buyThresholdPct,
		sellThresholdPct: sellThresholdPct,
	}
}

func (m *Momentum) Name() string { return "momentum" }

// GenerateSignal compara el cierre actual con el de hace lookback barras.
func (m *Momentum) GenerateSignal(bars []domain.Bar) (domain.Signal, error) {
	if m.lookback <= 0 {
		return domain.SignalHold, fmt.Errorf("momentum: invalid lookback %d", m.lookback)
	}
	if len(bars) < m.lookback+1 {
		return domain.SignalHold, nil
	}

	current := bars[len(bars)-1].Close
	past := bars[len(bars)-1-m.lookback].Close
	if past <= 0 {
		return domain.SignalHold, nil
	}

	changePct := (current - past) / past * 100
	switch {
	case changePct >= m.buyThresholdPct:
		return domain.SignalBuy, nil
	case changePct <= -m.sellThresholdPct:
		return domain.SignalSell, nil
	default:
		return domain.SignalHold, nil
	}
}
