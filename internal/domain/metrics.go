package domain

// metrics.go — cálculo de métricas de rendimiento a partir de una lista de
// trades cerrados. Funciones puras, sin estado ni side effects.

import "math"

const (
	// Tasa libre de riesgo anual asumida para el Sharpe ratio.
	riskFreeAnnual = 0.02
	// Períodos de trading por año. Nota: cada trade cuenta como un
	// período, no cada día de calendario — aproximación conocida.
	periodsPerYear = 252
)

// PerformanceMetrics son las estadísticas derivadas de un run. No se
// almacenan de forma independiente; siempre se recalculan de los trades.
type PerformanceMetrics struct {
	TotalTrades int     `json:"total_trades"`
	WinRate     float64 `json:"win_rate"`     // % de trades con profit > 0
	ProfitLoss  float64 `json:"profit_loss"`  // % retorno total sobre el capital inicial
	MaxDrawdown float64 `json:"max_drawdown"` // % caída pico-a-valle de la equity curve
	SharpeRatio float64 `json:"sharpe_ratio"` // anualizado sobre retornos por trade
}

// ComputeMetrics calcula las métricas para la secuencia de trades dada.
// Una lista vacía devuelve métricas a cero — es un caso válido, no un error.
func ComputeMetrics(trades []Trade, initialCapital float64) PerformanceMetrics {
	if len(trades) == 0 {
		return PerformanceMetrics{}
	}

	equity := BuildEquityCurve(initialCapital, trades)

	wins := 0
	for _, t := range trades {
		if t.ProfitPct > 0 {
			wins++
		}
	}

	final := equity[len(equity)-1]

	return PerformanceMetrics{
		TotalTrades: len(trades),
		WinRate:     float64(wins) / float64(len(trades)) * 100,
		ProfitLoss:  (final - initialCapital) / initialCapital * 100,
		MaxDrawdown: MaxDrawdown(equity),
		SharpeRatio: SharpeRatio(equity),
	}
}

// MaxDrawdown devuelve la máxima caída porcentual pico-a-valle de la
// curva de capital. El pico nunca decrece; el primer punto tiene
// drawdown 0 por construcción.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	peak := equity[0]
	maxDD := 0.0
	for _, value := range equity {
		if value > peak {
			peak = value
		}
		dd := (peak - value) / peak * 100
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// SharpeRatio devuelve el Sharpe anualizado sobre los retornos por paso de
// la curva de capital. Con menos de dos retornos, o con desviación
// estándar cero, devuelve 0 en vez de dividir por cero.
func SharpeRatio(equity []float64) float64 {
	if len(equity) < 3 {
		// 0 o 1 trades → 0 o 1 retornos; stdev sin muestra suficiente
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		returns = append(returns, equity[i]/equity[i-1]-1)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	stdev := math.Sqrt(variance)

	if stdev == 0 {
		return 0
	}

	riskFreePeriod := riskFreeAnnual / periodsPerYear
	return (mean - riskFreePeriod) / stdev * math.Sqrt(periodsPerYear)
}
