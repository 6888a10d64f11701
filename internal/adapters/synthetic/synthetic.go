package synthetic

// synthetic.go — fuente de datos de fallback cuando no hay proveedor real
// configurado. Genera un random walk diario con volatilidad realista,
// determinista por (symbol, from, to) para que el mismo backtest siempre
// vea las mismas barras. Las barras generadas se cachean para reusarlas
// entre procesos.

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/alejandrodnm/tradebot/internal/ports"
)

const (
	basePrice    = 100.0
	dailyVol     = 0.02  // desviación estándar del cambio diario: ±2%
	intradayVol  = 0.01  // amplitud high/low respecto al open
	closeVol     = 0.005 // ruido del close respecto al open
	baseVolume   = 1_000_000.0
	volumeStdDev = 200_000.0
)

// Source implementa ports.HistoricalDataSource con barras sintéticas.
type Source struct {
	cache ports.BarCache // opcional; nil desactiva la cache
}

var _ ports.HistoricalDataSource = (*Source)(nil)

// NewSource crea la fuente sintética. cache puede ser nil.
func NewSource(cache ports.BarCache) *Source {
	return &Source{cache: cache}
}

// GetBars devuelve una barra diaria por cada día de [from, to]. Sirve de
// la cache si ya cubre el rango completo; si no, genera y cachea.
func (s *Source) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	from = from.UTC().Truncate(24 * time.Hour)
	to = to.UTC().Truncate(24 * time.Hour)

	if to.Before(from) {
		return nil, &domain.DataUnavailableError{Symbol: symbol, From: from, To: to}
	}
	days := int(to.Sub(from).Hours()/24) + 1

	if s.cache != nil {
		cached, err := s.cache.GetBars(ctx, symbol, from, to)
		if err == nil && len(cached) == days {
			slog.Debug("serving cached bars", "symbol", symbol, "bars", len(cached))
			return cached, nil
		}
	}

	slog.Warn("no data provider configured, using synthetic data", "symbol", symbol, "days", days)
	bars := generate(symbol, from, days)

	if s.cache != nil {
		if err := s.cache.SaveBars(ctx, symbol, bars); err != nil {
			// La cache es best-effort: fallar aquí no invalida las barras
			slog.Warn("failed to cache synthetic bars", "symbol", symbol, "err", err)
		}
	}
	return bars, nil
}

// generate produce el random walk determinista.
func generate(symbol string, from time.Time, days int) []domain.Bar {
	rng := rand.New(rand.NewSource(seed(symbol, from, days)))

	bars := make([]domain.Bar, 0, days)
	price := basePrice
	for i := 0; i < days; i++ {
		if i > 0 {
			price *= 1 + rng.NormFloat64()*dailyVol
		}

		open := price
		high := open * (1 + math.Abs(rng.NormFloat64())*intradayVol)
		low := open * (1 - math.Abs(rng.NormFloat64())*intradayVol)
		close := open * (1 + rng.NormFloat64()*closeVol)

		// El close tiene que quedar dentro del rango high/low
		if close > high {
			high = close
		}
		if close < low {
			low = close
		}

		bars = append(bars, domain.Bar{
			Timestamp: from.AddDate(0, 0, i),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    math.Abs(baseVolume + rng.NormFloat64()*volumeStdDev),
		})
	}
	return bars
}

// seed deriva una semilla estable de los parámetros del rango.
func seed(symbol string, from time.Time, days int) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	var buf [8]byte
	v := uint64(from.Unix())*31 + uint64(days)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	h.Write(buf[:])
	return int64(h.Sum64())
}
