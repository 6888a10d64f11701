package binance

// klines.go — implementación de ports.HistoricalDataSource sobre el
// endpoint público /api/v3/klines. Binance devuelve cada vela como un
// array heterogéneo:
//   [openTime(ms), "open", "high", "low", "close", "volume", closeTime, ...]
// de ahí el decode a json.RawMessage + strconv.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/alejandrodnm/tradebot/internal/ports"
)

// maxKlinesPerRequest es el límite del endpoint por petición.
const maxKlinesPerRequest = 1000

var _ ports.HistoricalDataSource = (*Client)(nil)

// GetBars descarga las velas de [from, to], paginando si el rango supera
// el límite por petición. Si el rango no produce ninguna barra devuelve
// *domain.DataUnavailableError.
func (c *Client) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar
	cursor := from

	for !cursor.After(to) {
		batch, err := c.fetchKlines(ctx, symbol, cursor, to)
		if err != nil {
			return nil, &domain.DataUnavailableError{Symbol: symbol, From: from, To: to, Err: err}
		}
		if len(batch) == 0 {
			break
		}
		bars = append(bars, batch...)

		if len(batch) < maxKlinesPerRequest {
			break
		}
		cursor = batch[len(batch)-1].Timestamp.Add(time.Millisecond)
	}

	if len(bars) == 0 {
		return nil, &domain.DataUnavailableError{Symbol: symbol, From: from, To: to}
	}
	return bars, nil
}

// fetchKlines pide una página de velas.
func (c *Client) fetchKlines(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", c.interval)
	q.Set("startTime", strconv.FormatInt(from.UnixMilli(), 10))
	q.Set("endTime", strconv.FormatInt(to.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(maxKlinesPerRequest))

	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, q.Encode())

	var raw [][]json.RawMessage
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("binance.fetchKlines %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(raw))
	for _, k := range raw {
		bar, err := parseKline(k)
		if err != nil {
			return nil, fmt.Errorf("binance.fetchKlines %s: %w", symbol, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseKline convierte un array de kline en una Bar.
func parseKline(k []json.RawMessage) (domain.Bar, error) {
	if len(k) < 6 {
		return domain.Bar{}, fmt.Errorf("malformed kline: %d fields", len(k))
	}

	var openTime int64
	if err := json.Unmarshal(k[0], &openTime); err != nil {
		return domain.Bar{}, fmt.Errorf("kline open time: %w", err)
	}

	prices := make([]float64, 5) // open, high, low, close, volume
	for i := 0; i < 5; i++ {
		var s string
		if err := json.Unmarshal(k[i+1], &s); err != nil {
			return domain.Bar{}, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		prices[i] = v
	}

	return domain.Bar{
		Timestamp: time.UnixMilli(openTime).UTC(),
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		Volume:    prices[4],
	}, nil
}
