package storage

// sqlite.go — estado persistido del bot en un único archivo SQLite.
//
// Dos documentos lógicos para el recorder:
//   - `trade_events`: log append-only de eventos. Nunca se edita ni borra.
//   - `performance_summary`: UNA fila, reemplazada entera en cada append.
// Cada Append corre en una transacción: insert + relectura del log completo
// + reescritura del resumen. SQLite es single-writer, así que dos procesos
// grabando sobre el mismo archivo quedan serializados en vez de pisarse.
//
// Aparte, `bars` cachea las barras históricas descargadas o sintéticas
// para no regenerarlas en cada backtest.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/alejandrodnm/tradebot/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
-- Log append-only de eventos de trading
CREATE TABLE IF NOT EXISTS trade_events (
    id              TEXT PRIMARY KEY,
    session_id      TEXT,
    type            TEXT NOT NULL,
    symbol          TEXT,
    price           REAL NOT NULL DEFAULT 0,
    quantity        REAL NOT NULL DEFAULT 0,
    profit          REAL NOT NULL DEFAULT 0,
    initial_capital REAL NOT NULL DEFAULT 0,
    mode            TEXT,
    recorded_at     INTEGER NOT NULL -- unix ms UTC
);

-- Resumen derivado: siempre una sola fila, recalculada del log entero
CREATE TABLE IF NOT EXISTS performance_summary (
    id              INTEGER PRIMARY KEY CHECK (id = 1),
    start_capital   REAL    NOT NULL DEFAULT 0,
    current_capital REAL    NOT NULL DEFAULT 0,
    total_profit    REAL    NOT NULL DEFAULT 0,
    win_rate        REAL    NOT NULL DEFAULT 0,
    total_trades    INTEGER NOT NULL DEFAULT 0,
    winning_trades  INTEGER NOT NULL DEFAULT 0,
    losing_trades   INTEGER NOT NULL DEFAULT 0,
    daily_returns   TEXT    NOT NULL DEFAULT '[]'
);

-- Cache de barras históricas
CREATE TABLE IF NOT EXISTS bars (
    symbol TEXT     NOT NULL,
    ts     INTEGER  NOT NULL, -- unix ms UTC
    open   REAL     NOT NULL,
    high   REAL     NOT NULL,
    low    REAL     NOT NULL,
    close  REAL     NOT NULL,
    volume REAL     NOT NULL,
    PRIMARY KEY (symbol, ts)
);

CREATE INDEX IF NOT EXISTS idx_events_at ON trade_events(recorded_at);
CREATE INDEX IF NOT EXISTS idx_events_type ON trade_events(type);
`

// SQLiteStorage implementa ports.EventLog y ports.BarCache usando SQLite
// (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

var (
	_ ports.EventLog = (*SQLiteStorage)(nil)
	_ ports.BarCache = (*SQLiteStorage)(nil)
)

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &domain.PersistenceError{Op: fmt.Sprintf("storage.NewSQLiteStorage: open %q", path), Err: err}
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &domain.PersistenceError{Op: "storage.NewSQLiteStorage: apply schema", Err: err}
	}

	return &SQLiteStorage{db: db}, nil
}

// Append inserta el evento y reescribe el resumen derivado del log
// completo, todo dentro de una transacción.
func (s *SQLiteStorage) Append(ctx context.Context, ev domain.TradeEvent, recompute ports.SummaryFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Op: "storage.Append: begin tx", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trade_events
			(id, session_id, type, symbol, price, quantity, profit, initial_capital, mode, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.SessionID, string(ev.Type), ev.Symbol,
		ev.Price, ev.Quantity, ev.Profit, ev.InitialCapital, ev.Mode,
		ev.Timestamp.UTC().UnixMilli(),
	); err != nil {
		return &domain.PersistenceError{Op: "storage.Append: insert event", Err: err}
	}

	events, err := scanEvents(tx.QueryContext(ctx, selectEvents+` ORDER BY recorded_at, id`))
	if err != nil {
		return &domain.PersistenceError{Op: "storage.Append: read log", Err: err}
	}

	summary := recompute(events)
	daily, err := json.Marshal(summary.DailyReturns)
	if err != nil {
		return &domain.PersistenceError{Op: "storage.Append: marshal daily returns", Err: err}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO performance_summary
			(id, start_capital, current_capital, total_profit, win_rate,
			 total_trades, winning_trades, losing_trades, daily_returns)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_capital   = excluded.start_capital,
			current_capital = excluded.current_capital,
			total_profit    = excluded.total_profit,
			win_rate        = excluded.win_rate,
			total_trades    = excluded.total_trades,
			winning_trades  = excluded.winning_trades,
			losing_trades   = excluded.losing_trades,
			daily_returns   = excluded.daily_returns`,
		summary.StartCapital, summary.CurrentCapital, summary.TotalProfit, summary.WinRate,
		summary.TotalTrades, summary.WinningTrades, summary.LosingTrades, string(daily),
	); err != nil {
		return &domain.PersistenceError{Op: "storage.Append: write summary", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &domain.PersistenceError{Op: "storage.Append: commit", Err: err}
	}
	return nil
}

const selectEvents = `
	SELECT id, session_id, type, symbol, price, quantity, profit, initial_capital, mode, recorded_at
	FROM trade_events`

// Events devuelve los eventos del rango en orden cronológico. from/to en
// cero dejan el extremo sin acotar.
func (s *SQLiteStorage) Events(ctx context.Context, from, to time.Time) ([]domain.TradeEvent, error) {
	query := selectEvents + ` WHERE 1=1`
	var args []any
	if !from.IsZero() {
		query += ` AND recorded_at >= ?`
		args = append(args, from.UTC().UnixMilli())
	}
	if !to.IsZero() {
		query += ` AND recorded_at <= ?`
		args = append(args, to.UTC().UnixMilli())
	}
	query += ` ORDER BY recorded_at, id`

	events, err := scanEvents(s.db.QueryContext(ctx, query, args...))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "storage.Events", Err: err}
	}
	return events, nil
}

// Summary devuelve el último resumen persistido. Sin fila todavía,
// devuelve el resumen a cero.
func (s *SQLiteStorage) Summary(ctx context.Context) (domain.PerformanceSummary, error) {
	var sum domain.PerformanceSummary
	var daily string

	err := s.db.QueryRowContext(ctx, `
		SELECT start_capital, current_capital, total_profit, win_rate,
		       total_trades, winning_trades, losing_trades, daily_returns
		FROM performance_summary WHERE id = 1`,
	).Scan(
		&sum.StartCapital, &sum.CurrentCapital, &sum.TotalProfit, &sum.WinRate,
		&sum.TotalTrades, &sum.WinningTrades, &sum.LosingTrades, &daily,
	)
	if err == sql.ErrNoRows {
		return domain.PerformanceSummary{}, nil
	}
	if err != nil {
		return domain.PerformanceSummary{}, &domain.PersistenceError{Op: "storage.Summary", Err: err}
	}

	if err := json.Unmarshal([]byte(daily), &sum.DailyReturns); err != nil {
		return domain.PerformanceSummary{}, &domain.PersistenceError{Op: "storage.Summary: corrupt daily_returns", Err: err}
	}
	return sum, nil
}

// SaveBars hace upsert de las barras en la cache.
func (s *SQLiteStorage) SaveBars(ctx context.Context, symbol string, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.PersistenceError{Op: "storage.SaveBars: begin tx", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (symbol, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, ts) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume`)
	if err != nil {
		return &domain.PersistenceError{Op: "storage.SaveBars: prepare", Err: err}
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Timestamp.UTC().UnixMilli(),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return &domain.PersistenceError{Op: fmt.Sprintf("storage.SaveBars: upsert %s", symbol), Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.PersistenceError{Op: "storage.SaveBars: commit", Err: err}
	}
	return nil
}

// GetBars devuelve las barras cacheadas del rango, ordenadas por timestamp.
func (s *SQLiteStorage) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]domain.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, open, high, low, close, volume
		FROM bars
		WHERE symbol = ? AND ts BETWEEN ? AND ?
		ORDER BY ts`, symbol, from.UTC().UnixMilli(), to.UTC().UnixMilli())
	if err != nil {
		return nil, &domain.PersistenceError{Op: "storage.GetBars: query", Err: err}
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		var ts int64
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, &domain.PersistenceError{Op: "storage.GetBars: scan row", Err: err}
		}
		b.Timestamp = time.UnixMilli(ts).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "storage.GetBars: rows", Err: err}
	}
	return bars, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanEvents materializa las filas del log en orden.
func scanEvents(rows *sql.Rows, err error) ([]domain.TradeEvent, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.TradeEvent
	for rows.Next() {
		var ev domain.TradeEvent
		var typ string
		var ts int64
		if err := rows.Scan(
			&ev.ID, &ev.SessionID, &typ, &ev.Symbol,
			&ev.Price, &ev.Quantity, &ev.Profit, &ev.InitialCapital, &ev.Mode,
			&ts,
		); err != nil {
			return nil, err
		}
		ev.Type = domain.EventType(typ)
		ev.Timestamp = time.UnixMilli(ts).UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}
