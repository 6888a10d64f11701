package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/alejandrodnm/tradebot/internal/backtest"
	"github.com/alejandrodnm/tradebot/internal/domain"
	"github.com/alejandrodnm/tradebot/internal/ports"
	"github.com/alejandrodnm/tradebot/internal/recorder"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier y el render de resultados en stdout.
type Console struct {
	out io.Writer
}

var _ ports.Notifier = (*Console)(nil)

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// NotifyEvent imprime una línea por evento del trading loop.
func (c *Console) NotifyEvent(_ context.Context, ev domain.TradeEvent) error {
	ts := ev.Timestamp.Format("15:04:05")
	switch ev.Type {
	case domain.EventSessionStart:
		fmt.Fprintf(c.out, "[%s] session started — mode:%s capital:%.2f\n", ts, ev.Mode, ev.InitialCapital)
	case domain.EventBuy:
		fmt.Fprintf(c.out, "[%s] BUY  %-10s price:%.4f qty:%.4f\n", ts, ev.Symbol, ev.Price, ev.Quantity)
	case domain.EventSell:
		fmt.Fprintf(c.out, "[%s] SELL %-10s price:%.4f profit:%+.2f\n", ts, ev.Symbol, ev.Price, ev.Profit)
	default:
		fmt.Fprintf(c.out, "[%s] %s %s\n", ts, ev.Type, ev.Symbol)
	}
	return nil
}

// PrintBacktest imprime el resumen del run y la tabla de trades.
func (c *Console) PrintBacktest(res *backtest.Result) {
	m := res.Metrics

	fmt.Fprintf(c.out, "\n=== BACKTEST %s — %s → %s ===\n",
		res.Symbol, res.From.Format("2006-01-02"), res.To.Format("2006-01-02"))
	fmt.Fprintf(c.out, "  Initial capital: %.2f\n", res.InitialCapital)
	fmt.Fprintf(c.out, "  Total trades:    %d\n", m.TotalTrades)
	fmt.Fprintf(c.out, "  Win rate:        %.2f%%\n", m.WinRate)
	fmt.Fprintf(c.out, "  Profit/Loss:     %.2f%%\n", m.ProfitLoss)
	fmt.Fprintf(c.out, "  Max drawdown:    %.2f%%\n", m.MaxDrawdown)
	fmt.Fprintf(c.out, "  Sharpe ratio:    %.2f\n", m.SharpeRatio)

	if res.OpenPosition != nil {
		fmt.Fprintf(c.out, "  Open position:   entry %.4f at %s (excluded from metrics)\n",
			res.OpenPosition.EntryPrice, res.OpenPosition.EntryTime.Format("2006-01-02"))
	}

	if len(res.Trades) == 0 {
		fmt.Fprintln(c.out, "  No completed trades")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Entry", "Entry $", "Exit", "Exit $", "P&L %")
	for i, tr := range res.Trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			tr.EntryTime.Format("2006-01-02"),
			fmt.Sprintf("%.4f", tr.EntryPrice),
			tr.ExitTime.Format("2006-01-02"),
			fmt.Sprintf("%.4f", tr.ExitPrice),
			fmt.Sprintf("%+.2f", tr.ProfitPct),
		)
	}
	table.Render()
}

// PrintReport imprime el informe del recorder: resumen global y tabla
// por símbolo.
func (c *Console) PrintReport(rep recorder.Report) {
	sum := rep.Summary

	fmt.Fprintf(c.out, "\n=== PERFORMANCE REPORT ===\n")
	if !rep.Period.Start.IsZero() {
		fmt.Fprintf(c.out, "  Period:          %s → %s\n",
			rep.Period.Start.Format("2006-01-02"), rep.Period.End.Format("2006-01-02"))
	}
	fmt.Fprintf(c.out, "  Start capital:   %.2f\n", sum.StartCapital)
	fmt.Fprintf(c.out, "  Current capital: %.2f\n", sum.CurrentCapital)
	fmt.Fprintf(c.out, "  Total profit:    %+.2f\n", sum.TotalProfit)
	fmt.Fprintf(c.out, "  Total trades:    %d (W:%d L:%d, win rate %.2f%%)\n",
		sum.TotalTrades, sum.WinningTrades, sum.LosingTrades, sum.WinRate)

	if len(rep.PerSymbol) == 0 {
		fmt.Fprintln(c.out, "  No completed trades")
		return
	}

	// Orden estable por símbolo para que el output sea reproducible
	symbols := make([]string, 0, len(rep.PerSymbol))
	for sym := range rep.PerSymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	table := tablewriter.NewWriter(c.out)
	table.Header("Symbol", "Trades", "Win rate", "Total P&L", "Avg P&L", "Best", "Worst")
	for _, sym := range symbols {
		s := rep.PerSymbol[sym]
		table.Append(
			sym,
			fmt.Sprintf("%d", s.TotalTrades),
			fmt.Sprintf("%.2f%%", s.WinRate),
			fmt.Sprintf("%+.2f", s.TotalProfit),
			fmt.Sprintf("%+.2f", s.AverageProfit),
			fmt.Sprintf("%+.2f", s.BestTrade),
			fmt.Sprintf("%+.2f", s.WorstTrade),
		)
	}
	table.Render()
}

// PrintStatus imprime una línea de estado para el subcomando status.
func (c *Console) PrintStatus(running bool, pid int, sum domain.PerformanceSummary) {
	if running {
		fmt.Fprintf(c.out, "Bot status: RUNNING (pid %d)\n", pid)
	} else {
		fmt.Fprintln(c.out, "Bot status: STOPPED")
	}
	fmt.Fprintf(c.out, "  Trades: %d | Win rate: %.2f%% | Capital: %.2f (%+.2f)\n",
		sum.TotalTrades, sum.WinRate, sum.CurrentCapital, sum.TotalProfit)
}
