// Package report renders analysis results as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/compare"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
)

const (
	ruleWidth    = 60
	sectionWidth = 40
)

// Format selects the rendering of a report file.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Extension returns the file extension of the format.
func (f Format) Extension() string {
	if f == FormatJSON {
		return "json"
	}

	return "txt"
}

// WriteAssessment renders the single-symbol report.
func WriteAssessment(w io.Writer, a types.TrendAssessment, period marketdata.Period, generatedAt time.Time) error {
	heavy := strings.Repeat("═", ruleWidth)
	light := strings.Repeat("─", sectionWidth)

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n  %s technical analysis report\n%s\n\n", heavy, a.Symbol, heavy)

	fmt.Fprintf(&b, "  Overview\n  %s\n", light)
	fmt.Fprintf(&b, "  %-15s: %s\n", "Ticker", a.Symbol)
	fmt.Fprintf(&b, "  %-15s: %s\n", "Period", period)
	fmt.Fprintf(&b, "  %-15s: %d\n", "Bars", a.BarCount)
	fmt.Fprintf(&b, "  %-15s: %s\n", "Latest close", money(a.LatestClose))
	fmt.Fprintf(&b, "  %-15s: %s (%s)\n", "Change", fixed(a.Change, 2), signedPercent(a.ChangePercent))
	fmt.Fprintf(&b, "  %-15s: %s\n", "Period high", money(a.PeriodHigh))
	fmt.Fprintf(&b, "  %-15s: %s\n", "Period low", money(a.PeriodLow))
	fmt.Fprintf(&b, "  %-15s: %s\n", "Period return", signedPercent(a.PeriodReturn))
	fmt.Fprintf(&b, "  %-15s: %s\n\n", "Average volume", grouped(a.AverageVolume))

	fmt.Fprintf(&b, "  Moving averages\n  %s\n", light)
	fmt.Fprintf(&b, "  %-15s: %s\n", "SMA 10", money(a.SMA10))
	fmt.Fprintf(&b, "  %-15s: %s\n", "SMA 30", money(a.SMA30))
	fmt.Fprintf(&b, "  %-15s: %s\n", "SMA 60", money(a.SMA60))
	fmt.Fprintf(&b, "  %-15s: %s\n\n", "Volatility", fixed(a.Volatility, 2))

	fmt.Fprintf(&b, "  Trend\n  %s\n  %s\n\n", light, a.Trend)

	rsiSignal := string(a.RSISignal)
	if a.RSIDefaulted {
		rsiSignal += " (insufficient data)"
	}

	fmt.Fprintf(&b, "  RSI\n  %s\n", light)
	fmt.Fprintf(&b, "  %-15s: %s\n", "RSI", fixed(a.RSI, 2))
	fmt.Fprintf(&b, "  %-15s: %s\n\n", "Signal", rsiSignal)

	fmt.Fprintf(&b, "  MACD\n  %s\n", light)
	fmt.Fprintf(&b, "  %-15s: %s\n", "MACD", fixed(a.MACD, 4))
	fmt.Fprintf(&b, "  %-15s: %s\n", "Signal line", fixed(a.Signal, 4))
	fmt.Fprintf(&b, "  %-15s: %s\n", "Histogram", fixed(a.Histogram, 4))
	fmt.Fprintf(&b, "  %-15s: %s\n\n", "Reading", a.MACDSignal)

	fmt.Fprintf(&b, "  Disclaimer\n  %s\n", light)
	b.WriteString("  For educational purposes only, not investment advice.\n")
	b.WriteString("  Past performance does not guarantee future results.\n\n")

	fmt.Fprintf(&b, "%s\n  Generated: %s\n%s\n", heavy, generatedAt.Format("2006-01-02 15:04:05"), heavy)

	_, err := io.WriteString(w, b.String())

	return err
}

// WriteSummary renders the comparison summary table.
func WriteSummary(w io.Writer, rows []compare.SummaryRow, period marketdata.Period) error {
	heavy := strings.Repeat("═", ruleWidth)

	var b strings.Builder

	symbols := make([]string, 0, len(rows))
	for _, row := range rows {
		symbols = append(symbols, row.Symbol)
	}

	fmt.Fprintf(&b, "%s\n  Comparison summary\n  Symbols: %s | Period: %s\n%s\n", heavy, strings.Join(symbols, ", "), period, heavy)
	fmt.Fprintf(&b, "  %-8s %12s %12s %8s\n", "Symbol", "Close", "Return", "RSI")
	fmt.Fprintf(&b, "  %s\n", strings.Repeat("─", 44))

	for _, row := range rows {
		fmt.Fprintf(&b, "  %-8s %12s %12s %8s\n", row.Symbol, money(row.LatestClose), signedPercent(row.PeriodReturn), fixed(row.RSI, 1))
	}

	fmt.Fprintf(&b, "%s\n", heavy)

	_, err := io.WriteString(w, b.String())

	return err
}

// WriteRanking renders the cumulative return ranking.
func WriteRanking(w io.Writer, entries []compare.RankEntry) error {
	var b strings.Builder

	fmt.Fprintf(&b, "  Ranking by cumulative return\n  %s\n", strings.Repeat("─", sectionWidth))

	for _, entry := range entries {
		fmt.Fprintf(&b, "  %2d. %-8s %12s\n", entry.Rank, entry.Symbol, signedPercent(entry.CumulativeReturn))
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// WriteJSON renders v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

// Filename returns the report file name of symbol, e.g. AAPL_report_20240102_150405.txt.
func Filename(symbol string, format Format, at time.Time) string {
	safe := strings.NewReplacer("^", "", "/", "_", "=", "_").Replace(symbol)

	return fmt.Sprintf("%s_report_%s.%s", safe, at.Format("20060102_150405"), format.Extension())
}

// SaveAssessment writes the report of a into dir and returns the file path.
func SaveAssessment(dir string, format Format, a types.TrendAssessment, period marketdata.Period, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, Filename(a.Symbol, format, generatedAt))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if format == FormatJSON {
		err = WriteJSON(f, a)
	} else {
		err = WriteAssessment(f, a, period, generatedAt)
	}

	if err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
