package writer

import (
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/types"
)

// MarketDataWriter defines the interface for writing indicator tables to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer with the indicator columns to persist next to the bars.
	Initialize(columns []types.IndicatorType) error
	// Write persists a single row of a table.
	Write(symbol string, row indicator.Row) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// WriteTable writes every row of table and finalizes the writer.
// The writer is closed on return.
func WriteTable(w MarketDataWriter, table *indicator.Table) (outputPath string, err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := w.Initialize(table.Columns()); err != nil {
		return "", err
	}

	for i := 0; i < table.Len(); i++ {
		row, _ := table.Row(i)
		if err := w.Write(table.Symbol(), row); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}
