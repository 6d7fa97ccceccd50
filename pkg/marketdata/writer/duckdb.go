package writer

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// DuckDBWriter implements the Writer interface for DuckDB.
// Rows are staged in an in-memory table and exported as one parquet file.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	columns    []types.IndicatorType
	outputPath string // Path of the output Parquet file
}

// NewDuckDBWriter creates a new DuckDBWriter.
func NewDuckDBWriter(outputPath string) MarketDataWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
	}
}

// Initialize opens an in-memory DuckDB, creates the market_data table with one
// DOUBLE column per indicator, begins a transaction, and prepares the insert statement.
func (w *DuckDBWriter) Initialize(columns []types.IndicatorType) (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	w.columns = append([]types.IndicatorType(nil), columns...)

	definitions := []string{
		"id TEXT", "time TIMESTAMP", "symbol TEXT",
		"open DOUBLE", "high DOUBLE", "low DOUBLE", "close DOUBLE", "volume DOUBLE",
	}
	names := []string{"id", "time", "symbol", "open", "high", "low", "close", "volume"}

	for _, column := range w.columns {
		definitions = append(definitions, quoteIdent(string(column))+" DOUBLE")
		names = append(names, quoteIdent(string(column)))
	}

	_, err = w.db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS market_data (%s)", strings.Join(definitions, ", ")))
	if err != nil {
		w.db.Close() // Ensure DB is closed on error during init

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	w.stmt, err = w.tx.Prepare(fmt.Sprintf("INSERT INTO market_data (%s) VALUES (%s)", strings.Join(names, ", "), placeholders))
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write persists one row. Undefined indicator values are stored as NULL.
func (w *DuckDBWriter) Write(symbol string, row indicator.Row) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized or statement is nil")
	}

	args := []any{
		uuid.New().String(),
		row.Time,
		symbol,
		row.Bar.Open,
		row.Bar.High,
		row.Bar.Low,
		row.Bar.Close,
		row.Bar.Volume,
	}

	for _, column := range w.columns {
		v, ok := row.Values[column]
		if !ok || math.IsNaN(v) {
			args = append(args, nil)

			continue
		}

		args = append(args, v)
	}

	if _, err := w.stmt.Exec(args...); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert data", err)
	}

	return nil
}

// Finalize commits the transaction and exports the data to a Parquet file.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	_, err = w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY symbol, time) TO '%s' (FORMAT PARQUET)`,
		strings.ReplaceAll(w.outputPath, "'", "''")))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to export to Parquet", err)
	}

	return w.outputPath, nil
}

// Close cleans up the statement, any open transaction and the database connection.
func (w *DuckDBWriter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close statement: %v", err))
		}

		w.stmt = nil
	}

	// If transaction is still active (e.g., Finalize wasn't called or failed), rollback
	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to rollback transaction: %v", err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return errors.Newf(errors.ErrCodeMarketDataWriteFailed, "errors occurred during close:\n- %s", strings.Join(closeErrors, "\n- "))
	}

	return nil
}

// GetOutputPath returns the configured output file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
