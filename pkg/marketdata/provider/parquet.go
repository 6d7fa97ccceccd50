package provider

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"go.uber.org/zap"
)

// ParquetSource reads bars from parquet files with time, symbol, open, high,
// low, close and volume columns. The path may be a glob.
// Periods are measured back from the last stored bar of the symbol.
type ParquetSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	path   string
}

// NewParquetSource opens an in-memory DuckDB and exposes path as the market_data view.
func NewParquetSource(path string, log *logger.Logger) (*ParquetSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open DuckDB connection", err)
	}

	source := &ParquetSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		path:   path,
	}

	if err := source.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return source, nil
}

func (p *ParquetSource) initialize() error {
	p.logger.Debug("Initializing parquet source", zap.String("path", p.path))

	// Squirrel doesn't support CREATE VIEW
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM read_parquet('%s');
	`, strings.ReplaceAll(p.path, "'", "''"))

	if _, err := p.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read parquet files at %s", p.path)
	}

	return nil
}

// Name implements marketdata.Source.
func (p *ParquetSource) Name() string {
	return string(ProviderParquet)
}

// Fetch implements marketdata.Source.
func (p *ParquetSource) Fetch(ctx context.Context, symbol string, period marketdata.Period) (types.PriceSeries, error) {
	last, ok, err := p.lastTime(ctx, symbol)
	if err != nil {
		return types.PriceSeries{}, err
	}

	if !ok {
		return types.EmptySeries(symbol), nil
	}

	query, args, err := p.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.Eq{"symbol": symbol}).
		Where(squirrel.GtOrEq{"time": period.Start(last)}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return types.PriceSeries{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to scan row", err)
		}

		bar.Time = bar.Time.UTC()
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read rows", err)
	}

	p.logger.Debug("Read bars from parquet", zap.String("symbol", symbol), zap.Int("count", len(bars)))

	return marketdata.BuildSeries(symbol, bars)
}

func (p *ParquetSource) lastTime(ctx context.Context, symbol string) (time.Time, bool, error) {
	query, args, err := p.sq.
		Select("MAX(time)").
		From("market_data").
		Where(squirrel.Eq{"symbol": symbol}).
		ToSql()
	if err != nil {
		return time.Time{}, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var last sql.NullTime
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return time.Time{}, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query last bar time", err)
	}

	return last.Time, last.Valid, nil
}

// Symbols returns the distinct symbols stored in the files.
func (p *ParquetSource) Symbols(ctx context.Context) ([]string, error) {
	query, args, err := p.sq.Select("DISTINCT symbol").From("market_data").OrderBy("symbol").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// Close releases the DuckDB connection.
func (p *ParquetSource) Close() error {
	return p.db.Close()
}
