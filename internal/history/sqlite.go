package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"go.uber.org/zap"
)

var columns = []string{
	"run_id", "symbol", "period", "bar_time", "recorded_at",
	"trend", "rsi_signal", "macd_signal", "latest_close", "rsi", "period_return",
}

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	logger *logger.Logger
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string, log *logger.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open history database", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to create history schema", err)
	}

	log.Debug("Opened history database", zap.String("path", path))

	return &SQLiteStore{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: log,
	}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS assessments (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT    NOT NULL,
			symbol        TEXT    NOT NULL,
			period        TEXT    NOT NULL,
			bar_time      INTEGER NOT NULL,
			recorded_at   INTEGER NOT NULL,
			trend         TEXT    NOT NULL,
			rsi_signal    TEXT    NOT NULL,
			macd_signal   TEXT    NOT NULL,
			latest_close  REAL,
			rsi           REAL,
			period_return REAL
		);

		CREATE INDEX IF NOT EXISTS idx_assessments_symbol
			ON assessments (symbol, recorded_at);
	`)

	return err
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	insert := s.sq.Insert("assessments").Columns(columns...)
	for _, e := range entries {
		insert = insert.Values(
			e.RunID, e.Symbol, string(e.Period), e.BarTime.UnixMilli(), e.RecordedAt.UnixMilli(),
			string(e.Trend), string(e.RSISignal), string(e.MACDSignal),
			nullable(e.LatestClose), nullable(e.RSI), nullable(e.PeriodReturn),
		)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build insert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to record assessments", err)
	}

	s.logger.Debug("Recorded assessments", zap.Int("count", len(entries)))

	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, symbol string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query, args, err := s.sq.
		Select(columns...).
		From("assessments").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("recorded_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query history", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			e                          Entry
			period, trend, rsi, macd   string
			barTime, recordedAt        int64
			latestClose, rsiValue, ret sql.NullFloat64
		)

		if err := rows.Scan(&e.RunID, &e.Symbol, &period, &barTime, &recordedAt,
			&trend, &rsi, &macd, &latestClose, &rsiValue, &ret); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan history row", err)
		}

		e.Period = marketdata.Period(period)
		e.BarTime = time.UnixMilli(barTime).UTC()
		e.RecordedAt = time.UnixMilli(recordedAt).UTC()
		e.Trend = types.TrendLabel(trend)
		e.RSISignal = types.RSISignal(rsi)
		e.MACDSignal = types.MACDSignal(macd)
		e.LatestClose = fromNull(latestClose)
		e.RSI = fromNull(rsiValue)
		e.PeriodReturn = fromNull(ret)

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read history rows", err)
	}

	return entries, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(v optional.Option[float64]) any {
	value, err := v.Take()
	if err != nil {
		return nil
	}

	return value
}

func fromNull(v sql.NullFloat64) optional.Option[float64] {
	if !v.Valid {
		return optional.None[float64]()
	}

	return optional.Some(v.Float64)
}
