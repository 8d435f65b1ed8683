package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// SQLiteStore implements JournalStore using SQLite. Times are stored in
// UTC so that range filters compare correctly.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock sets the time source used for baselines and acknowledgements.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore creates a new SQLite-based journal store.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open database")
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "failed to initialize schema")
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Journaled trades. Exit fields are set together or not at all.
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		quantity REAL NOT NULL,
		entry_time DATETIME NOT NULL,
		exit_time DATETIME,
		pnl REAL,
		pnl_pct REAL,
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		CHECK ((exit_price IS NULL) = (pnl IS NULL) AND (pnl IS NULL) = (pnl_pct IS NULL))
	);

	-- Behavioral alerts, one per trade and type
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		trade_id TEXT NOT NULL,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		score INTEGER NOT NULL,
		reasons TEXT NOT NULL,
		recommendation TEXT NOT NULL DEFAULT '',
		acknowledged INTEGER DEFAULT 0,
		acknowledged_at DATETIME,
		created_at DATETIME NOT NULL,
		UNIQUE(trade_id, type)
	);

	-- Note analyses keyed by trade
	CREATE TABLE IF NOT EXISTS note_analyses (
		trade_id TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		analysis TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	-- Price history for market context
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timestamp)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user_entry ON trades(user_id, entry_time);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_alerts_acknowledged ON alerts(acknowledged);
	CREATE INDEX IF NOT EXISTS idx_candles_symbol_timestamp ON candles(symbol, timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// ============================================================================
// Trades Methods
// ============================================================================

const tradeColumns = "id, user_id, symbol, side, entry_price, exit_price, quantity, entry_time, exit_time, pnl, pnl_pct, notes"

// SaveTrade validates and inserts a trade. An empty ID is filled in.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.Trade) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	if err := trade.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidTrade, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.UserID, trade.Symbol, string(trade.Side), trade.EntryPrice, trade.ExitPrice, trade.Quantity,
		trade.EntryTime.UTC(), utcPtr(trade.ExitTime), trade.PnL, trade.PnLPct, trade.Notes)
	if err != nil {
		return apperrors.Wrap(err, "failed to save trade")
	}
	return nil
}

// CloseTrade sets a trade's exit price, exit time and PnL in one update.
func (s *SQLiteStore) CloseTrade(ctx context.Context, id string, exitPrice float64, exitTime time.Time) (models.Trade, error) {
	trade, err := s.GetTrade(ctx, id)
	if err != nil {
		return models.Trade{}, err
	}
	if trade.IsClosed() {
		return models.Trade{}, fmt.Errorf("%w: %s", apperrors.ErrTradeAlreadyClosed, id)
	}

	closed := trade.Close(exitPrice, exitTime)
	if err := closed.Validate(); err != nil {
		return models.Trade{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidTrade, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE trades SET exit_price = ?, exit_time = ?, pnl = ?, pnl_pct = ?
		WHERE id = ? AND exit_price IS NULL
	`, closed.ExitPrice, utcPtr(closed.ExitTime), closed.PnL, closed.PnLPct, id)
	if err != nil {
		return models.Trade{}, apperrors.Wrapf(err, "failed to close trade %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Trade{}, fmt.Errorf("%w: %s", apperrors.ErrTradeAlreadyClosed, id)
	}
	return closed, nil
}

// GetTrade retrieves one trade.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if apperrors.Is(err, sql.ErrNoRows) {
		return models.Trade{}, fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, id)
	}
	if err != nil {
		return models.Trade{}, apperrors.Wrapf(err, "failed to get trade %s", id)
	}
	return t, nil
}

// GetTrades retrieves trades oldest first. With a limit, the most recent
// trades are kept.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter models.TradeFilter) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if !filter.StartDate.IsZero() {
		query += " AND entry_time >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += " AND entry_time <= ?"
		args = append(args, filter.EndDate.UTC())
	}
	if filter.OpenOnly {
		query += " AND exit_price IS NULL"
	}

	query += " ORDER BY entry_time DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query trades")
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan trade")
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
	return trades, nil
}

// RecentTrades returns the trader's latest trades, oldest first.
func (s *SQLiteStore) RecentTrades(ctx context.Context, userID string, limit int) ([]models.Trade, error) {
	return s.GetTrades(ctx, models.TradeFilter{UserID: userID, Limit: limit})
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row scanner) (models.Trade, error) {
	var (
		t                      models.Trade
		side                   string
		exitPrice, pnl, pnlPct sql.NullFloat64
		exitTime               sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Symbol, &side, &t.EntryPrice, &exitPrice, &t.Quantity,
		&t.EntryTime, &exitTime, &pnl, &pnlPct, &t.Notes); err != nil {
		return models.Trade{}, err
	}
	t.Side = models.TradeSide(side)
	t.EntryTime = t.EntryTime.UTC()
	if exitPrice.Valid {
		t.ExitPrice = &exitPrice.Float64
	}
	if exitTime.Valid {
		et := exitTime.Time.UTC()
		t.ExitTime = &et
	}
	if pnl.Valid {
		t.PnL = &pnl.Float64
	}
	if pnlPct.Valid {
		t.PnLPct = &pnlPct.Float64
	}
	return t, nil
}

// ============================================================================
// Alerts Methods
// ============================================================================

// SaveAlerts inserts alerts. An alert for a trade and type that already
// exists is ignored, so re-evaluating a trade is idempotent.
func (s *SQLiteStore) SaveAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO alerts (id, user_id, trade_id, type, severity, score, reasons, recommendation, acknowledged, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return apperrors.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	for _, a := range alerts {
		reasons, err := json.Marshal(a.Reasons)
		if err != nil {
			return apperrors.Wrap(err, "failed to encode alert reasons")
		}
		acked := 0
		if a.Acknowledged {
			acked = 1
		}
		if _, err := stmt.ExecContext(ctx, a.ID, a.UserID, a.TradeID, string(a.Type), string(a.Severity), a.Score,
			string(reasons), a.Recommendation, acked, a.CreatedAt.UTC()); err != nil {
			return apperrors.Wrap(err, "failed to insert alert")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// GetAlerts retrieves alerts, newest first.
func (s *SQLiteStore) GetAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	query := "SELECT id, user_id, trade_id, type, severity, score, reasons, recommendation, acknowledged, created_at FROM alerts WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	if filter.TradeID != "" {
		query += " AND trade_id = ?"
		args = append(args, filter.TradeID)
	}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if filter.Unacknowledged {
		query += " AND acknowledged = 0"
	}

	query += " ORDER BY created_at DESC, score DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query alerts")
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var (
			a             models.Alert
			typ, severity string
			reasonsJSON   string
			acked         int
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.TradeID, &typ, &severity, &a.Score, &reasonsJSON,
			&a.Recommendation, &acked, &a.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan alert")
		}
		if err := json.Unmarshal([]byte(reasonsJSON), &a.Reasons); err != nil {
			return nil, apperrors.NewDataError("alert", a.ID, "corrupt reasons", err)
		}
		a.Type = models.AlertType(typ)
		a.Severity = models.Severity(severity)
		a.Acknowledged = acked == 1
		a.CreatedAt = a.CreatedAt.UTC()
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// AcknowledgeAlert marks an alert as acknowledged.
func (s *SQLiteStore) AcknowledgeAlert(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET acknowledged = 1, acknowledged_at = ? WHERE id = ?
	`, s.now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to acknowledge alert")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrAlertNotFound, id)
	}
	return nil
}

// ============================================================================
// Note Analysis Methods
// ============================================================================

// SaveAnalysis stores a trade's note analysis, replacing any earlier one.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, tradeID string, result models.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode analysis")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO note_analyses (trade_id, language, analysis, updated_at)
		VALUES (?, ?, ?, ?)
	`, tradeID, string(result.Language), string(data), s.now().UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to save analysis")
	}
	return nil
}

// GetAnalysis retrieves a trade's note analysis.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, tradeID string) (models.AnalysisResult, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT analysis FROM note_analyses WHERE trade_id = ?
	`, tradeID).Scan(&data)
	if apperrors.Is(err, sql.ErrNoRows) {
		return models.AnalysisResult{}, apperrors.NewDataError("analysis", tradeID, "no analysis stored", apperrors.ErrDataNotFound)
	}
	if err != nil {
		return models.AnalysisResult{}, apperrors.Wrapf(err, "failed to get analysis for trade %s", tradeID)
	}

	var r models.AnalysisResult
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return models.AnalysisResult{}, apperrors.NewDataError("analysis", tradeID, "corrupt analysis", err)
	}
	return r, nil
}
