package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/alovak/sagepay/gateway"
)

// SQLiteStore is a Store backed by an embedded SQLite database, for callers
// that want durable audit records without running a database server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// audit table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
        CREATE TABLE IF NOT EXISTS sagepay_transactions (
            id                INTEGER PRIMARY KEY AUTOINCREMENT,
            protocol          TEXT NOT NULL DEFAULT '',
            tx_type           TEXT NOT NULL DEFAULT '',
            vendor            TEXT NOT NULL DEFAULT '',
            vendor_tx_code    TEXT NOT NULL UNIQUE,
            amount            TEXT NOT NULL DEFAULT '',
            currency          TEXT NOT NULL DEFAULT '',
            description       TEXT NOT NULL DEFAULT '',
            raw_request       TEXT NOT NULL DEFAULT '',
            status            TEXT NOT NULL DEFAULT '',
            status_detail     TEXT NOT NULL DEFAULT '',
            tx_id             TEXT NOT NULL DEFAULT '',
            tx_auth_num       TEXT NOT NULL DEFAULT '',
            security_key      TEXT NOT NULL DEFAULT '',
            raw_response      TEXT NOT NULL DEFAULT '',
            response_recorded INTEGER NOT NULL DEFAULT 0,
            created_at        DATETIME NOT NULL
        );
        CREATE INDEX IF NOT EXISTS sagepay_transactions_tx_id_idx
            ON sagepay_transactions (tx_id);
    `)
	if err != nil {
		return fmt.Errorf("creating audit schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordRequest(ctx context.Context, code string, params gateway.Params) (*TransactionRecord, error) {
	rec, err := newRecord(code, params)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sagepay_transactions
            (protocol, tx_type, vendor, vendor_tx_code, amount, currency, description, raw_request, created_at)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, rec.Protocol, rec.TxType, rec.Vendor, rec.VendorTxCode, rec.Amount,
		rec.Currency, rec.Description, rec.RawRequest, rec.CreatedAt)
	if isSQLiteUniqueViolation(err) {
		return nil, fmt.Errorf("%s: %w", code, ErrDuplicateCode)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting audit record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) RecordResponse(ctx context.Context, code string, resp *gateway.Response) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE sagepay_transactions
           SET status=?, status_detail=?, tx_id=?, tx_auth_num=?,
               security_key=?, raw_response=?, response_recorded=1
         WHERE vendor_tx_code=? AND response_recorded=0
    `, resp.Status, resp.StatusDetail, resp.TxID, resp.TxAuthNum,
		resp.SecurityKey, resp.Raw, code)
	if err != nil {
		return fmt.Errorf("updating audit record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating audit record: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var recorded bool
	err = s.db.QueryRowContext(ctx,
		`SELECT response_recorded FROM sagepay_transactions WHERE vendor_tx_code=?`,
		code).Scan(&recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking audit record: %w", err)
	}
	return fmt.Errorf("%s: %w", code, ErrAlreadyRecorded)
}

func (s *SQLiteStore) FindByCode(ctx context.Context, code string) (*TransactionRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE vendor_tx_code=?`, code)
	return scanRecord(row, code)
}

func (s *SQLiteStore) FindByTxID(ctx context.Context, txID string) (*TransactionRecord, error) {
	if txID == "" {
		return nil, fmt.Errorf("empty tx id: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx,
		selectColumns+` WHERE tx_id=? ORDER BY created_at DESC, id DESC LIMIT 1`, txID)
	return scanRecord(row, txID)
}

func isSQLiteUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}
