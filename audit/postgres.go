package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"

	"github.com/alovak/sagepay/gateway"
)

// PostgresStore is a Store backed by a Postgres table. Both writes of a
// record are single statements, so they are atomic without explicit locking.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle. Call EnsureSchema before
// first use unless the table is managed externally.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS sagepay_transactions (
            id                BIGSERIAL PRIMARY KEY,
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
            response_recorded BOOLEAN NOT NULL DEFAULT FALSE,
            created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
        );
        CREATE INDEX IF NOT EXISTS sagepay_transactions_tx_id_idx
            ON sagepay_transactions (tx_id);
    `)
	if err != nil {
		return fmt.Errorf("creating audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecordRequest(ctx context.Context, code string, params gateway.Params) (*TransactionRecord, error) {
	rec, err := newRecord(code, params)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sagepay_transactions
            (protocol, tx_type, vendor, vendor_tx_code, amount, currency, description, raw_request, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `, rec.Protocol, rec.TxType, rec.Vendor, rec.VendorTxCode, rec.Amount,
		rec.Currency, rec.Description, rec.RawRequest, rec.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%s: %w", code, ErrDuplicateCode)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting audit record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) RecordResponse(ctx context.Context, code string, resp *gateway.Response) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE sagepay_transactions
           SET status=$2, status_detail=$3, tx_id=$4, tx_auth_num=$5,
               security_key=$6, raw_response=$7, response_recorded=TRUE
         WHERE vendor_tx_code=$1 AND NOT response_recorded
    `, code, resp.Status, resp.StatusDetail, resp.TxID, resp.TxAuthNum,
		resp.SecurityKey, resp.Raw)
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

	// No row updated: distinguish a missing record from a second write.
	var recorded bool
	err = s.db.QueryRowContext(ctx,
		`SELECT response_recorded FROM sagepay_transactions WHERE vendor_tx_code=$1`,
		code).Scan(&recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking audit record: %w", err)
	}
	return fmt.Errorf("%s: %w", code, ErrAlreadyRecorded)
}

func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*TransactionRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE vendor_tx_code=$1`, code)
	return scanRecord(row, code)
}

func (s *PostgresStore) FindByTxID(ctx context.Context, txID string) (*TransactionRecord, error) {
	if txID == "" {
		return nil, fmt.Errorf("empty tx id: %w", ErrNotFound)
	}
	row := s.db.QueryRowContext(ctx,
		selectColumns+` WHERE tx_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, txID)
	return scanRecord(row, txID)
}

const selectColumns = `
    SELECT protocol, tx_type, vendor, vendor_tx_code, amount, currency,
           description, raw_request, status, status_detail, tx_id,
           tx_auth_num, security_key, raw_response, response_recorded, created_at
      FROM sagepay_transactions`

func scanRecord(row *sql.Row, key string) (*TransactionRecord, error) {
	var rec TransactionRecord
	err := row.Scan(&rec.Protocol, &rec.TxType, &rec.Vendor, &rec.VendorTxCode,
		&rec.Amount, &rec.Currency, &rec.Description, &rec.RawRequest,
		&rec.Status, &rec.StatusDetail, &rec.TxID, &rec.TxAuthNum,
		&rec.SecurityKey, &rec.RawResponse, &rec.ResponseRecorded, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning audit record: %w", err)
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
