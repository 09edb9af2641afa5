// Package audit keeps a durable append-only record of every gateway call:
// the redacted request parameters and the decoded response, keyed by vendor
// transaction code.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alovak/sagepay/gateway"
	"github.com/alovak/sagepay/internal/redact"
)

// TransactionRecord is one row per gateway call. A record is created with
// the request fields immediately before dispatch and completed with the
// response fields exactly once; it is never mutated afterwards and never
// deleted by this package.
type TransactionRecord struct {
	Protocol     string
	TxType       string
	Vendor       string
	VendorTxCode string
	Amount       string
	Currency     string
	Description  string
	// RawRequest is the redacted request payload as a JSON blob. Card
	// fields never appear here; see internal/redact.
	RawRequest string

	Status       string
	StatusDetail string
	TxID         string
	TxAuthNum    string
	SecurityKey  string
	RawResponse  string

	// ResponseRecorded marks the single request-to-response transition. A
	// record with ResponseRecorded false is a valid terminal state after
	// a transport failure.
	ResponseRecorded bool

	CreatedAt time.Time
}

// newRecord builds the request half of a record. The payload is redacted
// before it is attached; the caller's params are untouched.
func newRecord(code string, params gateway.Params) (*TransactionRecord, error) {
	safe := redact.Params(params)
	raw, err := json.Marshal(safe)
	if err != nil {
		return nil, fmt.Errorf("encoding request payload: %w", err)
	}

	return &TransactionRecord{
		Protocol:     params.Get("VPSProtocol"),
		TxType:       params.Get("TxType"),
		Vendor:       params.Get("Vendor"),
		VendorTxCode: code,
		Amount:       params.Get("Amount"),
		Currency:     params.Get("Currency"),
		Description:  params.Get("Description"),
		RawRequest:   string(raw),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// RelatedTxn returns the identifiers a follow-up operation needs to
// reference this transaction.
func (r *TransactionRecord) RelatedTxn() gateway.RelatedTxn {
	return gateway.RelatedTxn{
		VendorTxCode: r.VendorTxCode,
		TxID:         r.TxID,
		TxAuthNum:    r.TxAuthNum,
		SecurityKey:  r.SecurityKey,
	}
}
