package audit

import (
	"context"
	"fmt"

	"github.com/alovak/sagepay/gateway"
)

var (
	// ErrDuplicateCode means a vendor tx code was reused. Codes are
	// generated per attempt, so this indicates a caller bug or a flaw in
	// code generation, not a payment failure.
	ErrDuplicateCode = fmt.Errorf("vendor tx code already recorded")
	// ErrNotFound means no record exists for the given key.
	ErrNotFound = fmt.Errorf("not found")
	// ErrAlreadyRecorded means a second response write was attempted for
	// the same record. Response recording is single-shot.
	ErrAlreadyRecorded = fmt.Errorf("response already recorded")
)

// Store is the persistence port for transaction records. Implementations
// must make the two writes of a single record atomic; calls for different
// vendor tx codes are independent and need no cross-call locking. Durability
// failures propagate to the caller, who decides whether to retry the whole
// operation.
type Store interface {
	// RecordRequest redacts params and persists a new record under code.
	RecordRequest(ctx context.Context, code string, params gateway.Params) (*TransactionRecord, error)
	// RecordResponse completes the record for code with the response
	// fields. It succeeds exactly once per record.
	RecordResponse(ctx context.Context, code string, resp *gateway.Response) error
	// FindByCode returns the record for a vendor tx code.
	FindByCode(ctx context.Context, code string) (*TransactionRecord, error)
	// FindByTxID returns the most recent record holding the given gateway
	// transaction id, for resolving follow-up operations.
	FindByTxID(ctx context.Context, txID string) (*TransactionRecord, error)
}
