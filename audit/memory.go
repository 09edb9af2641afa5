package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/alovak/sagepay/gateway"
)

// MemoryStore is an in-memory Store for tests and ephemeral use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*TransactionRecord
	// order preserves insertion order so FindByTxID can pick the most
	// recent record for a gateway tx id.
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*TransactionRecord),
	}
}

func (s *MemoryStore) RecordRequest(_ context.Context, code string, params gateway.Params) (*TransactionRecord, error) {
	rec, err := newRecord(code, params)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[code]; ok {
		return nil, fmt.Errorf("%s: %w", code, ErrDuplicateCode)
	}
	s.records[code] = rec
	s.order = append(s.order, code)

	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) RecordResponse(_ context.Context, code string, resp *gateway.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[code]
	if !ok {
		return fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	if rec.ResponseRecorded {
		return fmt.Errorf("%s: %w", code, ErrAlreadyRecorded)
	}

	rec.Status = resp.Status
	rec.StatusDetail = resp.StatusDetail
	rec.TxID = resp.TxID
	rec.TxAuthNum = resp.TxAuthNum
	rec.SecurityKey = resp.SecurityKey
	rec.RawResponse = resp.Raw
	rec.ResponseRecorded = true

	return nil
}

func (s *MemoryStore) FindByCode(_ context.Context, code string) (*TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[code]
	if !ok {
		return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}

// All returns copies of every record in insertion order.
func (s *MemoryStore) All() []*TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*TransactionRecord, 0, len(s.order))
	for _, code := range s.order {
		cp := *s.records[code]
		out = append(out, &cp)
	}
	return out
}

func (s *MemoryStore) FindByTxID(_ context.Context, txID string) (*TransactionRecord, error) {
	if txID == "" {
		return nil, fmt.Errorf("empty tx id: %w", ErrNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.records[s.order[i]]
		if rec.TxID == txID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("tx id %s: %w", txID, ErrNotFound)
}
