package gateway

import (
	"strings"

	"github.com/google/uuid"
)

// Sage Pay caps VendorTxCode at 40 characters.
const maxVendorTxCodeLen = 40

// NewVendorTxCode generates a unique vendor transaction code. The code is
// assigned once per attempt, before the network call, and doubles as the
// idempotency/audit key, so uniqueness is a hard invariant: the suffix
// carries 80 bits of UUID entropy rather than a short random number. 20
// hex characters leave room for a prefix and reference under the 40-char
// cap.
func NewVendorTxCode(prefix, reference string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:20]

	parts := make([]string, 0, 3)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if reference != "" {
		parts = append(parts, reference)
	}
	parts = append(parts, suffix)

	code := strings.Join(parts, "-")
	if len(code) > maxVendorTxCodeLen {
		// Trim the middle, never the suffix that carries the entropy.
		keep := maxVendorTxCodeLen - len(suffix) - 1
		if keep < 0 {
			keep = 0
		}
		head := strings.Join(parts[:len(parts)-1], "-")
		if len(head) > keep {
			head = head[:keep]
		}
		head = strings.TrimSuffix(head, "-")
		if head == "" {
			return suffix
		}
		code = head + "-" + suffix
	}
	return code
}
