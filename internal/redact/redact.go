package redact

import "github.com/alovak/sagepay/gateway"

// Placeholder replaces the value of every cardholder-sensitive field before a
// request payload is persisted.
const Placeholder = "<removed>"

// sensitiveFields are the request fields that must never reach storage.
// Keeping them out of the audit trail keeps the store outside PCI scope.
var sensitiveFields = []string{
	"CardHolder",
	"CardNumber",
	"ExpiryDate",
	"CV2",
	"CardType",
}

// Params returns a copy of p with all sensitive field values replaced by
// Placeholder. The input is never mutated; callers reuse it for the real
// network call.
func Params(p gateway.Params) gateway.Params {
	safe := p.Clone()
	for _, key := range sensitiveFields {
		if _, ok := safe[key]; ok {
			safe[key] = Placeholder
		}
	}
	return safe
}
