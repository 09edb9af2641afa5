package gateway

// TxType identifies a Sage Pay transaction type.
type TxType string

const (
	TxPayment      TxType = "PAYMENT"
	TxDeferred     TxType = "DEFERRED"
	TxAuthenticate TxType = "AUTHENTICATE"
	TxAuthorise    TxType = "AUTHORISE"
	TxRefund       TxType = "REFUND"
	TxVoid         TxType = "VOID"
	TxRepeat       TxType = "REPEAT"
)

// Params is the flat field set sent to (or decoded from) the gateway.
type Params map[string]string

// Clone returns an independent copy so callers can keep using the original.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Get returns the value for key or "" when absent.
func (p Params) Get(key string) string {
	return p[key]
}
