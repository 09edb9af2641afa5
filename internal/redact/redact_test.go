package redact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alovak/sagepay/gateway"
)

func TestParamsReplacesAllSensitiveFields(t *testing.T) {
	in := gateway.Params{
		"VendorTxCode": "oscar-abc123",
		"Amount":       "10.00",
		"Currency":     "GBP",
		"CardHolder":   "Barry Chuckle",
		"CardNumber":   "4111111111111111",
		"ExpiryDate":   "0527",
		"CV2":          "123",
		"CardType":     "VISA",
	}

	safe := Params(in)

	for _, key := range []string{"CardHolder", "CardNumber", "ExpiryDate", "CV2", "CardType"} {
		require.Equal(t, Placeholder, safe[key], "field %s must be redacted", key)
	}

	// Non-sensitive fields pass through untouched.
	require.Equal(t, "oscar-abc123", safe["VendorTxCode"])
	require.Equal(t, "10.00", safe["Amount"])
	require.Equal(t, "GBP", safe["Currency"])
}

func TestParamsDoesNotMutateInput(t *testing.T) {
	in := gateway.Params{
		"CardNumber": "4111111111111111",
		"Amount":     "10.00",
	}

	_ = Params(in)

	require.Equal(t, "4111111111111111", in["CardNumber"])
	require.Equal(t, "10.00", in["Amount"])
}

func TestParamsSkipsAbsentFields(t *testing.T) {
	in := gateway.Params{"Amount": "2.00"}

	safe := Params(in)

	require.Len(t, safe, 1)
	require.NotContains(t, safe, "CardNumber")
}
