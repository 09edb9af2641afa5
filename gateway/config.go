package gateway

import (
	"os"
	"time"
)

// Sage Pay VSP Direct service endpoints.
const (
	testRegisterURL  = "https://test.sagepay.com/gateway/service/vspdirect-register.vsp"
	testAuthoriseURL = "https://test.sagepay.com/gateway/service/authorise.vsp"
	testRefundURL    = "https://test.sagepay.com/gateway/service/refund.vsp"
	testVoidURL      = "https://test.sagepay.com/gateway/service/void.vsp"
	testRepeatURL    = "https://test.sagepay.com/gateway/service/repeat.vsp"

	liveRegisterURL  = "https://live.sagepay.com/gateway/service/vspdirect-register.vsp"
	liveAuthoriseURL = "https://live.sagepay.com/gateway/service/authorise.vsp"
	liveRefundURL    = "https://live.sagepay.com/gateway/service/refund.vsp"
	liveVoidURL      = "https://live.sagepay.com/gateway/service/void.vsp"
	liveRepeatURL    = "https://live.sagepay.com/gateway/service/repeat.vsp"
)

// Endpoints holds the service URL for each transaction type. PAYMENT,
// DEFERRED and AUTHENTICATE all go through the registration endpoint.
type Endpoints struct {
	Register  string
	Authorise string
	Refund    string
	Void      string
	Repeat    string
}

// TestEndpoints returns the Sage Pay test-server endpoints.
func TestEndpoints() Endpoints {
	return Endpoints{
		Register:  testRegisterURL,
		Authorise: testAuthoriseURL,
		Refund:    testRefundURL,
		Void:      testVoidURL,
		Repeat:    testRepeatURL,
	}
}

// LiveEndpoints returns the Sage Pay production endpoints.
func LiveEndpoints() Endpoints {
	return Endpoints{
		Register:  liveRegisterURL,
		Authorise: liveAuthoriseURL,
		Refund:    liveRefundURL,
		Void:      liveVoidURL,
		Repeat:    liveRepeatURL,
	}
}

// URL returns the endpoint for a transaction type.
func (e Endpoints) URL(tx TxType) string {
	switch tx {
	case TxAuthorise:
		return e.Authorise
	case TxRefund:
		return e.Refund
	case TxVoid:
		return e.Void
	case TxRepeat:
		return e.Repeat
	default:
		return e.Register
	}
}

// Config is the configuration for a gateway client.
type Config struct {
	// Vendor is the Sage Pay vendor name assigned to the account.
	Vendor string
	// Protocol is the VPS protocol version sent with every request.
	Protocol string
	// TxCodePrefix namespaces generated vendor transaction codes.
	TxCodePrefix string
	// ApplyAVSCV2 is the AVS/CV2 check mode. Sage Pay rejects requests
	// without a CV2 policy ("5017: The Security Code(CV2) is required"),
	// so it defaults to "2" (force checks off).
	ApplyAVSCV2 string
	Endpoints   Endpoints
	// HTTPTimeout bounds the whole network exchange when no deadline is
	// set on the request context.
	HTTPTimeout time.Duration
}

// DefaultConfig returns a test-mode configuration for the given vendor.
func DefaultConfig(vendor string) *Config {
	return &Config{
		Vendor:       vendor,
		Protocol:     "3.0",
		TxCodePrefix: "oscar",
		ApplyAVSCV2:  "2",
		Endpoints:    TestEndpoints(),
		HTTPTimeout:  30 * time.Second,
	}
}

// FromEnv builds a Config from SAGEPAY_* environment variables.
func FromEnv() *Config {
	cfg := DefaultConfig(os.Getenv("SAGEPAY_VENDOR"))
	cfg.Protocol = getenv("SAGEPAY_VPS_PROTOCOL", cfg.Protocol)
	cfg.TxCodePrefix = getenv("SAGEPAY_TX_CODE_PREFIX", cfg.TxCodePrefix)
	cfg.ApplyAVSCV2 = getenv("SAGEPAY_AVSCV2", cfg.ApplyAVSCV2)
	if getenv("SAGEPAY_TEST_MODE", "true") != "true" {
		cfg.Endpoints = LiveEndpoints()
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
