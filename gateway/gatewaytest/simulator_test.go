package gatewaytest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/alovak/sagepay/gateway"
)

func post(t *testing.T, srv *httptest.Server, path string, form url.Values) *gateway.Response {
	t.Helper()

	resp, err := http.PostForm(srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return gateway.ParseResponse(string(body))
}

func registerForm(code string) url.Values {
	return url.Values{
		"TxType":       {"AUTHENTICATE"},
		"VendorTxCode": {code},
		"Amount":       {"10.00"},
		"Currency":     {"GBP"},
		"CardNumber":   {"4111111111111111"},
		"ExpiryDate":   {"0527"},
		"CV2":          {"123"},
	}
}

func TestRegisterAndAuthorise(t *testing.T) {
	sim := NewSimulator(slog.Default())
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()

	reg := post(t, srv, "/gateway/service/vspdirect-register.vsp", registerForm("code-1"))
	require.Equal(t, gateway.StatusOK, reg.Status)
	require.NotEmpty(t, reg.TxID)
	require.NotEmpty(t, reg.SecurityKey)
	require.NotEmpty(t, reg.TxAuthNum)

	auth := post(t, srv, "/gateway/service/authorise.vsp", url.Values{
		"TxType":             {"AUTHORISE"},
		"VendorTxCode":       {"code-2"},
		"Amount":             {"11.50"},
		"Currency":           {"GBP"},
		"RelatedVPSTxId":     {reg.TxID},
		"RelatedSecurityKey": {reg.SecurityKey},
	})
	require.Equal(t, gateway.StatusOK, auth.Status)
	require.NotEqual(t, reg.TxID, auth.TxID)

	// The 115% ceiling is now exhausted.
	over := post(t, srv, "/gateway/service/authorise.vsp", url.Values{
		"TxType":             {"AUTHORISE"},
		"VendorTxCode":       {"code-3"},
		"Amount":             {"0.01"},
		"Currency":           {"GBP"},
		"RelatedVPSTxId":     {reg.TxID},
		"RelatedSecurityKey": {reg.SecurityKey},
	})
	require.Equal(t, gateway.StatusNotAuthed, over.Status)
}

func TestRegisterValidation(t *testing.T) {
	sim := NewSimulator(slog.Default())
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()

	missing := registerForm("code-1")
	missing.Del("CardNumber")
	resp := post(t, srv, "/gateway/service/vspdirect-register.vsp", missing)
	require.Equal(t, gateway.StatusMalformed, resp.Status)

	ok := post(t, srv, "/gateway/service/vspdirect-register.vsp", registerForm("code-1"))
	require.Equal(t, gateway.StatusOK, ok.Status)

	dup := post(t, srv, "/gateway/service/vspdirect-register.vsp", registerForm("code-1"))
	require.Equal(t, gateway.StatusMalformed, dup.Status)
	require.Contains(t, dup.StatusDetail, "Duplicate")
}

func TestRelatedNotFound(t *testing.T) {
	sim := NewSimulator(slog.Default())
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()

	resp := post(t, srv, "/gateway/service/refund.vsp", url.Values{
		"TxType":         {"REFUND"},
		"VendorTxCode":   {"code-9"},
		"Amount":         {"1.00"},
		"Currency":       {"GBP"},
		"RelatedVPSTxId": {"{NOPE}"},
	})
	require.Equal(t, gateway.StatusInvalid, resp.Status)
}
