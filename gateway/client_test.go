package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func clientFor(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig("testvendor")
	cfg.Endpoints = Endpoints{
		Register:  srv.URL,
		Authorise: srv.URL,
		Refund:    srv.URL,
		Void:      srv.URL,
		Repeat:    srv.URL,
	}

	c := NewClient(cfg, slog.Default(), nil)
	c.SetMetrics(NewMetrics(prometheus.NewRegistry()))
	return c, srv
}

func TestDoSuccess(t *testing.T) {
	var gotForm map[string][]string
	c, _ := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = r.PostForm
		w.Write([]byte("Status=OK\r\nStatusDetail=ok\r\nVPSTxId={T1}\r\nSecurityKey=K\r\nTxAuthNo=77\r\n"))
	})

	params := c.Direct(TxAuthenticate, "oscar-1", DirectTxn{
		Amount:   "10.00",
		Currency: "GBP",
		Card:     Card{Number: "4111111111111111", Expiry: "0527", CV2: "123"},
	})

	resp, err := c.Authenticate(context.Background(), params)
	require.NoError(t, err)
	require.True(t, resp.Successful())
	require.Equal(t, "{T1}", resp.TxID)
	require.Equal(t, "77", resp.TxAuthNum)
	require.Equal(t, "K", resp.SecurityKey)

	// The request goes out form-encoded with the full field set.
	require.Equal(t, []string{"AUTHENTICATE"}, gotForm["TxType"])
	require.Equal(t, []string{"4111111111111111"}, gotForm["CardNumber"])
}

func TestDoDeclineIsNotAnError(t *testing.T) {
	c, _ := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Status=NOTAUTHED\r\nStatusDetail=Card declined by the bank.\r\n"))
	})

	resp, err := c.Do(context.Background(), Params{"TxType": "AUTHENTICATE", "VendorTxCode": "oscar-1"})
	require.NoError(t, err)
	require.False(t, resp.Successful())
	require.Equal(t, "Card declined by the bank.", resp.StatusDetail)
}

func TestDoHTTPErrorStatus(t *testing.T) {
	c, _ := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Do(context.Background(), Params{"TxType": "AUTHENTICATE", "VendorTxCode": "oscar-1"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Contains(t, gwErr.Error(), "500")
}

func TestDoTransportFailure(t *testing.T) {
	c, srv := clientFor(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.Do(context.Background(), Params{"TxType": "AUTHENTICATE", "VendorTxCode": "oscar-1"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
}

func TestDoMalformedReply(t *testing.T) {
	c, _ := clientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not a VSP reply</html>"))
	})

	_, err := c.Do(context.Background(), Params{"TxType": "AUTHENTICATE", "VendorTxCode": "oscar-1"})

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
}

func TestEndpointsURL(t *testing.T) {
	e := TestEndpoints()

	require.Equal(t, e.Register, e.URL(TxPayment))
	require.Equal(t, e.Register, e.URL(TxDeferred))
	require.Equal(t, e.Register, e.URL(TxAuthenticate))
	require.Equal(t, e.Authorise, e.URL(TxAuthorise))
	require.Equal(t, e.Refund, e.URL(TxRefund))
	require.Equal(t, e.Void, e.URL(TxVoid))
	require.Equal(t, e.Repeat, e.URL(TxRepeat))
}
