// Package gateway implements a client for the Sage Pay VSP Direct protocol:
// form-encoded requests over HTTPS, answered with a CRLF-separated
// Key=Value body. The server answers HTTP 200 even for declines; anything
// else is a protocol fault.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

// Client issues typed operations against the remote gateway. It is safe for
// concurrent use.
type Client struct {
	cfg     *Config
	http    *http.Client
	logger  *slog.Logger
	metrics *Metrics
}

// NewClient builds a gateway client. A nil http.Client gets a default with
// the configured timeout.
func NewClient(cfg *Config, logger *slog.Logger, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Client{
		cfg:    cfg,
		http:   hc,
		logger: logger.With(slog.String("component", "gateway")),
	}
}

// SetMetrics attaches request metrics to the client. Metrics are optional.
func (c *Client) SetMetrics(m *Metrics) {
	c.metrics = m
}

// Config returns the client configuration.
func (c *Client) Config() *Config {
	return c.cfg
}

// NewVendorTxCode generates a fresh vendor transaction code under the
// configured prefix.
func (c *Client) NewVendorTxCode(reference string) string {
	return NewVendorTxCode(c.cfg.TxCodePrefix, reference)
}

// Do performs one network exchange: the params are form-encoded and POSTed
// to the endpoint for their TxType, and the reply is decoded into a
// Response. A *GatewayError means the exchange failed at the transport or
// protocol level; a decline comes back as a Response.
func (c *Client) Do(ctx context.Context, params Params) (*Response, error) {
	tx := TxType(params["TxType"])
	code := params["VendorTxCode"]
	target := c.cfg.Endpoints.URL(tx)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	c.logger.Info("making gateway request",
		slog.String("vendor_tx_code", code),
		slog.String("tx_type", string(tx)),
		slog.String("url", target))

	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &GatewayError{Message: fmt.Sprintf("building request for %s", target), Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(tx, "transport_error", time.Since(started))
		c.logger.Error("gateway connection error",
			slog.String("vendor_tx_code", code), slog.Any("err", err))
		return nil, &GatewayError{Message: "HTTP error", Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.metrics.observe(tx, "transport_error", time.Since(started))
		return nil, &GatewayError{Message: "reading gateway response", Err: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		c.metrics.observe(tx, "http_error", time.Since(started))
		c.logger.Error("gateway response error",
			slog.String("vendor_tx_code", code),
			slog.Int("http_status", httpResp.StatusCode))
		return nil, &GatewayError{Message: fmt.Sprintf(
			"gateway returned a %d response with content %s", httpResp.StatusCode, body)}
	}

	resp := ParseResponse(string(body))
	if resp.Status == "" {
		c.metrics.observe(tx, "malformed_reply", time.Since(started))
		return nil, &GatewayError{Message: fmt.Sprintf("gateway reply carries no status: %q", body)}
	}

	c.metrics.observe(tx, resp.Status, time.Since(started))
	c.logger.Info("gateway response",
		slog.String("vendor_tx_code", code),
		slog.String("status", resp.Status),
		slog.String("status_detail", resp.StatusDetail))

	return resp, nil
}

// Payment performs a one-step purchase.
func (c *Client) Payment(ctx context.Context, params Params) (*Response, error) {
	return c.Do(ctx, params)
}

// Deferred places funds on hold for a later release.
func (c *Client) Deferred(ctx context.Context, params Params) (*Response, error) {
	return c.Do(ctx, params)
}

// Authenticate establishes an authorization hold without capturing funds.
func (c *Client) Authenticate(ctx context.Context, params Params) (*Response, error) {
	return c.Do(ctx, params)
}

// Authorise captures previously authenticated funds, fully or partially.
func (c *Client) Authorise(ctx context.Context, params Params) (*Response, error) {
	return c.Do(ctx, params)
}

// Refund reverses a prior authorise, fully or partially.
func (c *Client) Refund(ctx context.Context, params Params) (*Response, error) {
	return c.Do(ctx, params)
}

// Void cancels an authorised transaction before settlement.
func (c *Client) Void(ctx context.Context, params Params) (*Response, error) {
	return c.Do(ctx, params)
}

// Repeat charges a previous transaction again.
func (c *Client) Repeat(ctx context.Context, params Params) (*Response, error) {
	return c.Do(ctx, params)
}
