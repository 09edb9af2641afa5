// Package sagepay maps e-commerce domain objects (amounts, bankcards,
// addresses) onto Sage Pay VSP Direct gateway operations and keeps an audit
// record of every request/response pair.
//
// Every operation is one synchronous round trip: flatten the domain inputs,
// record the redacted request, perform the network call, record the
// response, then either return the gateway transaction id or fail with one
// of two error kinds: *PaymentError for transport/protocol faults and
// *UnableToTakePayment for business declines. The facade does not enforce
// purchase workflow legality; sequencing is the caller's concern.
package sagepay

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/alovak/sagepay/audit"
	"github.com/alovak/sagepay/gateway"
)

// Facade ties a gateway client to an audit store.
type Facade struct {
	gateway *gateway.Client
	audit   audit.Store
	logger  *slog.Logger
}

// New builds a Facade.
func New(gw *gateway.Client, store audit.Store, logger *slog.Logger) *Facade {
	return &Facade{
		gateway: gw,
		audit:   store,
		logger:  logger.With(slog.String("component", "sagepay")),
	}
}

// Authenticate places an authorization hold for amount against the card
// without capturing funds. Shipping and billing addresses are optional as
// whole groups. Returns the gateway transaction id on success.
func (f *Facade) Authenticate(ctx context.Context, amount Amount, card Bankcard, shipping, billing *Address, description string) (string, error) {
	return f.direct(ctx, gateway.TxAuthenticate, amount, card, shipping, billing, description)
}

// Payment is a one-step purchase: authorization and capture in a single
// gateway call.
func (f *Facade) Payment(ctx context.Context, amount Amount, card Bankcard, shipping, billing *Address, description string) (string, error) {
	return f.direct(ctx, gateway.TxPayment, amount, card, shipping, billing, description)
}

func (f *Facade) direct(ctx context.Context, tx gateway.TxType, amount Amount, card Bankcard, shipping, billing *Address, description string) (string, error) {
	gwCard, err := card.gatewayCard()
	if err != nil {
		return "", err
	}

	code := f.gateway.NewVendorTxCode("")
	params := f.gateway.Direct(tx, code, gateway.DirectTxn{
		Amount:      amount.String(),
		Currency:    amount.Currency,
		Description: description,
		Card:        gwCard,
		Billing:     billing.contact(),
		Delivery:    shipping.contact(),
	})

	return f.exchange(ctx, code, params)
}

// Authorise captures funds previously authenticated under txID, in full or
// in part. Multiple partial authorisations are permitted; the gateway, not
// this client, enforces the ceiling and declines anything above it.
func (f *Facade) Authorise(ctx context.Context, txID string, amount Amount, description string) (string, error) {
	prior, err := f.audit.FindByTxID(ctx, txID)
	if err != nil {
		return "", fmt.Errorf("resolving transaction %s: %w", txID, err)
	}

	code := f.gateway.NewVendorTxCode("")
	params := f.gateway.Related(gateway.TxAuthorise, code, prior.RelatedTxn(),
		amount.String(), f.currencyOr(amount, prior), description)

	return f.exchange(ctx, code, params)
}

// Refund reverses a prior authorise identified by txID. A zero amount
// refunds the full recorded amount.
func (f *Facade) Refund(ctx context.Context, txID string, amount Amount, description string) (string, error) {
	prior, err := f.audit.FindByTxID(ctx, txID)
	if err != nil {
		return "", fmt.Errorf("resolving transaction %s: %w", txID, err)
	}

	amt := amount.String()
	currency := f.currencyOr(amount, prior)
	if amount.Value == 0 {
		amt = prior.Amount
		currency = prior.Currency
	}

	code := f.gateway.NewVendorTxCode("")
	params := f.gateway.Related(gateway.TxRefund, code, prior.RelatedTxn(), amt, currency, description)

	return f.exchange(ctx, code, params)
}

// Void cancels an authorised transaction before it settles.
func (f *Facade) Void(ctx context.Context, txID string) (string, error) {
	prior, err := f.audit.FindByTxID(ctx, txID)
	if err != nil {
		return "", fmt.Errorf("resolving transaction %s: %w", txID, err)
	}

	code := f.gateway.NewVendorTxCode("")
	params := f.gateway.VoidParams(code, prior.RelatedTxn())

	return f.exchange(ctx, code, params)
}

// Repeat charges a previous transaction again for amount.
func (f *Facade) Repeat(ctx context.Context, txID string, amount Amount, description string) (string, error) {
	prior, err := f.audit.FindByTxID(ctx, txID)
	if err != nil {
		return "", fmt.Errorf("resolving transaction %s: %w", txID, err)
	}

	code := f.gateway.NewVendorTxCode("")
	params := f.gateway.Related(gateway.TxRepeat, code, prior.RelatedTxn(),
		amount.String(), f.currencyOr(amount, prior), description)

	return f.exchange(ctx, code, params)
}

// exchange runs the record-request / network-call / record-response cycle
// and translates the outcome. Audit integrity failures (duplicate code,
// missing record, double response write) indicate bugs and propagate
// unmasked; they are never reported as payment failures.
func (f *Facade) exchange(ctx context.Context, code string, params gateway.Params) (string, error) {
	if _, err := f.audit.RecordRequest(ctx, code, params); err != nil {
		return "", fmt.Errorf("recording request %s: %w", code, err)
	}

	resp, err := f.gateway.Do(ctx, params)
	if err != nil {
		// The record legitimately stays request-only: there is no
		// response to store after a transport failure.
		var gwErr *gateway.GatewayError
		if errors.As(err, &gwErr) {
			return "", &PaymentError{Message: gwErr.Message, Err: gwErr}
		}
		return "", err
	}

	if err := f.audit.RecordResponse(ctx, code, resp); err != nil {
		return "", fmt.Errorf("recording response %s: %w", code, err)
	}

	if !resp.Successful() {
		f.logger.Info("gateway declined transaction",
			slog.String("vendor_tx_code", code),
			slog.String("status", resp.Status))
		return "", &UnableToTakePayment{Detail: resp.StatusDetail}
	}

	return resp.TxID, nil
}

func (f *Facade) currencyOr(amount Amount, prior *audit.TransactionRecord) string {
	if amount.Currency != "" {
		return amount.Currency
	}
	return prior.Currency
}
