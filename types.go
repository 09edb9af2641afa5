package sagepay

import (
	"fmt"

	"github.com/alovak/sagepay/gateway"
	"github.com/alovak/sagepay/internal/expiry"
)

// Amount is a monetary value in minor units (pence, cents) with its ISO 4217
// currency code.
type Amount struct {
	Value    int64
	Currency string
}

// String formats the amount with two fraction digits, the form the gateway
// expects on the wire.
func (a Amount) String() string {
	return fmt.Sprintf("%d.%02d", a.Value/100, a.Value%100)
}

// Bankcard is the card a purchase is made against. Expiry accepts "MM/YY" or
// "MMYY". Card fields are sent to the gateway but never persisted.
type Bankcard struct {
	Name   string
	Number string
	Expiry string
	CV2    string
}

func (b Bankcard) gatewayCard() (gateway.Card, error) {
	mmyy, err := expiry.Normalize(b.Expiry)
	if err != nil {
		return gateway.Card{}, fmt.Errorf("bankcard expiry: %w", err)
	}
	return gateway.Card{
		Holder: b.Name,
		Number: b.Number,
		Expiry: mmyy,
		CV2:    b.CV2,
	}, nil
}

// Address is a billing or delivery address. When passed to an operation the
// whole group is sent; a nil address sends none of its fields.
type Address struct {
	Surname     string
	FirstNames  string
	Line1       string
	Line2       string
	City        string
	Postcode    string
	CountryCode string
	State       string
	Phone       string
}

func (a *Address) contact() *gateway.ContactDetails {
	if a == nil {
		return nil
	}
	return &gateway.ContactDetails{
		Surname:    a.Surname,
		FirstNames: a.FirstNames,
		Address1:   a.Line1,
		Address2:   a.Line2,
		City:       a.City,
		Postcode:   a.Postcode,
		Country:    a.CountryCode,
		State:      a.State,
		Phone:      a.Phone,
	}
}
