package gateway

import (
	"strings"

	"github.com/alovak/sagepay/internal/clean"
)

// Card carries the bankcard fields of a direct transaction. Expiry is MMYY.
type Card struct {
	Holder string
	Number string
	Expiry string
	CV2    string
}

// ContactDetails is one address group (billing or delivery). A group is sent
// as a whole or not at all.
type ContactDetails struct {
	Surname    string
	FirstNames string
	Address1   string
	Address2   string
	City       string
	Postcode   string
	Country    string
	State      string
	Phone      string
}

// RelatedTxn identifies a previous transaction that a follow-up operation
// (authorise, refund, void, repeat) acts upon.
type RelatedTxn struct {
	VendorTxCode string
	TxID         string
	TxAuthNum    string
	SecurityKey  string
}

// DirectTxn is a registration request: PAYMENT, DEFERRED or AUTHENTICATE.
type DirectTxn struct {
	Amount      string
	Currency    string
	Description string
	Card        Card
	Billing     *ContactDetails
	Delivery    *ContactDetails

	CustomerEmail string
	Basket        string
	CreateToken   bool
}

// Direct builds the parameter set for a registration transaction.
func (c *Client) Direct(tx TxType, code string, t DirectTxn) Params {
	p := c.base(tx, code)

	p["Amount"] = t.Amount
	p["Currency"] = t.Currency
	p["Description"] = clean.Truncate(t.Description, 100)

	p["CardType"] = CardType(t.Card.Number)
	p["CardNumber"] = t.Card.Number
	p["CardHolder"] = t.Card.Holder
	p["ExpiryDate"] = t.Card.Expiry
	p["CV2"] = t.Card.CV2
	p["ApplyAVSCV2"] = c.cfg.ApplyAVSCV2

	addContact(p, "Billing", t.Billing)
	addContact(p, "Delivery", t.Delivery)

	if t.CustomerEmail != "" {
		p["CustomerEMail"] = t.CustomerEmail
	}
	if t.Basket != "" {
		p["Basket"] = t.Basket
	}
	if t.CreateToken {
		p["CreateToken"] = "1"
		p["StoreToken"] = "1"
	}
	return p
}

// Related builds the parameter set for AUTHORISE, REFUND or REPEAT, all of
// which reference a prior transaction via Related* fields.
func (c *Client) Related(tx TxType, code string, prev RelatedTxn, amount, currency, description string) Params {
	p := c.base(tx, code)

	p["Amount"] = amount
	p["Currency"] = currency
	p["Description"] = clean.Truncate(description, 100)
	p["RelatedVPSTxId"] = prev.TxID
	p["RelatedVendorTxCode"] = prev.VendorTxCode
	p["RelatedTxAuthNo"] = prev.TxAuthNum
	p["RelatedSecurityKey"] = prev.SecurityKey
	if tx == TxAuthorise {
		p["ApplyAVSCV2"] = c.cfg.ApplyAVSCV2
	}
	return p
}

// Void builds the parameter set for VOID. The wire identifies the original
// transaction by its own VendorTxCode; the fresh code is used only as the
// audit key for this attempt.
func (c *Client) VoidParams(code string, prev RelatedTxn) Params {
	p := c.base(TxVoid, code)

	p["VPSTxId"] = prev.TxID
	p["VendorTxCode"] = prev.VendorTxCode
	p["TxAuthNo"] = prev.TxAuthNum
	p["SecurityKey"] = prev.SecurityKey
	return p
}

func (c *Client) base(tx TxType, code string) Params {
	return Params{
		"VPSProtocol":  c.cfg.Protocol,
		"Vendor":       c.cfg.Vendor,
		"TxType":       string(tx),
		"VendorTxCode": code,
	}
}

// addContact flattens one address group into prefixed fields, applying Sage
// Pay's cleaning rules and length limits. State is only meaningful for US
// addresses and is cleared for every other country.
func addContact(p Params, prefix string, d *ContactDetails) {
	if d == nil {
		return
	}
	state := d.State
	if !strings.EqualFold(d.Country, "US") {
		state = ""
	}
	p[prefix+"Surname"] = clean.Truncate(clean.Name(d.Surname), 20)
	p[prefix+"Firstnames"] = clean.Truncate(clean.Name(d.FirstNames), 20)
	p[prefix+"Address1"] = clean.Truncate(clean.Address(d.Address1), 100)
	p[prefix+"Address2"] = clean.Truncate(clean.Address(d.Address2), 100)
	p[prefix+"City"] = clean.Truncate(clean.Address(d.City), 40)
	p[prefix+"PostCode"] = clean.Truncate(clean.Postcode(d.Postcode), 10)
	p[prefix+"Country"] = clean.Truncate(d.Country, 2)
	p[prefix+"State"] = clean.Truncate(state, 2)
	p[prefix+"Phone"] = clean.Truncate(clean.Phone(d.Phone), 20)
}
