package gateway

import "strings"

// Response statuses returned by the gateway.
const (
	StatusOK            = "OK"
	StatusRegistered    = "REGISTERED"
	StatusAuthenticated = "AUTHENTICATED"
	StatusMalformed     = "MALFORMED"
	StatusInvalid       = "INVALID"
	StatusNotAuthed     = "NOTAUTHED"
	StatusRejected      = "REJECTED"
	StatusAbort         = "ABORT"
	StatusError         = "ERROR"
)

// Response is a decoded gateway reply. A well-formed decline (NOTAUTHED,
// REJECTED, ...) is still a Response, not an error; only transport and
// protocol faults are errors.
type Response struct {
	Status       string
	StatusDetail string
	TxID         string
	TxAuthNum    string
	SecurityKey  string
	// Raw is the reply body as received, for the audit trail.
	Raw string
}

// Successful reports whether the gateway accepted the transaction.
// Registration operations on the live gateway answer REGISTERED or
// AUTHENTICATED rather than OK.
func (r *Response) Successful() bool {
	switch r.Status {
	case StatusOK, StatusRegistered, StatusAuthenticated:
		return true
	}
	return false
}

// ParseResponse decodes the gateway's reply body: one Key=Value pair per
// CRLF-separated line.
func ParseResponse(body string) *Response {
	resp := &Response{Raw: body}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "Status":
			resp.Status = value
		case "StatusDetail":
			resp.StatusDetail = value
		case "VPSTxId":
			resp.TxID = value
		case "TxAuthNo":
			resp.TxAuthNum = value
		case "SecurityKey":
			resp.SecurityKey = value
		}
	}
	return resp
}
