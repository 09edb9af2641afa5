// Package clean applies Sage Pay's field validation rules to free-text
// request values. The gateway rejects requests containing characters outside
// each field's permitted set, so values are scrubbed before building params.
package clean

import "regexp"

var (
	invalidName     = regexp.MustCompile(`[^\w &\-.',0-9]`)
	invalidAddress  = regexp.MustCompile(`[^\w &\-.',0-9]`)
	invalidPostcode = regexp.MustCompile(`[^\-\w 0-9]`)
	invalidPhone    = regexp.MustCompile(`[^0-9\-A-Z+ ()]`)
)

// Name strips characters Sage Pay does not accept in name fields.
func Name(in string) string {
	return invalidName.ReplaceAllString(in, "")
}

// Address strips characters Sage Pay does not accept in address fields.
// Newlines are stripped even though the gateway permits them.
func Address(in string) string {
	return invalidAddress.ReplaceAllString(in, "")
}

// Postcode strips characters Sage Pay does not accept in postcode fields.
func Postcode(in string) string {
	return invalidPostcode.ReplaceAllString(in, "")
}

// Phone strips characters Sage Pay does not accept in phone fields.
func Phone(in string) string {
	return invalidPhone.ReplaceAllString(in, "")
}

// Truncate limits s to max bytes, the field lengths Sage Pay enforces.
func Truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
