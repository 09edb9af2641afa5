package gateway

import "strings"

// Sage Pay card type codes.
const (
	CardTypeVisa         = "VISA"
	CardTypeVisaElectron = "UKE"
	CardTypeMastercard   = "MC"
	CardTypeMaestro      = "MAESTRO"
	CardTypeAmex         = "AMEX"
	CardTypeDinersClub   = "DC"
	CardTypeLaser        = "LASER"
	CardTypeJCB          = "JCB"
)

// CardType derives the Sage Pay card type code from a card number. Returns
// "" when the number is not recognised; the gateway then applies its own
// detection.
func CardType(number string) string {
	n := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if n == "" {
		return ""
	}

	switch {
	case matchPrefix(n, "4026", "417500", "4508", "4844", "4913", "4917"):
		return CardTypeVisaElectron
	case matchPrefix(n, "6304", "6759", "6761", "6762", "6763", "5018", "5020", "5038"):
		return CardTypeMaestro
	case matchPrefix(n, "6304", "6706", "6771", "6709"):
		return CardTypeLaser
	case matchPrefix(n, "34", "37"):
		return CardTypeAmex
	case matchPrefix(n, "300", "301", "302", "303", "304", "305", "36", "38"):
		return CardTypeDinersClub
	case matchPrefix(n, "35"):
		return CardTypeJCB
	case matchPrefix(n, "51", "52", "53", "54", "55"):
		return CardTypeMastercard
	case matchPrefix(n, "4"):
		return CardTypeVisa
	}
	return ""
}

func matchPrefix(number string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(number, p) {
			return true
		}
	}
	return false
}
