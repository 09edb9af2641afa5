// Package expiry handles bankcard expiry dates. Sage Pay expects the
// ExpiryDate request field as four digits, MMYY.
package expiry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Normalize accepts an expiry as it appears on a card face ("MM/YY" or
// "MMYY") and returns the MMYY form used on the wire.
func Normalize(in string) (string, error) {
	s := strings.TrimSpace(in)
	s = strings.ReplaceAll(s, "/", "")
	if err := Validate(s); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks that mmyy is four digits with a month in 01..12.
func Validate(mmyy string) error {
	if len(mmyy) != 4 {
		return fmt.Errorf("expiry must be MM/YY or MMYY")
	}
	for i := 0; i < 4; i++ {
		if mmyy[i] < '0' || mmyy[i] > '9' {
			return fmt.Errorf("expiry must be digits")
		}
	}
	mm, _ := strconv.Atoi(mmyy[:2])
	if mm < 1 || mm > 12 {
		return fmt.Errorf("expiry month must be 01..12")
	}
	return nil
}

// endOfMonth returns the last instant of the MMYY month in loc.
func endOfMonth(mmyy string, loc *time.Location) (time.Time, error) {
	if err := Validate(mmyy); err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	mm, _ := strconv.Atoi(mmyy[:2])
	yy, _ := strconv.Atoi(mmyy[2:])
	firstNext := time.Date(2000+yy, time.Month(mm), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
	return firstNext.Add(-time.Nanosecond), nil
}

// IsExpired reports whether 'at' falls strictly after the end of the card's
// expiry month. Cards remain valid through the last day of that month.
func IsExpired(mmyy string, at time.Time) (bool, error) {
	end, err := endOfMonth(mmyy, time.UTC)
	if err != nil {
		return false, err
	}
	return at.After(end), nil
}
