package util

import (
	"errors"
	"regexp"
	"strings"
)

// MinPhoneDigits is the shortest canonical phone accepted as a real number.
const MinPhoneDigits = 10

var ErrInvalidPhone = errors.New("invalid phone number")

var nonDigits = regexp.MustCompile(`\D+`)

// NormalizePhone turns user input into a digit-only number prefixed with countryCode.
// A leading trunk "0" is replaced by the country code.
func NormalizePhone(raw, countryCode string) string {
	s := nonDigits.ReplaceAllString(strings.TrimSpace(raw), "")

	if strings.HasPrefix(s, "0") {
		s = countryCode + s[1:]
	}
	if !strings.HasPrefix(s, countryCode) {
		s = countryCode + s
	}

	return s
}

// CanonicalPhone is NormalizePhone that rejects results too short to be a phone number.
func CanonicalPhone(raw, countryCode string) (string, error) {
	s := NormalizePhone(raw, countryCode)
	if len(s) < MinPhoneDigits {
		return "", ErrInvalidPhone
	}
	return s, nil
}
