package booking

import "strings"

// NormalizePhone converts a customer phone number to the international form
// stored on bookings and used by the SMS gateway.  Ten local digits get the
// country code prefixed; a number already starting with '+' and carrying
// more than ten digits is kept as typed.  Anything else yields "".
func NormalizePhone(raw, countryCode string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 10:
		return countryCode + digits
	case len(digits) > 10 && strings.HasPrefix(raw, "+"):
		return raw
	}
	return ""
}
