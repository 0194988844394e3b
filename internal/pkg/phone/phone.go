// Package phone normalizes user-supplied phone numbers so that uniqueness is
// enforced on the number itself rather than on its formatting.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const DefaultRegion = "US"

var ErrInvalidNumber = errors.New("invalid phone number")

// Normalize parses raw in the context of region and returns it in E.164
// form (e.g. "+15551234567"). Numbers written with a leading "+" ignore the
// region.
func Normalize(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidNumber
	}
	if region == "" {
		region = DefaultRegion
	}

	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return "", ErrInvalidNumber
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
