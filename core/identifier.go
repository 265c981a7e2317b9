package core

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// NormalizeIdentifier canonicalizes a phone number or email so the same
// recipient always maps to the same session key. Emails are lowercased;
// phone numbers are stripped of separators and prefixed with the default
// country code when no country code is present.
func NormalizeIdentifier(identifier, defaultCountryCode string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", ErrInvalidIdentifier
	}

	if strings.Contains(identifier, "@") {
		return strings.ToLower(identifier), nil
	}

	phone := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(identifier)
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidIdentifier
	}
	if !strings.HasPrefix(phone, "+") {
		phone = defaultCountryCode + phone
	}
	return phone, nil
}
