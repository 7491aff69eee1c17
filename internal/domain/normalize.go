package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// NormalizeLocation title-cases every part of a location so that lookups and
// the uniqueness constraint are case-insensitive.
func NormalizeLocation(ref LocationRef) LocationRef {
	return LocationRef{
		Country: normalizeWord(ref.Country),
		City:    normalizeWord(ref.City),
		Airport: normalizeWord(ref.Airport),
	}
}

func normalizeWord(s string) string {
	return titleCaser.String(strings.Join(strings.Fields(s), " "))
}

func NormalizeFlightName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func NormalizeSeatLetter(letter string) string {
	return strings.ToUpper(strings.TrimSpace(letter))
}

func NormalizeClassGroup(class string) string {
	class = normalizeWord(class)
	if class == "" {
		return DefaultClassGroup
	}
	return class
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
