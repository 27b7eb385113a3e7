package domain

import "regexp"

// licenseAllowed is the compliance allow-pattern for third-party candidates.
// Accepted, case-insensitively and tolerant of punctuation and spacing:
// public domain, CC0, any numbered CC-BY / CC-BY-SA variant, and the
// spelled-out Creative Commons Attribution(-ShareAlike) phrase.
var licenseAllowed = regexp.MustCompile(
	`(?i)\b(public\s*domain|cc[-\s]?(?:by(?:[-\s]?sa)?|0)(?:[-\s]?\d(?:\.\d)?)?|creative\s+commons\s+attribution(?:[-\s]sharealike)?)\b`,
)

// LicenseAllowed reports whether a raw license string passes the
// allow-pattern. Empty strings fail closed.
func LicenseAllowed(license string) bool {
	if license == "" {
		return false
	}
	return licenseAllowed.MatchString(license)
}
