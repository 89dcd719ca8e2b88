package waitlist

import (
	"regexp"
	"strings"
)

// Validation messages mirror the public API contract; the HTTP layer joins
// them with ", " into a single error string.
const (
	MsgInvalidEmail           = "Invalid email address"
	MsgRoleRequired           = "Role is required"
	MsgInvalidRole            = "Invalid role"
	MsgInvalidMonthlyListings = "Invalid monthly listings value"
	MsgInvalidYearsExperience = "Invalid years of experience value"
)

// emailPattern is intentionally permissive: one "@", at least one "." in the
// domain part, no whitespace. It is a syntactic gate, not RFC 5322.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks a raw submission against the configured rules and returns
// every violation, not just the first. Pure function: no I/O, no mutation of
// the request.
func (r Rules) Validate(req *JoinWaitlistRequest) []string {
	var errs []string

	email := strings.TrimSpace(req.Email)
	if email == "" || !emailPattern.MatchString(email) {
		errs = append(errs, MsgInvalidEmail)
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		errs = append(errs, MsgRoleRequired)
	} else if !r.isValidRole(strings.ToLower(role)) {
		errs = append(errs, MsgInvalidRole)
	}

	if req.MonthlyListings != "" && !r.isValidMonthlyListings(req.MonthlyListings) {
		errs = append(errs, MsgInvalidMonthlyListings)
	}

	if req.YearsExperience != "" && !r.isValidYearsExperience(req.YearsExperience) {
		errs = append(errs, MsgInvalidYearsExperience)
	}

	return errs
}

// NormalizeEmail lowercases and trims an address so that two semantically
// equal inputs are byte-identical before comparison or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeRole lowercases and trims a role label.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
