package waitlist

import (
	"fmt"
	"strings"
)

// Canonical form configuration. The marketing site shipped several drifted
// variants of the same form; these defaults are the authoritative set, and
// deployments can override the enumerations through WAITLIST_* env vars.
var (
	DefaultRoles = []string{
		"realtor",
		"investor",
		"architect",
		"surveyor",
		"homebuyer",
		"homeowner",
		"lawyer",
		"other",
	}

	// Band labels are matched byte-for-byte, en dash included.
	DefaultMonthlyListingBands = []string{
		"0–5 listings",
		"5–10 listings",
		"10–20 listings",
		"20–40 listings",
		"40+ listings",
	}

	DefaultYearsExperienceBands = []string{
		"0–2 years",
		"2–5 years",
		"5–10 years",
		"10+ years",
	}
)

// Rules holds the enumerations a submission is validated against. A Rules
// value is built once at startup and injected into the service; it is never
// mutated afterwards.
type Rules struct {
	Roles                []string
	MonthlyListingBands  []string
	YearsExperienceBands []string
}

func DefaultRules() Rules {
	return Rules{
		Roles:                DefaultRoles,
		MonthlyListingBands:  DefaultMonthlyListingBands,
		YearsExperienceBands: DefaultYearsExperienceBands,
	}
}

// ValidateConfig checks a Rules value for configuration mistakes. Called
// once during process initialization so a bad override fails the boot, not
// a request.
func (r Rules) ValidateConfig() error {
	if len(r.Roles) == 0 {
		return fmt.Errorf("waitlist rules: role enumeration is empty")
	}
	for _, role := range r.Roles {
		if role != strings.ToLower(strings.TrimSpace(role)) {
			return fmt.Errorf("waitlist rules: role %q must be lowercase and trimmed", role)
		}
	}
	if err := checkBands("monthly listings", r.MonthlyListingBands); err != nil {
		return err
	}
	return checkBands("years of experience", r.YearsExperienceBands)
}

func checkBands(name string, bands []string) error {
	if len(bands) == 0 {
		return fmt.Errorf("waitlist rules: %s enumeration is empty", name)
	}
	seen := make(map[string]struct{}, len(bands))
	for _, b := range bands {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("waitlist rules: %s enumeration contains a blank label", name)
		}
		if _, dup := seen[b]; dup {
			return fmt.Errorf("waitlist rules: %s enumeration contains duplicate label %q", name, b)
		}
		seen[b] = struct{}{}
	}
	return nil
}

func (r Rules) isValidRole(role string) bool {
	for _, v := range r.Roles {
		if v == role {
			return true
		}
	}
	return false
}

func (r Rules) isValidMonthlyListings(band string) bool {
	return containsExact(r.MonthlyListingBands, band)
}

func (r Rules) isValidYearsExperience(band string) bool {
	return containsExact(r.YearsExperienceBands, band)
}

// containsExact is a byte-for-byte membership check. Band labels use an
// en dash, so no unicode folding or whitespace normalization is applied.
func containsExact(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
