package waitlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_EmailShapes(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		name  string
		email string
		valid bool
	}{
		{"plain address", "user@example.com", true},
		{"subdomain", "user@mail.example.co.uk", true},
		{"plus tag", "user+tag@example.com", true},
		{"surrounding whitespace is trimmed", "  user@example.com  ", true},
		{"empty", "", false},
		{"missing at sign", "userexample.com", false},
		{"missing domain dot", "user@example", false},
		{"space inside", "us er@example.com", false},
		{"double at sign", "user@@example.com", false},
		{"trailing dot only", "user@example.", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := rules.Validate(&JoinWaitlistRequest{Email: tc.email, Role: "realtor"})
			if tc.valid {
				assert.Empty(t, errs)
			} else {
				assert.Equal(t, []string{MsgInvalidEmail}, errs)
			}
		})
	}
}

func TestValidate_Roles(t *testing.T) {
	rules := DefaultRules()

	for _, role := range DefaultRoles {
		errs := rules.Validate(&JoinWaitlistRequest{Email: "a@b.co", Role: role})
		assert.Empty(t, errs, "role %q should be accepted", role)
	}

	// Membership is case-insensitive; labels are normalized before lookup.
	errs := rules.Validate(&JoinWaitlistRequest{Email: "a@b.co", Role: "Realtor"})
	assert.Empty(t, errs)

	errs = rules.Validate(&JoinWaitlistRequest{Email: "a@b.co", Role: ""})
	assert.Equal(t, []string{MsgRoleRequired}, errs)

	errs = rules.Validate(&JoinWaitlistRequest{Email: "a@b.co", Role: "pilot"})
	assert.Equal(t, []string{MsgInvalidRole}, errs)
}

func TestValidate_MonthlyListingBands(t *testing.T) {
	rules := DefaultRules()

	for _, band := range DefaultMonthlyListingBands {
		errs := rules.Validate(&JoinWaitlistRequest{
			Email:           "a@b.co",
			Role:            "realtor",
			MonthlyListings: band,
		})
		assert.Empty(t, errs, "band %q should be accepted", band)
	}

	// Band labels are compared byte-for-byte. The published labels use an
	// en dash, so the ASCII hyphen variant is rejected.
	errs := rules.Validate(&JoinWaitlistRequest{
		Email:           "a@b.co",
		Role:            "realtor",
		MonthlyListings: "0-5 listings",
	})
	assert.Equal(t, []string{MsgInvalidMonthlyListings}, errs)

	// Optional field: empty is fine.
	errs = rules.Validate(&JoinWaitlistRequest{Email: "a@b.co", Role: "realtor"})
	assert.Empty(t, errs)
}

func TestValidate_YearsExperienceBands(t *testing.T) {
	rules := DefaultRules()

	for _, band := range DefaultYearsExperienceBands {
		errs := rules.Validate(&JoinWaitlistRequest{
			Email:           "a@b.co",
			Role:            "architect",
			YearsExperience: band,
		})
		assert.Empty(t, errs, "band %q should be accepted", band)
	}

	errs := rules.Validate(&JoinWaitlistRequest{
		Email:           "a@b.co",
		Role:            "architect",
		YearsExperience: "decades",
	})
	assert.Equal(t, []string{MsgInvalidYearsExperience}, errs)
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	rules := DefaultRules()

	errs := rules.Validate(&JoinWaitlistRequest{
		Email:           "nope",
		Role:            "pilot",
		MonthlyListings: "hundreds",
		YearsExperience: "forever",
	})

	assert.Equal(t, []string{
		MsgInvalidEmail,
		MsgInvalidRole,
		MsgInvalidMonthlyListings,
		MsgInvalidYearsExperience,
	}, errs)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, "realtor", NormalizeRole(" Realtor "))
}

func TestRulesValidateConfig_ConfigurationMistakes(t *testing.T) {
	assert.NoError(t, DefaultRules().ValidateConfig())

	bad := DefaultRules()
	bad.Roles = nil
	assert.Error(t, bad.ValidateConfig())

	bad = DefaultRules()
	bad.Roles = []string{"Realtor"}
	assert.Error(t, bad.ValidateConfig(), "role labels must be stored lowercase")

	bad = DefaultRules()
	bad.MonthlyListingBands = []string{"0–5 listings", "0–5 listings"}
	assert.Error(t, bad.ValidateConfig(), "duplicate band labels are a config mistake")

	bad = DefaultRules()
	bad.YearsExperienceBands = []string{" "}
	assert.Error(t, bad.ValidateConfig())
}
