package waitlist

import (
	"strings"

	"github.com/Nathankoth/waitlist-main-second/internal/models"
	"github.com/Nathankoth/waitlist-main-second/pkg/constants"
)

// JoinWaitlistRequest is the raw form payload. Field-level semantics (email
// shape, enum membership) are enforced by Rules.Validate; binding tags only
// bound payload sizes so oversized input is rejected before validation runs.
type JoinWaitlistRequest struct {
	Email           string `json:"email" binding:"omitempty,max=255"`
	Role            string `json:"role" binding:"omitempty,max=64"`
	FullName        string `json:"full_name" binding:"omitempty,max=255"`
	Company         string `json:"company" binding:"omitempty,max=255"`
	MonthlyListings string `json:"monthly_listings" binding:"omitempty,max=64"`
	YearsExperience string `json:"years_experience" binding:"omitempty,max=64"`
	HowHeard        string `json:"how_heard" binding:"omitempty,max=500"`
}

type WaitlistEntryResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	FullName        string `json:"full_name,omitempty"`
	Company         string `json:"company,omitempty"`
	MonthlyListings string `json:"monthly_listings,omitempty"`
	YearsExperience string `json:"years_experience,omitempty"`
	HowHeard        string `json:"how_heard,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// ========================================
// Mappers
// ========================================

// ToWaitlistEntryModel normalizes the request into a persistable entry.
// Normalization here is a convenience for callers; the repository re-applies
// it and is the authority.
func ToWaitlistEntryModel(req *JoinWaitlistRequest) *models.WaitlistEntry {
	if req == nil {
		return nil
	}
	return &models.WaitlistEntry{
		Email:           NormalizeEmail(req.Email),
		Role:            NormalizeRole(req.Role),
		FullName:        strings.TrimSpace(req.FullName),
		Company:         strings.TrimSpace(req.Company),
		MonthlyListings: req.MonthlyListings,
		YearsExperience: req.YearsExperience,
		HowHeard:        strings.TrimSpace(req.HowHeard),
	}
}

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		ID:              entry.ID,
		Email:           entry.Email,
		Role:            entry.Role,
		FullName:        entry.FullName,
		Company:         entry.Company,
		MonthlyListings: entry.MonthlyListings,
		YearsExperience: entry.YearsExperience,
		HowHeard:        entry.HowHeard,
		CreatedAt:       entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
	}
}
