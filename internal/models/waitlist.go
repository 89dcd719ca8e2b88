package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitlistEntry is one captured signup. Rows are immutable after creation:
// the service exposes no update or delete path for them.
type WaitlistEntry struct {
	ID              string    `gorm:"type:text;primaryKey" json:"id"`
	Email           string    `gorm:"not null;uniqueIndex" json:"email"`
	Role            string    `gorm:"not null" json:"role"`
	FullName        string    `json:"full_name"`
	Company         string    `json:"company"`
	MonthlyListings string    `json:"monthly_listings"`
	YearsExperience string    `json:"years_experience"`
	HowHeard        string    `json:"how_heard"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist"
}

func (e *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
