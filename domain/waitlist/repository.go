package waitlist

import (
	"context"
	"errors"
	"strings"

	"github.com/Nathankoth/waitlist-main-second/internal/models"
	apperrors "github.com/Nathankoth/waitlist-main-second/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the Postgres SQLSTATE for a unique constraint conflict.
const pgUniqueViolation = "23505"

type WaitlistRepository interface {
	// CreateEntry persists exactly one entry and returns it with the
	// generated ID and CreatedAt. A uniqueness conflict on the email column
	// surfaces as a conflict-typed error, never a generic failure.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// FindEntryByID retrieves an entry by its unique ID.
	FindEntryByID(ctx context.Context, id string) (*models.WaitlistEntry, error)
	// GetAllEntries returns all entries, oldest first.
	GetAllEntries(ctx context.Context) ([]*models.WaitlistEntry, error)
	// CountEntries returns the total number of entries.
	CountEntries(ctx context.Context) (int64, error)
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if entry == nil {
		return nil, apperrors.NewInvalidRequestError("entry cannot be nil", nil)
	}

	// Callers are expected to have normalized already, but some entry points
	// bypass the validator, so the repository never trusts them.
	normalizeEntry(entry)

	if err := wr.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewConflictError("Email already registered", err)
		}
		return nil, apperrors.NewDatabaseError("unable to create waitlist entry", err)
	}

	return entry, nil
}

func (wr *waitlistRepository) FindEntryByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry

	if err := wr.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("waitlist entry not found", err)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch waitlist entry", err)
	}

	return &entry, nil
}

func (wr *waitlistRepository) GetAllEntries(ctx context.Context) ([]*models.WaitlistEntry, error) {
	var entries []*models.WaitlistEntry

	if err := wr.db.WithContext(ctx).Order("created_at asc").Find(&entries).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to fetch waitlist entries", err)
	}

	return entries, nil
}

func (wr *waitlistRepository) CountEntries(ctx context.Context) (int64, error) {
	var count int64

	if err := wr.db.WithContext(ctx).Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
		return 0, apperrors.NewDatabaseError("unable to count waitlist entries", err)
	}

	return count, nil
}

func normalizeEntry(entry *models.WaitlistEntry) {
	entry.Email = NormalizeEmail(entry.Email)
	entry.Role = NormalizeRole(entry.Role)
	entry.FullName = strings.TrimSpace(entry.FullName)
	entry.Company = strings.TrimSpace(entry.Company)
	entry.HowHeard = strings.TrimSpace(entry.HowHeard)
}

// isDuplicateKey recognizes a uniqueness conflict across the backends we run
// against: GORM's translated error, the raw Postgres SQLSTATE, and the SQLite
// message used by the test suites.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}

	return apperrors.IsDuplicateKeyError(err)
}
