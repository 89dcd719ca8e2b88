package waitlist

import (
	"context"
	"errors"
	"testing"

	"github.com/Nathankoth/waitlist-main-second/internal/models"
	apperrors "github.com/Nathankoth/waitlist-main-second/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) WaitlistRepository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.WaitlistEntry{}))

	return NewWaitlistRepository(db)
}

func TestCreateEntry_AssignsIDAndTimestamps(t *testing.T) {
	repo := newTestRepository(t)

	entry, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{
		Email: "new@example.com",
		Role:  "realtor",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestCreateEntry_NormalizesBeforePersisting(t *testing.T) {
	repo := newTestRepository(t)

	entry, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{
		Email:    "  Mixed@Example.COM ",
		Role:     " Investor ",
		FullName: "  Pat Smith  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "mixed@example.com", entry.Email)
	assert.Equal(t, "investor", entry.Role)
	assert.Equal(t, "Pat Smith", entry.FullName)
}

func TestCreateEntry_NilEntry(t *testing.T) {
	repo := newTestRepository(t)

	entry, err := repo.CreateEntry(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
}

func TestCreateEntry_DuplicateEmailIsConflict(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{
		Email: "dup@example.com",
		Role:  "realtor",
	})
	require.NoError(t, err)

	// Different casing still collides after normalization.
	entry, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{
		Email: "DUP@Example.com",
		Role:  "homebuyer",
	})
	assert.Error(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.GetErrorType(err))
	assert.Equal(t, "Email already registered", apperrors.GetHumanReadableMessage(err))
}

func TestFindEntryByID(t *testing.T) {
	repo := newTestRepository(t)

	created, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{
		Email: "find@example.com",
		Role:  "surveyor",
	})
	require.NoError(t, err)

	found, err := repo.FindEntryByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "find@example.com", found.Email)

	missing, err := repo.FindEntryByID(context.Background(), "4c3a7d1e-0000-4000-8000-ffffffffffff")
	assert.Error(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.GetErrorType(err))
}

func TestGetAllEntries_OldestFirst(t *testing.T) {
	repo := newTestRepository(t)

	for _, email := range []string{"first@example.com", "second@example.com", "third@example.com"} {
		_, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{Email: email, Role: "other"})
		require.NoError(t, err)
	}

	entries, err := repo.GetAllEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first@example.com", entries[0].Email)
	assert.Equal(t, "third@example.com", entries[2].Email)

	count, err := repo.CountEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestIsDuplicateKey_RecognizesBackendVariants(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(&pgconn.PgError{Code: pgUniqueViolation}))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: waitlist.email")))
	assert.False(t, isDuplicateKey(assert.AnError))
	assert.False(t, isDuplicateKey(nil))
}
