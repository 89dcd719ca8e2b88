package main

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/Nathankoth/waitlist-main-second/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestExportWaitlist_WritesAllEntriesOldestFirst(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WaitlistEntry{}))

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	entries := []models.WaitlistEntry{
		{Email: "second@example.com", Role: "investor", CreatedAt: base.Add(time.Hour)},
		{Email: "first@example.com", Role: "realtor", Company: "Acme, Inc.", CreatedAt: base},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}

	dir := t.TempDir()
	path, count, err := exportWaitlist(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "email", records[0][1])

	// Oldest entry first; a comma in a field survives the round trip.
	assert.Equal(t, "first@example.com", records[1][1])
	assert.Equal(t, "Acme, Inc.", records[1][4])
	assert.Equal(t, "second@example.com", records[2][1])
}

func TestExportWaitlist_EmptyTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WaitlistEntry{}))

	path, count, err := exportWaitlist(db, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.FileExists(t, path)
}
