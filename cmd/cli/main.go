package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Nathankoth/waitlist-main-second/config"
	"github.com/Nathankoth/waitlist-main-second/internal/log"
	"github.com/Nathankoth/waitlist-main-second/internal/models"
	"github.com/Nathankoth/waitlist-main-second/pkg/migrations"
	"github.com/Nathankoth/waitlist-main-second/pkg/utils"
	"gorm.io/gorm"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		db := mustConnect(logger)

		sqlDB, err := db.DB()
		if err != nil {
			logger.Error("Failed to get SQL DB instance for migration", "error", err.Error())
			os.Exit(1)
		}
		defer func() {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close SQL DB after migration", "error", err.Error())
			}
		}()

		migrationsDir := utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", "migrations")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := migrations.Up(ctx, sqlDB, migrations.Config{Dir: migrationsDir, Logger: logger}); err != nil {
			logger.Error("Database migration failed", "error", err.Error())
			os.Exit(1)
		}

		logger.Info("Database migrations completed")
		return

	case "export":
		dir := "."
		if len(args) > 1 {
			dir = args[1]
		}

		db := mustConnect(logger)
		defer config.CloseDatabase(db, logger)

		path, count, err := exportWaitlist(db, dir)
		if err != nil {
			logger.Error("Waitlist export failed", "error", err.Error())
			os.Exit(1)
		}

		logger.Info("Waitlist export completed", "file", path, "records", count)
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func mustConnect(logger *log.Logger) *gorm.DB {
	db, err := config.NewDatabase(logger, &config.DBConfig{})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err.Error())
		os.Exit(1)
	}

	return db
}

// exportWaitlist writes every waitlist entry to a timestamped CSV file in
// dir, oldest first, and returns the file path and record count.
func exportWaitlist(db *gorm.DB, dir string) (string, int, error) {
	var entries []models.WaitlistEntry
	if err := db.Order("created_at ASC").Find(&entries).Error; err != nil {
		return "", 0, fmt.Errorf("failed to load waitlist entries: %w", err)
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	path := filepath.Join(dir, fmt.Sprintf("waitlist-backup-%s.csv", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"id", "email", "role", "full_name", "company", "monthly_listings", "years_experience", "how_heard", "created_at"}
	if err := writer.Write(header); err != nil {
		return "", 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			entry.ID,
			entry.Email,
			entry.Role,
			entry.FullName,
			entry.Company,
			entry.MonthlyListings,
			entry.YearsExperience,
			entry.HowHeard,
			entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return "", 0, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", 0, fmt.Errorf("failed to flush CSV output: %w", err)
	}

	return path, len(entries), nil
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate          Run database migrations and exit")
	fmt.Println("  export [dir]     Export the waitlist table to a timestamped CSV file (default: current directory)")
	fmt.Println("  help             Show this help message")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  MIGRATIONS_DIR   Directory containing SQL migrations (default \"migrations\")")
}
