package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/atelierai/platform/database"
)

// LoadFixture inserts rows into table.
func LoadFixture(ctx context.Context, db *database.DB, table string, rows []map[string]interface{}) error {
	for _, row := range rows {
		if err := db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert fixture row into %s: %w", table, err)
		}
	}
	return nil
}

// TableNames lists the application tables, leaving out SQLite internals and
// the migration bookkeeping table.
func TableNames(ctx context.Context, db *database.DB) ([]string, error) {
	var tables []string
	err := db.WithContext(ctx).
		Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> ?", migrationsTable).
		Scan(&tables).Error
	return tables, err
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db *database.DB, table string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Table(table).Count(&count).Error
	return count, err
}

// AssertRowCount fails the test if table does not hold want rows.
func AssertRowCount(t testing.TB, db *database.DB, table string, want int64) {
	t.Helper()
	got, err := CountRows(context.Background(), db, table)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	if got != want {
		t.Errorf("table %s row count = %d, want %d", table, got, want)
	}
}
