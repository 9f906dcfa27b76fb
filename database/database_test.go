package database

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gorm.io/gorm"

	apperrors "github.com/atelierai/platform/errors"
	"github.com/atelierai/platform/logger"
)

func sqliteConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		DSN:             ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: "0",
		ConnMaxIdleTime: "0",
		MaxRetries:      1,
	}
}

func TestConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"postgres", Config{DSN: "host=localhost dbname=app"}, false},
		{"sqlite", Config{Driver: DriverSQLite, DSN: ":memory:"}, false},
		{"missing dsn", Config{}, true},
		{"unknown driver", Config{Driver: "mysql", DSN: "x"}, true},
		{"idle above open", Config{DSN: "x", MaxOpenConns: 2, MaxIdleConns: 3}, true},
		{"bad lifetime", Config{DSN: "x", ConnMaxLifetime: "forever"}, true},
		{"bad log level", Config{DSN: "x", LogLevel: "loud"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := New(ctx, sqliteConfig(), logger.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Errorf("PingContext: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestNew_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(ctx, sqliteConfig(), logger.NewNop()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWithTransaction(t *testing.T) {
	type item struct {
		ID   uint `gorm:"primaryKey"`
		Name string
	}
	ctx := context.Background()
	db, err := New(ctx, sqliteConfig(), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.GormDB.AutoMigrate(&item{}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&item{Name: "rolled back"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if err := db.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&item{Name: "kept"}).Error
	}); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.WithContext(ctx).Model(&item{}).Count(&count)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestFromDatabase(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   apperrors.ErrorCode
		status int
	}{
		{"not found", gorm.ErrRecordNotFound, apperrors.ErrCodeNotFound, http.StatusNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, apperrors.ErrCodeAlreadyExists, http.StatusBadRequest},
		{"connection", errors.New("dial tcp: connection refused"), apperrors.ErrCodeDatabaseError, http.StatusServiceUnavailable},
		{"other", errors.New("syntax error"), apperrors.ErrCodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDatabase(tt.err, "user")
			if appErr.Code != tt.code || appErr.HTTPStatus != tt.status {
				t.Errorf("got %s/%d, want %s/%d", appErr.Code, appErr.HTTPStatus, tt.code, tt.status)
			}
		})
	}
	if FromDatabase(nil, "user") != nil {
		t.Error("nil error should map to nil")
	}
}
