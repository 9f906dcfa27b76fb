package testutil

import (
	"context"
	"testing"

	"github.com/atelierai/platform/component"
	"github.com/atelierai/platform/database"
	"github.com/atelierai/platform/testutil"
)

type note struct {
	ID   uint   `gorm:"primaryKey"`
	Text string `gorm:"uniqueIndex"`
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tc := NewComponent()

	if h := tc.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health() before Start = %v", h.Status)
	}
	if err := tc.Stop(ctx); err != nil {
		t.Errorf("Stop() before Start: %v", err)
	}
	if err := tc.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := tc.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
	if h := tc.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health() = %v, want healthy", h.Status)
	}
	if err := tc.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}

func TestComponent_ResetSnapshotRestore(t *testing.T) {
	tc := NewComponent().WithModels(&note{})
	h := testutil.T(t)
	h.Setup(tc)
	db := tc.DB()
	ctx := context.Background()

	if err := db.WithContext(ctx).Create(&note{Text: "first"}).Error; err != nil {
		t.Fatal(err)
	}
	snap := h.Snapshot(tc)

	db.WithContext(ctx).Create(&note{Text: "second"})
	AssertRowCount(t, db, "notes", 2)

	h.Restore(tc, snap)
	AssertRowCount(t, db, "notes", 1)

	h.Reset(tc)
	AssertRowCount(t, db, "notes", 0)
}

func TestComponent_DuplicateKeyIsTranslated(t *testing.T) {
	tc := NewComponent().WithModels(&note{})
	testutil.T(t).Setup(tc)
	ctx := context.Background()

	if err := tc.DB().WithContext(ctx).Create(&note{Text: "same"}).Error; err != nil {
		t.Fatal(err)
	}
	err := tc.DB().WithContext(ctx).Create(&note{Text: "same"}).Error
	if !database.IsDuplicateError(err) {
		t.Errorf("expected duplicate-key error, got %v", err)
	}
}
