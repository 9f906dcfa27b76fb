package users

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/cache"
	"github.com/atelierai/platform/database"
	"github.com/atelierai/platform/database/migration"
	"github.com/atelierai/platform/database/query"
	dbtest "github.com/atelierai/platform/database/testutil"
	"github.com/atelierai/platform/logger"
	redistest "github.com/atelierai/platform/redis/testutil"
	"github.com/atelierai/platform/testutil"
)

func newRepo(t *testing.T) (*Repository, *dbtest.Component) {
	t.Helper()
	db := dbtest.NewComponent().WithMigrations(Migrations, MigrationsPath)
	testutil.T(t).Setup(db)
	return NewRepository(db.DB(), logger.NewNop()), db
}

func createUser(t *testing.T, repo *Repository, email string) *User {
	t.Helper()
	u := &User{Email: email, HashedPassword: "hash", FullName: "Test User", IsActive: true}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create(%s) failed: %v", email, err)
	}
	return u
}

func TestMigrations_UpDown(t *testing.T) {
	_, db := newRepo(t)
	gdb := db.DB().GormDB

	version, dirty, err := migration.Version(gdb, database.DriverSQLite, Migrations, MigrationsPath)
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 || dirty {
		t.Errorf("version = %d dirty = %v, want 1 clean", version, dirty)
	}

	if err := migration.Down(gdb, database.DriverSQLite, Migrations, MigrationsPath); err != nil {
		t.Fatalf("Down failed: %v", err)
	}
	if gdb.Migrator().HasTable("users") {
		t.Error("users table should be dropped")
	}
	if err := migration.Up(gdb, database.DriverSQLite, Migrations, MigrationsPath); err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	if !gdb.Migrator().HasTable("users") {
		t.Error("users table should exist again")
	}
}

func TestRepository_CreateDefaults(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	u := createUser(t, repo, "  Alice@Example.COM ")
	if u.ID == "" || u.Role != "designer" || u.SubscriptionTier != TierStarter {
		t.Errorf("unexpected defaults %+v", u)
	}

	got, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if got.ID != u.ID || got.Email != "alice@example.com" || !got.IsActive {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestRepository_DuplicateEmail(t *testing.T) {
	repo, db := newRepo(t)
	createUser(t, repo, "bob@example.com")

	err := repo.Create(context.Background(), &User{Email: "BOB@example.com", HashedPassword: "x", IsActive: true})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	dbtest.AssertRowCount(t, db.DB(), "users", 1)
}

func TestRepository_NotFound(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	if _, err := repo.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByEmail: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.FindByID(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID: expected ErrNotFound, got %v", err)
	}
	if err := repo.SetActive(ctx, "00000000-0000-0000-0000-000000000000", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive: expected ErrNotFound, got %v", err)
	}
}

func TestRepository_Mutations(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	u := createUser(t, repo, "carol@example.com")

	if err := repo.SetActive(ctx, u.ID, false); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetRole(ctx, u.ID, authz.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetPasswordHash(ctx, u.ID, "new-hash"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetRole(ctx, u.ID, authz.Role("root")); err == nil {
		t.Error("unknown role should be rejected")
	}

	got, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsActive || got.Role != "admin" || got.HashedPassword != "new-hash" {
		t.Errorf("mutations not persisted: %+v", got)
	}
}

func TestRepository_List(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		u := createUser(t, repo, fmt.Sprintf("user%02d@example.com", i))
		if i%4 == 0 {
			if err := repo.SetRole(ctx, u.ID, authz.RoleAdmin); err != nil {
				t.Fatal(err)
			}
		}
	}

	q, _ := url.ParseQuery("role=eq.admin&sortBy=email&pageSize=2")
	res, err := repo.List(ctx, query.Parse(q, ListQuery))
	if err != nil {
		t.Fatal(err)
	}
	if res.Pagination.Total != 3 || res.Pagination.TotalPages != 2 || len(res.Data) != 2 {
		t.Errorf("unexpected page %+v", res.Pagination)
	}
	if res.Data[0].Email != "user00@example.com" {
		t.Errorf("first = %s", res.Data[0].Email)
	}
}

func TestProfileCache(t *testing.T) {
	repo, _ := newRepo(t)
	rc := redistest.NewComponent()
	testutil.T(t).Setup(rc)
	store := cache.NewStore(rc.Client(), logger.NewNop())
	profiles := NewProfileCache(repo, store, logger.NewNop())
	ctx := context.Background()

	u := createUser(t, repo, "dana@example.com")

	p, err := profiles.Get(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Email != "dana@example.com" || !p.IsActive {
		t.Errorf("profile = %+v", p)
	}
	if !rc.Mini().Exists(cache.UserKey(u.ID)) {
		t.Fatal("profile should be cached after a miss")
	}
	if ttl := rc.Mini().TTL(cache.UserKey(u.ID)); ttl != time.Duration(cache.TTLMedium)*time.Second {
		t.Errorf("ttl = %v, want %d seconds", ttl, cache.TTLMedium)
	}
	if raw, _ := rc.Mini().Get(cache.UserKey(u.ID)); raw == "" || strings.Contains(raw, "hash") {
		t.Errorf("cached profile must not carry the password hash: %s", raw)
	}

	if err := repo.SetActive(ctx, u.ID, false); err != nil {
		t.Fatal(err)
	}
	if p, _ := profiles.Get(ctx, u.ID); !p.IsActive {
		t.Error("stale entry should be served until invalidated")
	}
	profiles.Invalidate(ctx, u.ID)
	if p, _ := profiles.Get(ctx, u.ID); p.IsActive {
		t.Error("invalidated entry should be reloaded")
	}

	rc.Kill()
	p, err = profiles.Get(ctx, u.ID)
	if err != nil || p == nil {
		t.Errorf("cache outage must fall through to the repository, got %v", err)
	}
	profiles.Invalidate(ctx, u.ID)

	if _, err := profiles.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileCache_NoStore(t *testing.T) {
	repo, _ := newRepo(t)
	profiles := NewProfileCache(repo, nil, logger.NewNop())
	u := createUser(t, repo, "eve@example.com")

	p, err := profiles.Get(context.Background(), u.ID)
	if err != nil || p.UserID != u.ID {
		t.Errorf("Get = %+v, %v", p, err)
	}
	profiles.Invalidate(context.Background(), u.ID)
}
