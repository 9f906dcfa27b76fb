package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/database"
	"github.com/atelierai/platform/database/query"
	"github.com/atelierai/platform/logger"
)

var (
	// ErrNotFound means no user matched.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicateEmail means the email is already registered.
	ErrDuplicateEmail = errors.New("users: email already registered")
)

// ListQuery is what the admin user listing accepts.
var ListQuery = query.Config{
	SearchFields:      []string{"email", "full_name"},
	AllowedSortFields: []string{"email", "created_at", "role"},
	AllowedFilters:    []string{"role", "is_active", "subscription_tier"},
	DefaultSort:       "created_at DESC",
}

// Repository persists users with gorm.
type Repository struct {
	db  *database.DB
	log *logger.Logger
}

// NewRepository creates a repository over db.
func NewRepository(db *database.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: log.WithComponent("users")}
}

// Create inserts u. An empty ID is filled with a random UUID, an empty
// role with authz.DefaultRole and an empty tier with DefaultTier. The email
// is normalized before insert.
func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = authz.DefaultRole.String()
	}
	if u.SubscriptionTier == "" {
		u.SubscriptionTier = DefaultTier
	}
	u.Email = NormalizeEmail(u.Email)

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsDuplicateError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("users: create: %w", err)
	}
	r.log.WithContext(ctx).Info("User created", logger.Fields(logger.FieldUserID, u.ID, logger.FieldRole, u.Role))
	return nil
}

// FindByEmail looks a user up by normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = ?", NormalizeEmail(email))
}

// FindByID looks a user up by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.first(ctx, "user_id = ?", id)
}

func (r *Repository) first(ctx context.Context, cond string, arg interface{}) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&u).Error; err != nil {
		if database.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: lookup: %w", err)
	}
	return &u, nil
}

// SetActive activates or deactivates a user.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, id, map[string]interface{}{"is_active": active})
}

// SetRole changes a user's role.
func (r *Repository) SetRole(ctx context.Context, id string, role authz.Role) error {
	if !role.Valid() {
		return fmt.Errorf("users: invalid role %q", role)
	}
	return r.update(ctx, id, map[string]interface{}{"role": role.String()})
}

// SetPasswordHash replaces the stored hash, used when a login upgrades a
// hash made with weaker parameters.
func (r *Repository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, map[string]interface{}{"hashed_password": hash})
}

func (r *Repository) update(ctx context.Context, id string, values map[string]interface{}) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res := r.db.WithContext(ctx).Model(&User{}).Where("user_id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("users: update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of users for the admin listing.
func (r *Repository) List(ctx context.Context, params query.Params) (*query.Result[User], error) {
	res, err := query.Apply[User](r.db.WithContext(ctx).Model(&User{}), params, ListQuery)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return res, nil
}
