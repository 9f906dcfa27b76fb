package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/auth/password"
	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/observability"
	"github.com/atelierai/platform/users"
	"github.com/atelierai/platform/util"
)

const metricsComponent = "auth"

// Service registers, logs in and authenticates users.
type Service struct {
	hasher    password.Hasher
	tokens    *jwt.Service
	users     *users.Repository
	profiles  *users.ProfileCache
	guard     *authz.Guard
	revoked   *RevocationList
	metrics   *observability.Metrics
	log       *logger.Logger
	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

// WithRevocation enables token revocation checks and makes Deactivate and
// ChangeRole revoke outstanding tokens.
func WithRevocation(r *RevocationList) Option {
	return func(s *Service) { s.revoked = r }
}

// WithGuard replaces the default role policy.
func WithGuard(g *authz.Guard) Option {
	return func(s *Service) { s.guard = g }
}

// WithMetrics records auth failures and operation timings.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates the service. It hashes a throwaway password once so
// that Login spends the same work on unknown emails as on known ones.
func NewService(hasher password.Hasher, tokens *jwt.Service, repo *users.Repository, profiles *users.ProfileCache, log *logger.Logger, opts ...Option) (*Service, error) {
	dummy, err := password.RandomPassword(24)
	if err != nil {
		return nil, fmt.Errorf("auth: generate dummy password: %w", err)
	}
	dummyHash, err := hasher.Hash(dummy)
	if err != nil {
		return nil, fmt.Errorf("auth: hash dummy password: %w", err)
	}

	s := &Service{
		hasher:    hasher,
		tokens:    tokens,
		users:     repo,
		profiles:  profiles,
		guard:     authz.NewGuard(nil),
		log:       log.WithComponent("auth"),
		dummyHash: dummyHash,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates an active account with the default role and signs it
// in. A taken email returns ErrEmailTaken and issues no token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (sess *Session, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanAuthSignup)
	defer span.End()
	defer s.observe(ctx, "register", time.Now(), &err)

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &users.User{
		Email:          in.Email,
		HashedPassword: hash,
		FullName:       util.CleanText(in.FullName),
		Role:           authz.DefaultRole.String(),
		IsActive:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	observability.SetSpanAttributes(ctx, observability.AttrUserID, u.ID)
	return s.issue(ctx, u)
}

// Login checks credentials. Unknown emails and wrong passwords both return
// ErrInvalidCredentials; only a correct password on a deactivated account
// reveals the inactive state. A stored hash made with weaker parameters is
// upgraded on success.
func (s *Service) Login(ctx context.Context, email, pw string) (sess *Session, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanAuthLogin)
	defer span.End()
	defer s.observe(ctx, "login", time.Now(), &err)

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		s.hasher.Verify(pw, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(pw, u.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, authz.ErrInactiveAccount
	}

	if s.hasher.NeedsRehash(u.HashedPassword) {
		s.rehash(ctx, u.ID, pw)
	}
	observability.SetSpanAttributes(ctx, observability.AttrUserID, u.ID)
	return s.issue(ctx, u)
}

func (s *Service) rehash(ctx context.Context, id, pw string) {
	hash, err := s.hasher.Hash(pw)
	if err == nil {
		err = s.users.SetPasswordHash(ctx, id, hash)
	}
	if err != nil {
		s.log.WithContext(ctx).Warn("Password rehash failed", logger.Fields(logger.FieldUserID, id, logger.FieldError, err.Error()))
		return
	}
	s.log.WithContext(ctx).Info("Password hash upgraded", logger.Fields(logger.FieldUserID, id))
}

// Authenticate verifies token and, when revocation is enabled, rejects
// tokens issued before their subject was revoked.
func (s *Service) Authenticate(ctx context.Context, token string) (claims *jwt.Claims, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanAuthCheck)
	defer span.End()
	defer func() {
		if err != nil {
			s.fail(ctx, err)
		}
	}()

	claims, err = s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if s.revoked != nil && s.revoked.IsRevoked(ctx, claims.SubjectID(), claims.Version) {
		return nil, ErrTokenRevoked
	}
	observability.SetSpanAttributes(ctx, observability.AttrUserID, claims.SubjectID(), observability.AttrRole, claims.AccessRole())
	return claims, nil
}

// Authorize authenticates token and requires role.
func (s *Service) Authorize(ctx context.Context, token string, role authz.Role) (*jwt.Claims, error) {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if _, err := s.RequireRole(ctx, claims, role); err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireRole applies the role guard to already verified claims.
func (s *Service) RequireRole(ctx context.Context, claims *jwt.Claims, role authz.Role) (string, error) {
	id, err := s.guard.RequireRole(claims, role)
	if err != nil {
		s.fail(ctx, err)
		return "", err
	}
	return id, nil
}

// Refresh issues a new token for the holder of claims after re-reading the
// account, so a deactivation or role change takes effect.
func (s *Service) Refresh(ctx context.Context, claims *jwt.Claims) (*Session, error) {
	u, err := s.users.FindByID(ctx, claims.SubjectID())
	if errors.Is(err, users.ErrNotFound) {
		return nil, authz.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		s.fail(ctx, authz.ErrInactiveAccount)
		return nil, authz.ErrInactiveAccount
	}
	return s.issue(ctx, u)
}

// Me returns the caller's profile. A token whose user no longer exists is
// not authenticated; a deactivated account is forbidden.
func (s *Service) Me(ctx context.Context, claims *jwt.Claims) (*users.Profile, error) {
	p, err := s.profiles.Get(ctx, claims.SubjectID())
	if errors.Is(err, users.ErrNotFound) {
		return nil, authz.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, authz.ErrInactiveAccount
	}
	return p, nil
}

// Deactivate disables an account and revokes its tokens.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	if err := s.users.SetActive(ctx, userID, false); err != nil {
		return err
	}
	s.afterMutation(ctx, userID)
	s.log.WithContext(ctx).Info("User deactivated", logger.Fields(logger.FieldUserID, userID))
	return nil
}

// ChangeRole sets an account's role and revokes its tokens, whose role
// claim is now stale.
func (s *Service) ChangeRole(ctx context.Context, userID string, role authz.Role) error {
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}
	s.afterMutation(ctx, userID)
	s.log.WithContext(ctx).Info("User role changed", logger.Fields(logger.FieldUserID, userID, logger.FieldRole, role.String()))
	return nil
}

func (s *Service) afterMutation(ctx context.Context, userID string) {
	s.profiles.Invalidate(ctx, userID)
	if s.revoked != nil {
		_ = s.revoked.Revoke(ctx, userID)
	}
}

func (s *Service) issue(ctx context.Context, u *users.User) (*Session, error) {
	var version int64
	if s.revoked != nil {
		v, err := s.revoked.Current(ctx, u.ID)
		if err != nil {
			s.log.WithContext(ctx).Warn("Token generation unknown, issuing at 0", logger.Fields(logger.FieldUserID, u.ID, logger.FieldError, err.Error()))
		}
		version = v
	}
	ttl := s.tokens.DefaultTTL()
	token, err := s.tokens.Issue(jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: u.ID},
		Email:            u.Email,
		Role:             u.Role,
		IsActive:         u.IsActive,
		Version:          version,
	}, ttl)
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}
	return &Session{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(ttl / time.Second),
		User:        u.Profile(),
	}, nil
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, errp *error) {
	status := "success"
	if *errp != nil {
		status = "failure"
		s.fail(ctx, *errp)
	}
	s.metrics.RecordOperation(ctx, metricsComponent, op, status, time.Since(start))
}

func (s *Service) fail(ctx context.Context, err error) {
	reason := failureReason(err)
	s.metrics.RecordError(ctx, reason, metricsComponent)
	observability.SetSpanError(ctx, err)
	s.log.WithContext(ctx).Debug("Authentication rejected", logger.Fields(logger.FieldReason, reason))
}
