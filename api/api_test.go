package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelierai/platform/api"
	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/auth/password"
	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/cache"
	dbtest "github.com/atelierai/platform/database/testutil"
	"github.com/atelierai/platform/logger"
	redistest "github.com/atelierai/platform/redis/testutil"
	"github.com/atelierai/platform/testutil"
	"github.com/atelierai/platform/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	engine *gin.Engine
	repo   *users.Repository
	store  *cache.Store
	redis  *redistest.Component
}

func newFixture(t *testing.T, rl api.RateLimitConfig) *fixture {
	t.Helper()
	db := dbtest.NewComponent().WithMigrations(users.Migrations, users.MigrationsPath)
	rc := redistest.NewComponent()
	testutil.T(t).Setup(db, rc)

	log := logger.NewNop()
	tokens, err := jwt.NewService(jwt.Config{Secret: "0123456789abcdef0123456789abcdef"})
	if err != nil {
		t.Fatal(err)
	}
	store := cache.NewStore(rc.Client(), log)
	repo := users.NewRepository(db.DB(), log)
	svc, err := auth.NewService(password.NewBcryptHasher(password.WithCost(bcrypt.MinCost)), tokens, repo, users.NewProfileCache(repo, store, log), log)
	if err != nil {
		t.Fatal(err)
	}

	engine := gin.New()
	api.Mount(engine, api.Deps{Auth: svc, Users: repo, Cache: store, Log: log}, rl)
	return &fixture{engine: engine, repo: repo, store: store, redis: rc}
}

type response struct {
	code   int
	header http.Header
	body   map[string]any
}

func (r response) errorCode() string {
	e, _ := r.body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.engine.ServeHTTP(rr, req)

	res := response{code: rr.Code, header: rr.Header()}
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &res.body); err != nil {
			t.Fatalf("%s %s: invalid JSON %q: %v", method, path, rr.Body.String(), err)
		}
	}
	return res
}

// register creates an account and returns its token and id.
func (f *fixture) register(t *testing.T, email string) (string, string) {
	t.Helper()
	res := f.do(t, http.MethodPost, "/api/v1/auth/register", "", api.RegisterRequest{Email: email, Password: "Secret123!", FullName: "Test User"})
	if res.code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", email, res.code, res.body)
	}
	user := res.body["user"].(map[string]any)
	return res.body["access_token"].(string), user["user_id"].(string)
}

// admin registers an account, promotes it and logs in again so the token
// carries the admin role.
func (f *fixture) admin(t *testing.T) string {
	t.Helper()
	_, id := f.register(t, "admin@x.com")
	if err := f.repo.SetRole(context.Background(), id, authz.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	res := f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: "admin@x.com", Password: "Secret123!"})
	if res.code != http.StatusOK {
		t.Fatalf("admin login: status %d, body %v", res.code, res.body)
	}
	return res.body["access_token"].(string)
}

func TestRegisterLoginMe(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{})

	token, id := f.register(t, "a@x.com")

	res := f.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if res.code != http.StatusOK {
		t.Fatalf("me: status %d, body %v", res.code, res.body)
	}
	if res.body["user_id"] != id || res.body["email"] != "a@x.com" || res.body["role"] != "designer" {
		t.Errorf("unexpected profile %v", res.body)
	}
	if _, ok := res.body["hashed_password"]; ok {
		t.Error("profile must not expose the password hash")
	}

	res = f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: "A@x.com", Password: "Secret123!"})
	if res.code != http.StatusOK || res.body["token_type"] != "bearer" || res.body["expires_in"] != float64(1800) {
		t.Errorf("login: status %d, body %v", res.code, res.body)
	}

	res = f.do(t, http.MethodPost, "/api/v1/auth/refresh", token, nil)
	if res.code != http.StatusOK || res.body["access_token"] == "" {
		t.Errorf("refresh: status %d, body %v", res.code, res.body)
	}
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{LoginPerMinute: 100})
	f.register(t, "taken@x.com")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"duplicate email", api.RegisterRequest{Email: "taken@x.com", Password: "Secret123!", FullName: "B"}, http.StatusBadRequest, "ALREADY_EXISTS"},
		{"invalid email", api.RegisterRequest{Email: "nope", Password: "Secret123!", FullName: "B"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing name", api.RegisterRequest{Email: "b@x.com", Password: "Secret123!"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"short password", api.RegisterRequest{Email: "b@x.com", Password: "short", FullName: "B"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed JSON", `{"email":`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			if res.code != tt.status || res.errorCode() != tt.code {
				t.Errorf("got %d %s, want %d %s (body %v)", res.code, res.errorCode(), tt.status, tt.code, res.body)
			}
			if _, ok := res.body["access_token"]; ok {
				t.Error("rejected registration must not issue a token")
			}
		})
	}
}

func TestRegister_FieldDetails(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{})
	res := f.do(t, http.MethodPost, "/api/v1/auth/register", "", api.RegisterRequest{Email: "nope", Password: "Secret123!", FullName: "B"})

	details, _ := res.body["error"].(map[string]any)["details"].(map[string]any)
	fields, _ := details["fields"].(map[string]any)
	if fields["email"] != "must be a valid email address" {
		t.Errorf("expected an email field error, got %v", res.body)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{})
	f.register(t, "a@x.com")

	for _, req := range []api.LoginRequest{
		{Email: "a@x.com", Password: "Wrong123!"},
		{Email: "ghost@x.com", Password: "Secret123!"},
	} {
		res := f.do(t, http.MethodPost, "/api/v1/auth/login", "", req)
		if res.code != http.StatusUnauthorized || res.errorCode() != "INVALID_CREDENTIALS" {
			t.Errorf("%s: got %d %v", req.Email, res.code, res.body)
		}
	}
}

func TestLogin_RateLimited(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{LoginPerMinute: 2})
	req := api.LoginRequest{Email: "a@x.com", Password: "Secret123!"}

	for i := 0; i < 2; i++ {
		if res := f.do(t, http.MethodPost, "/api/v1/auth/login", "", req); res.code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status %d", i+1, res.code)
		}
	}
	res := f.do(t, http.MethodPost, "/api/v1/auth/login", "", req)
	if res.code != http.StatusTooManyRequests || res.header.Get("Retry-After") != "60" {
		t.Errorf("expected 429 with Retry-After, got %d %v", res.code, res.header)
	}

	// Register keeps its own counter.
	if res := f.do(t, http.MethodPost, "/api/v1/auth/register", "", api.RegisterRequest{Email: "a@x.com", Password: "Secret123!", FullName: "A"}); res.code != http.StatusCreated {
		t.Errorf("register should not share the login window, got %d", res.code)
	}
}

func TestAuthenticatedRoutes_RequireToken(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{})

	for _, tc := range []struct{ method, path, token string }{
		{http.MethodGet, "/api/v1/auth/me", ""},
		{http.MethodGet, "/api/v1/auth/me", "garbage"},
		{http.MethodPost, "/api/v1/auth/refresh", ""},
		{http.MethodGet, "/api/v1/admin/users", ""},
	} {
		res := f.do(t, tc.method, tc.path, tc.token, nil)
		if res.code != http.StatusUnauthorized {
			t.Errorf("%s %s: status %d", tc.method, tc.path, res.code)
		}
		if res.header.Get("WWW-Authenticate") != "Bearer" {
			t.Errorf("%s %s: missing Bearer challenge", tc.method, tc.path)
		}
	}
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{})
	token, _ := f.register(t, "designer@x.com")

	res := f.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
	if res.code != http.StatusForbidden || res.errorCode() != "INSUFFICIENT_ROLE" {
		t.Fatalf("got %d %v", res.code, res.body)
	}
	details := res.body["error"].(map[string]any)["details"].(map[string]any)
	if details["required_role"] != "admin" {
		t.Errorf("details = %v", details)
	}
}

func TestAdmin_ListUsers(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{LoginPerMinute: 100})
	token := f.admin(t)
	f.register(t, "b@x.com")
	f.register(t, "c@x.com")

	res := f.do(t, http.MethodGet, "/api/v1/admin/users?pageSize=2&sortBy=email", token, nil)
	if res.code != http.StatusOK {
		t.Fatalf("status %d, body %v", res.code, res.body)
	}
	data := res.body["data"].([]any)
	meta := res.body["meta"].(map[string]any)
	if len(data) != 2 || meta["total"] != float64(3) || meta["total_pages"] != float64(2) {
		t.Errorf("unexpected page: data=%v meta=%v", data, meta)
	}
	if first := data[0].(map[string]any); first["email"] != "admin@x.com" {
		t.Errorf("expected sort by email, got %v", first)
	}

	res = f.do(t, http.MethodGet, "/api/v1/admin/users?role=eq.admin", token, nil)
	if data := res.body["data"].([]any); len(data) != 1 {
		t.Errorf("role filter returned %d users", len(data))
	}
}

func TestAdmin_Deactivate(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{LoginPerMinute: 100})
	token := f.admin(t)
	userToken, id := f.register(t, "b@x.com")

	res := f.do(t, http.MethodPost, "/api/v1/admin/users/"+id+"/deactivate", token, nil)
	if res.code != http.StatusOK || res.body["status"] != "deactivated" {
		t.Fatalf("deactivate: %d %v", res.code, res.body)
	}

	res = f.do(t, http.MethodGet, "/api/v1/auth/me", userToken, nil)
	if res.code != http.StatusForbidden || res.errorCode() != "INACTIVE_ACCOUNT" {
		t.Errorf("me after deactivation: %d %v", res.code, res.body)
	}
	res = f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: "b@x.com", Password: "Secret123!"})
	if res.code != http.StatusForbidden {
		t.Errorf("login after deactivation: %d %v", res.code, res.body)
	}

	if res := f.do(t, http.MethodPost, "/api/v1/admin/users/not-a-uuid/deactivate", token, nil); res.code != http.StatusBadRequest {
		t.Errorf("bad id: status %d", res.code)
	}
	if res := f.do(t, http.MethodPost, "/api/v1/admin/users/6f1c2a3e-1111-4222-8333-444455556666/deactivate", token, nil); res.code != http.StatusNotFound {
		t.Errorf("unknown id: status %d", res.code)
	}
}

func TestAdmin_ChangeRole(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{LoginPerMinute: 100})
	token := f.admin(t)
	_, id := f.register(t, "b@x.com")
	path := "/api/v1/admin/users/" + id + "/role"

	res := f.do(t, http.MethodPut, path, token, api.ChangeRoleRequest{Role: "owner"})
	if res.code != http.StatusBadRequest || res.errorCode() != "INVALID_INPUT" {
		t.Errorf("unknown role: %d %v", res.code, res.body)
	}

	res = f.do(t, http.MethodPut, path, token, api.ChangeRoleRequest{Role: "viewer"})
	if res.code != http.StatusOK {
		t.Fatalf("change role: %d %v", res.code, res.body)
	}
	u, err := f.repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != "viewer" {
		t.Errorf("role = %s, want viewer", u.Role)
	}
}

func TestAdmin_ClearCache(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{LoginPerMinute: 100})
	token := f.admin(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2"} {
		if _, err := f.store.Set(ctx, cache.ProjectKey(id), map[string]string{"id": id}, cache.TTLShort); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.store.Set(ctx, cache.ClientKey("1"), "x", cache.TTLShort); err != nil {
		t.Fatal(err)
	}

	res := f.do(t, http.MethodDelete, "/api/v1/admin/cache/project", token, nil)
	if res.code != http.StatusOK || res.body["deleted"] != float64(2) || res.body["entity"] != "project" {
		t.Fatalf("clear: %d %v", res.code, res.body)
	}
	if ok, _ := f.store.Exists(ctx, cache.ClientKey("1")); !ok {
		t.Error("other entities must survive")
	}

	if res := f.do(t, http.MethodDelete, "/api/v1/admin/cache/sessions", token, nil); res.code != http.StatusNotFound {
		t.Errorf("unknown entity: status %d", res.code)
	}
}

func TestCacheOutage(t *testing.T) {
	f := newFixture(t, api.RateLimitConfig{LoginPerMinute: 100})
	token := f.admin(t)
	f.redis.Kill()

	res := f.do(t, http.MethodDelete, "/api/v1/admin/cache/project", token, nil)
	if res.code != http.StatusServiceUnavailable || res.errorCode() != "SERVICE_UNAVAILABLE" {
		t.Errorf("clear during outage: %d %v", res.code, res.body)
	}
	if res := f.do(t, http.MethodGet, "/api/v1/auth/me", token, nil); res.code != http.StatusOK {
		t.Errorf("profile reads must fall through to the database: %d %v", res.code, res.body)
	}
	if res := f.do(t, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: "admin@x.com", Password: "Secret123!"}); res.code != http.StatusOK {
		t.Errorf("login must not depend on the cache: %d %v", res.code, res.body)
	}
}
