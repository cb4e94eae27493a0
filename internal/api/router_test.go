package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iwc-recycling/accounts-api/internal/core/domain"
	"github.com/iwc-recycling/accounts-api/internal/core/service"
)

// memAccountRepo is an in-memory AccountRepository for end-to-end tests.
type memAccountRepo struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*domain.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *memAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccountRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *memAccountRepo) RoleCounts(_ context.Context) (map[domain.Role]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.Role]int64)
	for _, a := range r.accounts {
		counts[a.Role]++
	}
	return counts, nil
}

func (r *memAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	clone := *account
	clone.ID = "acc_" + strconv.Itoa(r.seq)
	stored := clone
	r.accounts[stored.ID] = &stored
	return &clone, nil
}

func (r *memAccountRepo) SetApproved(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Approved = true
	clone := *a
	return &clone, nil
}

type permissiveLimiter struct{}

func (permissiveLimiter) TooManyFailures(context.Context, string) (bool, error) { return false, nil }
func (permissiveLimiter) RecordFailure(context.Context, string) error           { return nil }
func (permissiveLimiter) Reset(context.Context, string) error                   { return nil }

type discardSink struct{}

func (discardSink) Enqueue(domain.AuthEvent) {}

type testEnv struct {
	e      *echo.Echo
	repo   *memAccountRepo
	tokens *service.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newMemAccountRepo()
	tokens := service.NewTokenService("test-secret", time.Hour)
	registration := service.NewRegistrationService(repo, tokens, domain.DefaultRolePolicy(), discardSink{})
	accounts := service.NewAuthService(repo, tokens, permissiveLimiter{}, discardSink{}, zerolog.Nop())

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Registration:  registration,
		Accounts:      accounts,
		Tokens:        tokens,
		Log:           zerolog.Nop(),
		AllowedOrigin: "http://localhost:3000",
		Registerer:    reg,
		Gatherer:      reg,
	})
	return &testEnv{e: e, repo: repo, tokens: tokens}
}

func (env *testEnv) do(t *testing.T, method, path, body, bearer string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var resp map[string]any
	if len(rec.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid json from %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, resp
}

func signupBody(name, email, password, role string) string {
	b, _ := json.Marshal(map[string]string{
		"fullName": name, "email": email, "password": password, "role": role,
	})
	return string(b)
}

func TestRouter_SalesQuotaScenario(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		rec, resp := env.do(t, http.MethodPost, "/api/auth/signup",
			signupBody("A B", fmt.Sprintf("s%d@b.com", i), "secret1", "sales"), "")
		if rec.Code != http.StatusCreated {
			t.Fatalf("signup %d: expected 201, got %d (%s)", i, rec.Code, rec.Body.String())
		}
		user := resp["user"].(map[string]any)
		if user["approved"] != false {
			t.Fatalf("sales account must start unapproved")
		}
	}

	rec, resp := env.do(t, http.MethodPost, "/api/auth/signup",
		signupBody("A B", "s4@b.com", "secret1", "sales"), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for over-quota signup, got %d", rec.Code)
	}
	msg, _ := resp["message"].(string)
	if !strings.Contains(msg, "3") || !strings.Contains(msg, "sales") {
		t.Fatalf("quota message must mention role and limit, got %q", msg)
	}
}

func TestRouter_ClientSignupGetsTokenAndMe(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/auth/signup",
		`{"fullName":"Alice Smith","email":"alice@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("expected non-null token for client signup")
	}
	user := resp["user"].(map[string]any)
	if user["approved"] != true || user["role"] != "client" {
		t.Fatalf("unexpected user: %v", user)
	}

	rec, resp = env.do(t, http.MethodGet, "/api/auth/me", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	me := resp["user"].(map[string]any)
	if me["email"] != "alice@example.com" {
		t.Fatalf("unexpected me payload: %v", me)
	}
}

func TestRouter_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/auth/signup",
		signupBody("A B", "dup@b.com", "secret1", ""), "")
	rec, resp := env.do(t, http.MethodPost, "/api/auth/signup",
		signupBody("C D", "DUP@B.COM", "secret2", ""), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp["message"] != "Email already registered" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestRouter_LoginGating(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/auth/signup",
		signupBody("A B", "sales@b.com", "secret1", "sales"), "")

	// Correct password, pending account → 403 with the approval message.
	rec, resp := env.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"sales@b.com","password":"secret1"}`, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if resp["message"] != "Account pending admin approval" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}

	// Wrong password and unknown email → identical 401 envelope.
	recWrong, respWrong := env.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"sales@b.com","password":"wrongpass"}`, "")
	recGhost, respGhost := env.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"ghost@b.com","password":"whatever"}`, "")
	if recWrong.Code != http.StatusUnauthorized || recGhost.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", recWrong.Code, recGhost.Code)
	}
	if respWrong["message"] != respGhost["message"] {
		t.Fatalf("credential errors must be indistinguishable: %v vs %v",
			respWrong["message"], respGhost["message"])
	}
}

func TestRouter_MeTokenFailures(t *testing.T) {
	env := newTestEnv(t)

	// Expired: a token whose validity window has already closed.
	shortLived := service.NewTokenService("test-secret", time.Nanosecond)
	expired, err := shortLived.Issue("acc_1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	rec, resp := env.do(t, http.MethodGet, "/api/auth/me", "", expired)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
	if resp["message"] != "Token expired" {
		t.Fatalf("expected token-expired message, got %v", resp["message"])
	}

	// Tampered token → distinct invalid-token message.
	good, err := env.tokens.Issue("acc_1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	rec, resp = env.do(t, http.MethodGet, "/api/auth/me", "", good+"x")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered token, got %d", rec.Code)
	}
	if resp["message"] != "Invalid token" {
		t.Fatalf("expected invalid-token message, got %v", resp["message"])
	}

	// No token at all.
	rec, resp = env.do(t, http.MethodGet, "/api/auth/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", rec.Code)
	}
	if resp["message"] != "Not authorized, no token" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestRouter_ApprovalFlow(t *testing.T) {
	env := newTestEnv(t)

	_, adminResp := env.do(t, http.MethodPost, "/api/auth/signup",
		signupBody("Root Admin", "admin@b.com", "secret1", "admin"), "")
	adminToken, _ := adminResp["token"].(string)
	if adminToken == "" {
		t.Fatalf("admin signup should auto-approve with token")
	}

	_, salesResp := env.do(t, http.MethodPost, "/api/auth/signup",
		signupBody("Pending Sales", "sales@b.com", "secret1", "sales"), "")
	salesID := salesResp["user"].(map[string]any)["id"].(string)

	// A non-admin caller is rejected.
	_, clientResp := env.do(t, http.MethodPost, "/api/auth/signup",
		signupBody("Plain Client", "client@b.com", "secret1", ""), "")
	clientToken, _ := clientResp["token"].(string)
	rec, _ := env.do(t, http.MethodPost, "/api/auth/approve/"+salesID, "", clientToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin approve, got %d", rec.Code)
	}

	// Admin approves; the sales login now succeeds.
	rec, _ = env.do(t, http.MethodPost, "/api/auth/approve/"+salesID, "", adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 approving, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec, resp := env.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"sales@b.com","password":"secret1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after approval, got %d (%s)", rec.Code, rec.Body.String())
	}
	if tok, _ := resp["token"].(string); tok == "" {
		t.Fatalf("expected token after approval")
	}

	// Unknown account id.
	rec, _ = env.do(t, http.MethodPost, "/api/auth/approve/acc_unknown", "", adminToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestRouter_RoleCountsZeroFilled(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/auth/signup",
		signupBody("A B", "c1@b.com", "secret1", ""), "")

	rec, resp := env.do(t, http.MethodGet, "/api/auth/role-counts", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	counts := resp["counts"].(map[string]any)
	if len(counts) != len(domain.Roles()) {
		t.Fatalf("expected all roles present, got %v", counts)
	}
	if counts["client"].(float64) != 1 || counts["sales"].(float64) != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestRouter_RoutesForSession(t *testing.T) {
	env := newTestEnv(t)

	_, devResp := env.do(t, http.MethodPost, "/api/auth/signup",
		signupBody("Dev One", "dev@b.com", "secret1", "developer"), "")
	devToken, _ := devResp["token"].(string)
	if devToken == "" {
		t.Fatalf("developer signup should auto-approve with token")
	}

	rec, resp := env.do(t, http.MethodGet, "/api/auth/routes", "", devToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp["defaultPath"] != "/dev-console" {
		t.Fatalf("unexpected default path: %v", resp["defaultPath"])
	}
}

func TestRouter_GooglePlaceholder(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/auth/google", "", "")
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
	if resp["success"] != false {
		t.Fatalf("expected success false, got %v", resp)
	}
}
