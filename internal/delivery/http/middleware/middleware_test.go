package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"hospital-records/config"
	"hospital-records/internal/domain/entity"
	"hospital-records/internal/infrastructure/filestore"
	"hospital-records/internal/repository"
	"hospital-records/internal/service"
	"hospital-records/pkg/clock"
	"hospital-records/pkg/jwt"
	"hospital-records/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func newTestAuth(t *testing.T) (*AuthMiddleware, *jwt.JWTService, func(username string, role entity.Role, active bool)) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	clk := clock.Fixed(time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC))
	files := filestore.NewWithFs(afero.NewMemMapFs(), "/data/backup", clk, log)
	accounts := repository.NewAccountRepository(repository.Deps{
		Files:    files,
		Validate: validator.NewValidator(),
		Log:      log,
	}, "/data/accounts.txt")
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})

	add := func(username string, role entity.Role, active bool) {
		t.Helper()
		err := accounts.Add(entity.Account{
			Username:     username,
			PasswordHash: "x",
			Role:         role,
			IsActive:     active,
			CreatedDate:  "2030-01-01",
		})
		if err != nil {
			t.Fatalf("add account %s: %v", username, err)
		}
	}
	return NewAuthMiddleware(jwtService, accounts, log), jwtService, add
}

func TestAuthenticate(t *testing.T) {
	auth, jwtService, addAccount := newTestAuth(t)
	addAccount("alice", entity.RolePatient, true)
	addAccount("bob", entity.RolePatient, false)

	var gotUser, gotActor string
	var gotRole entity.Role
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUsernameFromContext(r.Context())
		gotRole, _ = GetRoleFromContext(r.Context())
		gotActor = service.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token := func(username string, refresh bool) string {
		var (
			s   string
			err error
		)
		if refresh {
			s, _, err = jwtService.GenerateRefreshToken(username, "patient")
		} else {
			s, _, err = jwtService.GenerateAccessToken(username, "patient")
		}
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"refresh token", "Bearer " + token("alice", true), http.StatusUnauthorized},
		{"inactive account", "Bearer " + token("bob", false), http.StatusUnauthorized},
		{"unknown account", "Bearer " + token("ghost", false), http.StatusUnauthorized},
		{"valid", "Bearer " + token("alice", false), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if gotUser != "alice" || gotRole != entity.RolePatient || gotActor != "alice" {
		t.Errorf("context user=%q role=%q actor=%q", gotUser, gotRole, gotActor)
	}
}

func TestRequireRole(t *testing.T) {
	auth, jwtService, addAccount := newTestAuth(t)
	addAccount("root", entity.RoleAdmin, true)
	addAccount("alice", entity.RolePatient, true)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := auth.Authenticate(RequireAdmin(ok))

	for username, want := range map[string]int{"root": http.StatusOK, "alice": http.StatusForbidden} {
		token, _, err := jwtService.GenerateAccessToken(username, "")
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-logs", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("%s: status = %d, want %d", username, rec.Code, want)
		}
	}

	// Without Authenticate there is no role in the context.
	rec := httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no role: status = %d, want 401", rec.Code)
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	limiter := NewRateLimiter(1, 2, nil)
	handler := limiter.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, code)
		}
	}
	if code := do("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: status %d, want 429", code)
	}
	if code := do("10.0.0.2"); code != http.StatusOK {
		t.Errorf("other client: status %d, want 200", code)
	}
}

func TestRateLimiterForwardedHeaders(t *testing.T) {
	proxy := netip.MustParsePrefix("10.1.0.0/16")
	tests := []struct {
		name      string
		trusted   []netip.Prefix
		remote    string
		forwarded string
		realIP    string
		want      string
	}{
		{"untrusted peer ignores header", nil, "203.0.113.9:4000", "198.51.100.1", "", "203.0.113.9"},
		{"untrusted peer ignores real ip", nil, "203.0.113.9:4000", "", "198.51.100.1", "203.0.113.9"},
		{"trusted proxy forwards client", []netip.Prefix{proxy}, "10.1.2.3:4000", "198.51.100.1", "", "198.51.100.1"},
		{"spoofed left hop is skipped", []netip.Prefix{proxy}, "10.1.2.3:4000", "1.2.3.4, 198.51.100.1", "", "198.51.100.1"},
		{"trusted hops are walked", []netip.Prefix{proxy}, "10.1.2.3:4000", "198.51.100.1, 10.1.9.9", "", "198.51.100.1"},
		{"trusted proxy with real ip", []netip.Prefix{proxy}, "10.1.2.3:4000", "", "198.51.100.7", "198.51.100.7"},
		{"trusted proxy without headers", []netip.Prefix{proxy}, "10.1.2.3:4000", "", "", "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewRateLimiter(1, 1, tt.trusted)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := limiter.clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterHeaderRotationDoesNotBypass(t *testing.T) {
	limiter := NewRateLimiter(1, 1, nil)
	handler := limiter.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	codes := make([]int, 0, 2)
	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 429]", codes)
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 1, nil)
	limiter.now = func() time.Time { return now }

	limiter.limiter("10.0.0.1")
	limiter.limiter("10.0.0.2")
	if n := limiter.Clients(); n != 2 {
		t.Fatalf("clients = %d, want 2", n)
	}

	now = now.Add(limiterIdleTTL / 2)
	limiter.limiter("10.0.0.2")

	now = now.Add(limiterIdleTTL/2 + time.Second)
	limiter.limiter("10.0.0.3")
	if n := limiter.Clients(); n != 2 {
		t.Errorf("clients after sweep = %d, want 2 (10.0.0.1 evicted)", n)
	}
}
