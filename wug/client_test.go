package wug

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestServer starts an httptest server whose /api/v1/token endpoint
// issues fixed tokens, with extra handlers layered on the mux.
func newTestServer(t *testing.T, register func(mux *http.ServeMux)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token form: %v", err)
		}
		switch r.PostFormValue("grant_type") {
		case "password":
			if r.PostFormValue("username") != "admin" || r.PostFormValue("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "invalid_grant", "error_description": "bad credentials",
				})
				return
			}
		case "refresh_token":
			if r.PostFormValue("refresh_token") != "refresh-1" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "invalid_grant", "error_description": "unknown refresh token",
				})
				return
			}
		default:
			t.Errorf("unexpected grant_type %q", r.PostFormValue("grant_type"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	})
	if register != nil {
		register(mux)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := New(Config{ServerURL: serverURL, Username: "admin", Password: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewValidatesConfig(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
	}{
		{"missing url", Config{Username: "a", Password: "b"}},
		{"bad url", Config{ServerURL: "not a url", Username: "a", Password: "b"}},
		{"missing username", Config{ServerURL: "https://wug.example.com", Password: "b"}},
		{"missing password", Config{ServerURL: "https://wug.example.com", Username: "a"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg); err == nil {
				t.Error("expected config validation error, got nil")
			}
		})
	}
}

func TestCallBeforeConnect(t *testing.T) {
	srv := newTestServer(t, nil)
	c := newTestClient(t, srv.URL)

	_, err := c.Device(context.Background(), "1", ViewCard)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestConnectStoresToken(t *testing.T) {
	srv := newTestServer(t, nil)
	c := newTestClient(t, srv.URL)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	tok := c.Token()
	if tok.AccessToken != "access-1" {
		t.Errorf("access token = %q, want access-1", tok.AccessToken)
	}
	if tok.RefreshToken != "refresh-1" {
		t.Errorf("refresh token = %q, want refresh-1", tok.RefreshToken)
	}
	if !tok.ExpiresAt.After(time.Now()) {
		t.Error("token expiry should be in the future")
	}
}

func TestConnectBadCredentials(t *testing.T) {
	srv := newTestServer(t, nil)
	c, err := New(Config{ServerURL: srv.URL, Username: "admin", Password: "wrong"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = c.Connect(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "invalid_grant" {
		t.Errorf("got status=%d code=%q", apiErr.StatusCode, apiErr.Code)
	}
}

func TestExpiredTokenIsRefreshed(t *testing.T) {
	srv := newTestServer(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/v1/devices/1", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"data": Device{ID: "1", Name: "dev"}})
		})
	})
	c := newTestClient(t, srv.URL)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// Pretend an hour passed: the stored token is now stale.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := c.Device(context.Background(), "1", ""); err != nil {
		t.Fatalf("Device after expiry: %v", err)
	}
}

func TestRefreshFailureIsSessionExpired(t *testing.T) {
	srv := newTestServer(t, nil)
	c := newTestClient(t, srv.URL)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	c.mu.Lock()
	c.token.RefreshToken = "stale"
	c.mu.Unlock()
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := c.Device(context.Background(), "1", "")
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

// Concurrent callers that both see an expired token must spend one refresh
// grant between them: refresh tokens are single-use on the server, so a
// second grant with the same token would be rejected 401.
func TestConcurrentExpiryRefreshesOnce(t *testing.T) {
	var (
		mu            sync.Mutex
		issued        int
		validRefresh  string
		refreshGrants int
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		mu.Lock()
		defer mu.Unlock()
		if r.PostFormValue("grant_type") == "refresh_token" {
			if r.PostFormValue("refresh_token") != validRefresh {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "invalid_grant", "error_description": "refresh token already used",
				})
				return
			}
			refreshGrants++
		}
		issued++
		validRefresh = fmt.Sprintf("refresh-%d", issued)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  fmt.Sprintf("access-%d", issued),
			"refresh_token": validRefresh,
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/api/v1/devices/1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": Device{ID: "1"}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Device(context.Background(), "1", ViewCard)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent call %d: %v", i, err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if refreshGrants != 1 {
		t.Errorf("refresh grants = %d, want 1", refreshGrants)
	}
}

// A token that lapses while a retry backs off is refreshed before the next
// attempt instead of being replayed stale.
func TestTokenRefreshedBetweenRetries(t *testing.T) {
	var (
		calls   atomic.Int32
		issued  atomic.Int32
		expired atomic.Bool
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/token", func(w http.ResponseWriter, r *http.Request) {
		n := issued.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  fmt.Sprintf("access-%d", n),
			"refresh_token": "refresh-1",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	})
	mux.HandleFunc("/api/v1/devices/1", func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
				t.Errorf("first attempt Authorization = %q, want Bearer access-1", got)
			}
			expired.Store(true)
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "BUSY", "message": "try later"},
			})
		default:
			if got := r.Header.Get("Authorization"); got != "Bearer access-2" {
				t.Errorf("retry Authorization = %q, want Bearer access-2", got)
			}
			json.NewEncoder(w).Encode(map[string]any{"data": Device{ID: "1"}})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(Config{ServerURL: srv.URL, Username: "admin", Password: "secret", MaxRetries: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	base := time.Now()
	c.now = func() time.Time {
		if expired.Load() {
			return base.Add(2 * time.Hour)
		}
		return base
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	dev, err := c.Device(context.Background(), "1", "")
	if err != nil {
		t.Fatalf("Device: %v", err)
	}
	if dev.ID != "1" {
		t.Errorf("device id = %q, want 1", dev.ID)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestTransientErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/v1/devices/1", func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"code": "BUSY", "message": "try later"},
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"data": Device{ID: "1", Name: "dev"}})
		})
	})
	c, err := New(Config{ServerURL: srv.URL, Username: "admin", Password: "secret", MaxRetries: 5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	dev, err := c.Device(context.Background(), "1", "")
	if err != nil {
		t.Fatalf("Device: %v", err)
	}
	if dev.ID != "1" {
		t.Errorf("device id = %q, want 1", dev.ID)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestRetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/v1/devices/1", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "BUSY", "message": "try later"},
			})
		})
	})
	c, err := New(Config{ServerURL: srv.URL, Username: "admin", Password: "secret", MaxRetries: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	_, err = c.Device(context.Background(), "1", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", apiErr.StatusCode)
	}
	if got := calls.Load(); got != 3 { // initial attempt + 2 retries
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestNonTransientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/v1/devices/9", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "NOT_FOUND", "message": "Device not found"},
			})
		})
	})
	c, err := New(Config{ServerURL: srv.URL, Username: "admin", Password: "secret", MaxRetries: 5})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	_, err = c.Device(context.Background(), "9", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", apiErr.Code)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1", got)
	}
}

func TestAuthorizationHeaderIsStamped(t *testing.T) {
	srv := newTestServer(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/v1/devices/1", func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
				t.Errorf("Authorization = %q, want Bearer access-1", got)
			}
			json.NewEncoder(w).Encode(map[string]any{"data": Device{ID: "1"}})
		})
	})
	c := newTestClient(t, srv.URL)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := c.Device(context.Background(), "1", ""); err != nil {
		t.Fatalf("Device: %v", err)
	}
}
