package mockserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// authService issues and validates simulator tokens: HS256 JWTs for access,
// opaque uuid-based refresh tokens kept in memory.
type authService struct {
	jwtSecret    []byte
	username     string
	passwordHash []byte
	tokenExpiry  time.Duration

	mu       sync.Mutex
	refresh  map[string]string    // refresh token -> username
	issuedAt map[string]time.Time // refresh token -> issue time
}

// claims are the JWT claims of a simulator access token.
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func newAuthService(username, password, jwtSecret string, tokenExpiry time.Duration) (*authService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &authService{
		jwtSecret:    []byte(jwtSecret),
		username:     username,
		passwordHash: hash,
		tokenExpiry:  tokenExpiry,
		refresh:      make(map[string]string),
		issuedAt:     make(map[string]time.Time),
	}, nil
}

// Token handles POST /api/v1/token, form-encoded password and refresh_token
// grants. Errors use the OAuth body shape the real token endpoint uses.
func (a *authService) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	var username string
	switch r.PostFormValue("grant_type") {
	case "password":
		username = r.PostFormValue("username")
		password := r.PostFormValue("password")
		if username != a.username ||
			bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
			oauthError(w, http.StatusUnauthorized, "invalid_grant", "invalid username or password")
			return
		}
	case "refresh_token":
		token := r.PostFormValue("refresh_token")
		a.mu.Lock()
		owner, ok := a.refresh[token]
		if ok {
			delete(a.refresh, token)
			delete(a.issuedAt, token)
		}
		a.mu.Unlock()
		if !ok {
			oauthError(w, http.StatusUnauthorized, "invalid_grant", "unknown refresh token")
			return
		}
		username = owner
	default:
		oauthError(w, http.StatusBadRequest, "unsupported_grant_type", "use password or refresh_token")
		return
	}

	accessToken, err := a.signAccessToken(username)
	if err != nil {
		oauthError(w, http.StatusInternalServerError, "server_error", "failed to sign token")
		return
	}

	refreshToken := uuid.NewString()
	a.mu.Lock()
	a.refresh[refreshToken] = username
	a.issuedAt[refreshToken] = time.Now()
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
		"expires_in":    int(a.tokenExpiry.Seconds()),
	})
}

func (a *authService) signAccessToken(username string) (string, error) {
	now := time.Now()
	c := &claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "whatsup-sim",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.jwtSecret)
}

// Middleware rejects requests without a valid bearer token.
func (a *authService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization header format")
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &claims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func oauthError(w http.ResponseWriter, statusCode int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{
		"error":             code,
		"error_description": description,
	})
}
