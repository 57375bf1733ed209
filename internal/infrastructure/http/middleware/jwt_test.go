package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crediadmin/internal/infrastructure/config"
	ctxutil "crediadmin/internal/infrastructure/context"
	httperrors "crediadmin/internal/infrastructure/http"
	"crediadmin/internal/testutil"
)

var testSecret = []byte("test-secret-with-enough-entropy-123456")

func testAuthSettings() config.AuthSettings {
	return config.AuthSettings{
		Enabled:     true,
		IssuerURI:   "https://project.auth.example.com/auth/v1",
		JWKSetURI:   "https://project.auth.example.com/auth/v1/.well-known/jwks.json",
		Audience:    "authenticated",
		ClockSkew:   time.Minute,
		BypassPaths: []string{"/health"},
	}
}

func newTestAuthenticator(t *testing.T) *JWTAuthenticator {
	t.Helper()
	auth, err := NewJWTAuthenticator(testAuthSettings(), testutil.NewNullLogger(),
		WithKeyfunc(func(*jwt.Token) (any, error) { return testSecret, nil }, jwt.SigningMethodHS256.Alg()))
	require.NoError(t, err)
	return auth
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "6b1f0c5e-2d4a-4b8e-9c1d-3e2f1a0b9c8d",
		"email": "admin@example.com",
		"role":  "authenticated",
		"iss":   "https://project.auth.example.com/auth/v1",
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := ctxutil.GetPrincipal(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_ = json.NewEncoder(w).Encode(p)
	})
}

func TestNewJWTAuthenticator_AuthDisabled(t *testing.T) {
	auth, err := NewJWTAuthenticator(config.AuthSettings{Enabled: false}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	auth.Middleware(principalEcho()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clientes", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestNewJWTAuthenticator_AuthEnabled_InvalidJWKSetURI(t *testing.T) {
	cfg := testAuthSettings()
	cfg.JWKSetURI = "invalid-uri"

	_, err := NewJWTAuthenticator(cfg, testutil.NewTestLogger(t))

	assert.Error(t, err)
}

func TestJWTAuthenticator_Middleware_ValidToken(t *testing.T) {
	auth := newTestAuthenticator(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims()))
	w := httptest.NewRecorder()

	auth.Middleware(principalEcho()).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var p ctxutil.Principal
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, "6b1f0c5e-2d4a-4b8e-9c1d-3e2f1a0b9c8d", p.UserID)
	assert.Equal(t, "admin@example.com", p.Email)
	assert.Equal(t, "authenticated", p.Role)
}

func TestJWTAuthenticator_Middleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header func(t *testing.T) string
		detail string
	}{
		{"missing header", func(*testing.T) string { return "" }, "Credenciales de acceso no válidas"},
		{"malformed header", func(*testing.T) string { return "Token abc" }, "Credenciales de acceso no válidas"},
		{"expired", func(t *testing.T) string {
			c := validClaims()
			c["exp"] = time.Now().Add(-time.Hour).Unix()
			return "Bearer " + signToken(t, c)
		}, "Token inválido o expirado"},
		{"wrong issuer", func(t *testing.T) string {
			c := validClaims()
			c["iss"] = "https://evil.example.com"
			return "Bearer " + signToken(t, c)
		}, "Token inválido o expirado"},
		{"wrong audience", func(t *testing.T) string {
			c := validClaims()
			c["aud"] = "anon"
			return "Bearer " + signToken(t, c)
		}, "Token inválido o expirado"},
		{"no subject", func(t *testing.T) string {
			c := validClaims()
			delete(c, "sub")
			return "Bearer " + signToken(t, c)
		}, "Token inválido o expirado"},
		{"no expiry", func(t *testing.T) string {
			c := validClaims()
			delete(c, "exp")
			return "Bearer " + signToken(t, c)
		}, "Token inválido o expirado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := newTestAuthenticator(t)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/clientes", nil)
			if h := tt.header(t); h != "" {
				req.Header.Set("Authorization", h)
			}
			w := httptest.NewRecorder()

			auth.Middleware(principalEcho()).ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			var body httperrors.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, "Error de Autenticación", body.Message)
			assert.Equal(t, []string{tt.detail}, body.Errors)
		})
	}
}

func TestJWTAuthenticator_Middleware_BypassPath(t *testing.T) {
	auth := newTestAuthenticator(t)
	w := httptest.NewRecorder()

	auth.Middleware(principalEcho()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestJWTAuthenticator_shouldBypass(t *testing.T) {
	auth, _ := NewJWTAuthenticator(config.AuthSettings{BypassPaths: []string{"/health", "/metrics"}}, testutil.NewTestLogger(t))

	tests := []struct {
		path     string
		expected bool
	}{
		{"/health", true},
		{"/metrics", true},
		{"/api/v1/clientes", false},
		{"/health/status", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.shouldBypass(tt.path))
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		expectedTok string
		expectedErr bool
	}{
		{"empty header", "", "", true},
		{"no Bearer prefix", "token123", "", true},
		{"too many parts", "Bearer token extra", "", true},
		{"valid", "Bearer token123", "token123", false},
		{"case insensitive", "bEaReR token123", "token123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := extractBearerToken(tt.header)
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedTok, tok)
		})
	}
}
