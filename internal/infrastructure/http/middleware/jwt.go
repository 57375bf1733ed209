package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"crediadmin/internal/infrastructure/config"
	ctxutil "crediadmin/internal/infrastructure/context"
	httperrors "crediadmin/internal/infrastructure/http"
)

var defaultMethods = []string{
	jwt.SigningMethodRS256.Alg(),
	jwt.SigningMethodRS384.Alg(),
	jwt.SigningMethodRS512.Alg(),
	jwt.SigningMethodPS256.Alg(),
	jwt.SigningMethodES256.Alg(),
}

// JWTAuthenticator validates Authorization headers against a remote JWKS and
// places the token's principal in the request context.
type JWTAuthenticator struct {
	cfg        config.AuthSettings
	log        *slog.Logger
	keyfunc    jwt.Keyfunc
	methods    []string
	cancel     context.CancelFunc
	bypassPath map[string]struct{}
}

// Option customises a JWTAuthenticator.
type Option func(*JWTAuthenticator)

// WithKeyfunc verifies tokens with kf instead of fetching the JWKS. methods
// replaces the accepted signing algorithms when given.
func WithKeyfunc(kf jwt.Keyfunc, methods ...string) Option {
	return func(a *JWTAuthenticator) {
		a.keyfunc = kf
		if len(methods) > 0 {
			a.methods = methods
		}
	}
}

func NewJWTAuthenticator(cfg config.AuthSettings, log *slog.Logger, opts ...Option) (*JWTAuthenticator, error) {
	auth := &JWTAuthenticator{
		cfg:        cfg,
		log:        log,
		methods:    defaultMethods,
		bypassPath: make(map[string]struct{}),
	}

	for _, path := range cfg.BypassPaths {
		if path != "" {
			auth.bypassPath[path] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(auth)
	}

	if !cfg.Enabled || auth.keyfunc != nil {
		return auth, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	override := keyfunc.Override{
		RefreshInterval: 6 * time.Hour,
		RefreshErrorHandlerFunc: func(url string) func(context.Context, error) {
			return func(c context.Context, err error) {
				log.Error("failed to refresh JWKS", "url", url, "error", err)
			}
		},
		HTTPTimeout: 10 * time.Second,
	}

	jwks, err := keyfunc.NewDefaultOverrideCtx(ctx, []string{cfg.JWKSetURI}, override)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to load JWKS: %w", err)
	}
	auth.keyfunc = jwks.Keyfunc
	auth.cancel = cancel

	return auth, nil
}

// Middleware enforces JWT validation on inbound requests.
func (a *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	if !a.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.shouldBypass(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := extractBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			httperrors.WriteError(w, http.StatusUnauthorized, "Error de Autenticación", []string{"Credenciales de acceso no válidas"}, a.log)
			return
		}

		principal, err := a.verify(tokenString)
		if err != nil {
			a.log.Warn("token validation failed", "error", err, "correlation_id", ctxutil.GetCorrelationID(r.Context()))
			httperrors.WriteError(w, http.StatusUnauthorized, "Error de Autenticación", []string{"Token inválido o expirado"}, a.log)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxutil.WithPrincipal(r.Context(), principal)))
	})
}

func (a *JWTAuthenticator) verify(tokenString string) (ctxutil.Principal, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithIssuer(a.cfg.IssuerURI),
		jwt.WithLeeway(a.cfg.ClockSkew),
		jwt.WithValidMethods(a.methods),
		jwt.WithExpirationRequired(),
	}
	if a.cfg.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(a.cfg.Audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, a.keyfunc, parserOpts...)
	if err != nil {
		return ctxutil.Principal{}, err
	}
	if !token.Valid {
		return ctxutil.Principal{}, errors.New("token is not valid")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return ctxutil.Principal{}, errors.New("token has no subject")
	}

	p := ctxutil.Principal{UserID: sub}
	p.Email, _ = claims["email"].(string)
	p.Role, _ = claims["role"].(string)
	return p, nil
}

// Close stops background JWKS refreshers.
func (a *JWTAuthenticator) Close() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *JWTAuthenticator) shouldBypass(path string) bool {
	_, ok := a.bypassPath[path]
	return ok
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid Authorization header format")
	}
	return parts[1], nil
}
