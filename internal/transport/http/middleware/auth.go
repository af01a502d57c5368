package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const identityKey contextKey = "identity"

// AuthConfig describes how session tokens issued by the identity provider
// are verified.
type AuthConfig struct {
	Secret     string
	Issuer     string // optional; checked against "iss" when set
	CookieName string
}

var errNoToken = errors.New("no token")

// Auth rejects requests without a valid session token.
// Checks the Authorization header first (mobile), then the session cookie (web).
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := cfg.authenticate(r)
			if err != nil {
				switch {
				case errors.Is(err, errNoToken):
					httputil.WriteUnauthorized(w, "Missing authentication token")
				case errors.Is(err, jwt.ErrTokenExpired):
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Session token has expired")
				default:
					httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid authentication token")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// the request through anonymously otherwise.
func OptionalAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := cfg.authenticate(r)
			if err != nil {
				if !errors.Is(err, errNoToken) {
					log.Printf("[Auth] Ignoring invalid token on public route %s: %v", r.URL.Path, err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func (cfg AuthConfig) authenticate(r *http.Request) (model.Identity, error) {
	tokenString := bearerToken(r)
	if tokenString == "" && cfg.CookieName != "" {
		if cookie, err := r.Cookie(cfg.CookieName); err == nil {
			tokenString = cookie.Value
		}
	}
	if tokenString == "" {
		return model.Identity{}, errNoToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return model.Identity{}, err
	}
	if !token.Valid {
		return model.Identity{}, jwt.ErrTokenInvalidClaims
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return model.Identity{}, jwt.ErrTokenInvalidClaims
	}

	identity := model.Identity{Subject: subject}
	identity.Name, _ = claims["name"].(string)
	identity.ImageURL, _ = claims["picture"].(string)
	return identity, nil
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// UserSyncer creates the local user row for a verified identity.
type UserSyncer interface {
	Sync(ctx context.Context, identity model.Identity) error
}

// SyncUser makes sure the authenticated user exists locally before any
// handler writes rows that reference it. Anonymous requests pass through.
func SyncUser(syncer UserSyncer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, ok := IdentityFromContext(r.Context()); ok {
				if err := syncer.Sync(r.Context(), identity); err != nil {
					log.Printf("[ERROR] SyncUser: user=%s err=%v", identity.Subject, err)
					httputil.WriteInternalError(w, "Failed to load user")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok
}

// UserIDFromContext returns the authenticated subject id, or "" for
// anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	identity, _ := IdentityFromContext(ctx)
	return identity.Subject
}
