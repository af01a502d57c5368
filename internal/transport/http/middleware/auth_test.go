package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
)

const testSecret = "test-secret"

var testAuth = AuthConfig{Secret: testSecret, Issuer: "https://idp.test", CookieName: "__session"}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":     "user_123",
		"name":    "Alice",
		"picture": "https://img.test/a.png",
		"iss":     "https://idp.test",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

// echoIdentity writes the identity found in the request context.
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"sub": ""})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"sub": identity.Subject, "name": identity.Name})
})

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httputil.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestAuth(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "https://evil.test"

	noSubject := validClaims()
	delete(noSubject, "sub")

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantCode   string
	}{
		{"bearer header", "Bearer " + signToken(t, validClaims()), "", http.StatusOK, ""},
		{"session cookie", "", signToken(t, validClaims()), http.StatusOK, ""},
		{"missing token", "", "", http.StatusUnauthorized, httputil.ErrCodeUnauthorized},
		{"expired", "Bearer " + signToken(t, expired), "", http.StatusUnauthorized, model.CodeTokenExpired},
		{"wrong issuer", "Bearer " + signToken(t, wrongIssuer), "", http.StatusUnauthorized, model.CodeTokenInvalid},
		{"no subject", "Bearer " + signToken(t, noSubject), "", http.StatusUnauthorized, model.CodeTokenInvalid},
		{"garbage", "Bearer not-a-jwt", "", http.StatusUnauthorized, model.CodeTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "__session", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			Auth(testAuth)(echoIdentity).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if got := errorCode(t, rec); got != tt.wantCode {
					t.Errorf("code = %q, want %q", got, tt.wantCode)
				}
				return
			}
			var body map[string]string
			json.NewDecoder(rec.Body).Decode(&body)
			if body["sub"] != "user_123" || body["name"] != "Alice" {
				t.Errorf("identity = %v", body)
			}
		})
	}
}

func TestAuth_RejectsOtherSigningMethods(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	Auth(testAuth)(echoIdentity).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for alg=none", rec.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantSub string
	}{
		{"anonymous", "", ""},
		{"valid token", "Bearer " + signToken(t, validClaims()), "user_123"},
		{"invalid token treated as anonymous", "Bearer nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			OptionalAuth(testAuth)(echoIdentity).ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var body map[string]string
			json.NewDecoder(rec.Body).Decode(&body)
			if body["sub"] != tt.wantSub {
				t.Errorf("sub = %q, want %q", body["sub"], tt.wantSub)
			}
		})
	}
}

type syncerFunc func(ctx context.Context, identity model.Identity) error

func (f syncerFunc) Sync(ctx context.Context, identity model.Identity) error { return f(ctx, identity) }

func TestSyncUser(t *testing.T) {
	var synced []string
	ok := syncerFunc(func(ctx context.Context, identity model.Identity) error {
		synced = append(synced, identity.Subject)
		return nil
	})
	failing := syncerFunc(func(ctx context.Context, identity model.Identity) error {
		return errors.New("db down")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	SyncUser(ok)(echoIdentity).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || len(synced) != 0 {
		t.Errorf("anonymous request: status=%d synced=%v", rec.Code, synced)
	}

	ctx := WithIdentity(context.Background(), model.Identity{Subject: "user_123"})
	rec = httptest.NewRecorder()
	SyncUser(ok)(echoIdentity).ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK || len(synced) != 1 || synced[0] != "user_123" {
		t.Errorf("authenticated request: status=%d synced=%v", rec.Code, synced)
	}

	rec = httptest.NewRecorder()
	SyncUser(failing)(echoIdentity).ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("failing sync status = %d, want 500", rec.Code)
	}
}
