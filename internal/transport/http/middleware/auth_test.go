package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quotation-api/internal/config"
	jwtinfra "github.com/quotation-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	dir := t.TempDir()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPath := filepath.Join(dir, "private.pem")
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0o600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPath := filepath.Join(dir, "public.pem")
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	}), 0o600))

	p, err := jwtinfra.NewProvider(&config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         time.Hour,
	})
	require.NoError(t, err)
	return p
}

func claimsEcho(t *testing.T, gotClaims **jwtinfra.Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _ := ClaimsFromContext(r.Context())
		*gotClaims = c
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_MissingHeader(t *testing.T) {
	p := testJWTProvider(t)
	var claims *jwtinfra.Claims
	h := Auth(p)(claimsEcho(t, &claims))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, claims)
}

func TestAuth_ValidTokenInjectsClaims(t *testing.T) {
	p := testJWTProvider(t)
	token, err := p.Sign("user-1", "ada@example.com", jwtinfra.RoleClient)
	require.NoError(t, err)

	var claims *jwtinfra.Claims
	h := Auth(p)(claimsEcho(t, &claims))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestAuth_MalformedToken(t *testing.T) {
	p := testJWTProvider(t)
	h := Auth(p)(claimsEcho(t, new(*jwtinfra.Claims)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	p := testJWTProvider(t)
	var claims *jwtinfra.Claims
	h := OptionalAuth(p)(claimsEcho(t, &claims))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, claims)
}

func TestOptionalAuth_ValidTokenInjectsClaims(t *testing.T) {
	p := testJWTProvider(t)
	token, err := p.Sign("user-1", "ada@example.com", jwtinfra.RoleClient)
	require.NoError(t, err)

	var claims *jwtinfra.Claims
	h := OptionalAuth(p)(claimsEcho(t, &claims))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestOptionalAuth_MalformedTokenIsRejectedNotDowngraded(t *testing.T) {
	p := testJWTProvider(t)
	var claims *jwtinfra.Claims
	h := OptionalAuth(p)(claimsEcho(t, &claims))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, claims)
}

func TestRequireRole(t *testing.T) {
	p := testJWTProvider(t)
	adminToken, err := p.Sign("admin-1", "ops@example.com", jwtinfra.RoleAdmin)
	require.NoError(t, err)
	clientToken, err := p.Sign("user-1", "ada@example.com", jwtinfra.RoleClient)
	require.NoError(t, err)

	h := Auth(p)(RequireRole(jwtinfra.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"admin allowed", adminToken, http.StatusOK},
		{"client forbidden", clientToken, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
