package auth

import (
	"testing"
	"time"

	"github.com/platedrop/ordercore/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "platedrop-auth"}
}

func signToken(t *testing.T, secret string, claims SessionClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func baseClaims() SessionClaims {
	return SessionClaims{
		UserID: "user-1",
		Role:   RoleDriver,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "platedrop-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestParseSessionToken(t *testing.T) {
	t.Parallel()

	identity, err := ParseSessionToken(testJWTConfig(), signToken(t, "test-secret", baseClaims()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if identity.UserID != "user-1" || identity.Role != RoleDriver {
		t.Fatalf("identity = %+v", identity)
	}
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	if _, err := ParseSessionToken(testJWTConfig(), signToken(t, "other-secret", baseClaims())); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseSessionTokenRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	claims := baseClaims()
	claims.Issuer = "someone-else"
	if _, err := ParseSessionToken(testJWTConfig(), signToken(t, "test-secret", claims)); err == nil {
		t.Fatal("expected issuer error")
	}
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	claims := baseClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	if _, err := ParseSessionToken(testJWTConfig(), signToken(t, "test-secret", claims)); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseSessionTokenRequiresUserID(t *testing.T) {
	t.Parallel()

	claims := baseClaims()
	claims.UserID = ""
	if _, err := ParseSessionToken(testJWTConfig(), signToken(t, "test-secret", claims)); err == nil {
		t.Fatal("expected missing user id error")
	}
}

func TestParseSessionTokenDefaultsUnknownRole(t *testing.T) {
	t.Parallel()

	claims := baseClaims()
	claims.Role = Role("superuser")
	identity, err := ParseSessionToken(testJWTConfig(), signToken(t, "test-secret", claims))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if identity.Role != RoleCustomer {
		t.Fatalf("role = %s, want customer fallback", identity.Role)
	}
}
