package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret []byte, claims Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseSessionVerified(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{
		Email:        "alice@example.com",
		UserMetadata: UserMetadata{FullName: "Alice Chen"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	session, err := ParseSession(signToken(t, secret, claims), secret)
	if err != nil {
		t.Fatalf("parse session: %v", err)
	}

	if session.UserID != "user-123" {
		t.Errorf("unexpected user id: %s", session.UserID)
	}
	if session.DisplayName != "Alice Chen" {
		t.Errorf("unexpected display name: %s", session.DisplayName)
	}
	if session.Email != "alice@example.com" {
		t.Errorf("unexpected email: %s", session.Email)
	}
}

func TestParseSessionWrongSecret(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
	}
	token := signToken(t, []byte("right-secret"), claims)

	if _, err := ParseSession(token, []byte("wrong-secret")); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseSessionUnverified(t *testing.T) {
	claims := Claims{
		UserMetadata:     UserMetadata{FullName: "Bob"},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-456"},
	}
	token := signToken(t, []byte("whatever"), claims)

	session, err := ParseSession(token, nil)
	if err != nil {
		t.Fatalf("parse session: %v", err)
	}
	if session.UserID != "user-456" || session.DisplayName != "Bob" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestParseSessionMissingSubject(t *testing.T) {
	token := signToken(t, []byte("s"), Claims{})

	if _, err := ParseSession(token, nil); err == nil {
		t.Fatal("expected error for token without subject")
	}
}
