package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:     "test-secret-key",
		TokenDuration: 15 * time.Minute,
		Issuer:        "test-issuer",
	}
}

func TestJWTManager_IssueAndVerify(t *testing.T) {
	config := testJWTConfig()
	manager := NewJWTManager(config)

	userID := "user-123"
	email := "test@example.com"

	token, err := manager.Issue(userID, email)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if token == "" {
		t.Error("Issue() returned empty token")
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("claims.UserID = %v, want %v", claims.UserID, userID)
	}
	if claims.Email != email {
		t.Errorf("claims.Email = %v, want %v", claims.Email, email)
	}
	if claims.Issuer != config.Issuer {
		t.Errorf("claims.Issuer = %v, want %v", claims.Issuer, config.Issuer)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("claims missing iat or exp")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != config.TokenDuration {
		t.Errorf("token lifetime = %v, want %v", got, config.TokenDuration)
	}
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	config := testJWTConfig()
	config.TokenDuration = time.Second
	manager := NewJWTManager(config)

	issuedAt := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }

	token, err := manager.Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := manager.Verify(token); err != nil {
		t.Fatalf("Verify() before expiry error = %v", err)
	}

	manager.now = func() time.Time { return issuedAt.Add(2 * time.Second) }

	_, err = manager.Verify(token)
	if err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestJWTManager_InvalidTokens(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	valid, err := manager.Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	otherSecret := testJWTConfig()
	otherSecret.SecretKey = "another-secret"
	forged, err := NewJWTManager(otherSecret).Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	otherIssuer := testJWTConfig()
	otherIssuer.Issuer = "someone-else"
	foreign, err := NewJWTManager(otherIssuer).Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: "user-123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "wrong secret", token: forged},
		{name: "wrong issuer", token: foreign},
		{name: "none algorithm", token: noneToken},
		{name: "tampered payload", token: tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Verify(tt.token)
			if err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestJWTManager_TokenDuration(t *testing.T) {
	manager := NewJWTManager(testJWTConfig())

	if got := manager.TokenDuration(); got != 900 {
		t.Errorf("TokenDuration() = %d, want 900", got)
	}
}
