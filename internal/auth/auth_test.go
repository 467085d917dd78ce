package auth

import (
	"testing"
	"time"

	"jobcard-backend/internal/models"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "jobcard-backend", time.Hour)
	user := &models.User{ID: "u-1", Name: "Ravi", Email: "ravi@example.com", Role: "operator"}

	token, err := m.GenerateToken(user)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u-1" || claims.Name != "Ravi" || claims.Role != "operator" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenRejected(t *testing.T) {
	m := NewJWTManager("secret", "jobcard-backend", time.Hour)
	token, _ := m.GenerateToken(&models.User{ID: "u-1"})

	if _, err := NewJWTManager("other", "jobcard-backend", time.Hour).ValidateToken(token); err == nil {
		t.Error("token with wrong secret accepted")
	}
	if _, err := NewJWTManager("secret", "someone-else", time.Hour).ValidateToken(token); err == nil {
		t.Error("token from another issuer accepted")
	}
	if _, err := m.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage accepted")
	}
}
