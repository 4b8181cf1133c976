package jwt

import (
	"testing"
	"time"

	"foodgram-backend/domain"
)

func TestTokenUserRoundTrip(t *testing.T) {
	svc := NewJWTService()

	token := svc.GenerateTokenUser("user-123")
	if token == "" {
		t.Fatal("generated an empty token")
	}

	userID, err := svc.GetUserIDByToken(token)
	if err != nil {
		t.Fatalf("GetUserIDByToken: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID = %q, want user-123", userID)
	}
}

func TestGetUserIDByTokenInvalid(t *testing.T) {
	svc := NewJWTService()

	if _, err := svc.GetUserIDByToken("not-a-token"); err != domain.ErrTokenInvalid {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestResetPasswordTokenExpiry(t *testing.T) {
	svc := NewJWTService()

	token, err := svc.GenerateTokenResetPassword(map[string]any{"user_id": "user-123"}, time.Minute)
	if err != nil {
		t.Fatalf("GenerateTokenResetPassword: %v", err)
	}
	claims, err := svc.ValidateTokenResetPassword(token)
	if err != nil {
		t.Fatalf("ValidateTokenResetPassword: %v", err)
	}
	if claims["user_id"] != "user-123" {
		t.Fatalf("claims = %+v", claims)
	}

	expired, err := svc.GenerateTokenResetPassword(map[string]any{"user_id": "user-123"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateTokenResetPassword: %v", err)
	}
	if _, err := svc.ValidateTokenResetPassword(expired); err != domain.ErrTokenExpired {
		t.Fatalf("expired token: err = %v, want ErrTokenExpired", err)
	}
}
