package auth

import (
	"testing"

	"whisp.dev/chat-widget/internal/config"
)

func setSecret(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig.NonceSecret = "test-secret"
	config.AppConfig.NonceTTLHours = 1
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestNonceIsBoundToAction(t *testing.T) {
	setSecret(t)

	nonce, err := GenerateNonce(NonceActionLead)
	if err != nil {
		t.Fatalf("GenerateNonce() error = %v", err)
	}
	if err := VerifyNonce(nonce, NonceActionLead); err != nil {
		t.Errorf("VerifyNonce(lead) error = %v", err)
	}
	if err := VerifyNonce(nonce, NonceActionMessage); err == nil {
		t.Error("lead nonce must not verify for the message action")
	}
	if err := VerifyNonce("not-a-token", NonceActionLead); err == nil {
		t.Error("garbage nonce must not verify")
	}
}

func TestNonceRejectedWithOtherSecret(t *testing.T) {
	setSecret(t)
	nonce, err := GenerateNonce(NonceActionMessage)
	if err != nil {
		t.Fatalf("GenerateNonce() error = %v", err)
	}
	config.AppConfig.NonceSecret = "rotated"
	if err := VerifyNonce(nonce, NonceActionMessage); err == nil {
		t.Error("nonce signed with an old secret must not verify")
	}
}

func TestAdminJWT(t *testing.T) {
	setSecret(t)

	token, err := GenerateAdminJWT("admin")
	if err != nil {
		t.Fatalf("GenerateAdminJWT() error = %v", err)
	}
	sub, err := ValidateAdminJWT(token)
	if err != nil {
		t.Fatalf("ValidateAdminJWT() error = %v", err)
	}
	if sub != "admin" {
		t.Errorf("subject = %q, want admin", sub)
	}

	nonce, _ := GenerateNonce(NonceActionLead)
	if _, err := ValidateAdminJWT(nonce); err == nil {
		t.Error("a widget nonce must not be accepted as an admin token")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPasswordHash("s3cret", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
	if CheckPasswordHash("s3cret", "") {
		t.Error("empty hash must never match")
	}
}
