package model

import (
	"testing"
	"time"
)

func TestGenerateSessionToken(t *testing.T) {
	token1, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}
	token2, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}

	if token1 == "" {
		t.Error("GenerateSessionToken() returned empty token")
	}
	if token1 == token2 {
		t.Error("GenerateSessionToken() returned identical tokens")
	}
}

func TestHashSessionToken(t *testing.T) {
	hash := HashSessionToken("some-token")

	if len(hash) != 64 {
		t.Errorf("HashSessionToken() length = %d, want 64", len(hash))
	}
	if hash != HashSessionToken("some-token") {
		t.Error("HashSessionToken() is not deterministic")
	}
	if hash == HashSessionToken("other-token") {
		t.Error("HashSessionToken() collides for different tokens")
	}
}

func TestSessionIsExpired(t *testing.T) {
	expired := &Session{ExpiresAt: time.Now().Add(-time.Minute)}
	if !expired.IsExpired() {
		t.Error("IsExpired() = false for past expiry, want true")
	}

	live := &Session{ExpiresAt: time.Now().Add(time.Hour)}
	if live.IsExpired() {
		t.Error("IsExpired() = true for future expiry, want false")
	}
}
