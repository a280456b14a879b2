package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, true, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("token string is empty")
	}
	if !tok.Exp.After(time.Now()) {
		t.Errorf("expiry %v is not in the future", tok.Exp)
	}

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse back: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not a map")
	}
	if e, g := float64(42), claims["sub"]; e != g {
		t.Errorf("sub: expected %v, got %v", e, g)
	}
	if e, g := true, claims["adm"]; e != g {
		t.Errorf("adm: expected %v, got %v", e, g)
	}
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, false, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	if err == nil && parsed.Valid {
		t.Error("token verified with the wrong secret")
	}
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	b, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if e, g := 96, len(a.Raw); e != g {
		t.Errorf("len(Raw): expected %d, got %d", e, g)
	}
	if a.Raw == b.Raw {
		t.Error("two refresh tokens are identical")
	}
	if !a.Exp.After(time.Now().Add(29 * 24 * time.Hour)) {
		t.Errorf("expiry %v is earlier than expected", a.Exp)
	}
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("some-token")
	h2 := HashRefreshRaw("some-token")
	if h1 != h2 {
		t.Error("hash is not deterministic")
	}
	if e, g := 64, len(h1); e != g {
		t.Errorf("len(hash): expected %d, got %d", e, g)
	}
	if h1 == HashRefreshRaw("other-token") {
		t.Error("distinct inputs produced the same hash")
	}
}
