package utils

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals the plain password")
	}
	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordCostOutOfRange(t *testing.T) {
	// A misconfigured cost must not break hashing; the default cost is
	// used instead.
	for _, cost := range []int{-1, 0, 99} {
		hash, err := HashPassword("secret", cost)
		if err != nil {
			t.Fatalf("HashPassword(cost=%d): %v", cost, err)
		}
		if !VerifyPassword(hash, "secret") {
			t.Errorf("cost %d: hash does not verify", cost)
		}
	}
}
