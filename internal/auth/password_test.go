package auth

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2secret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter2secret" {
		t.Fatal("hash equals the plaintext password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash = %q, want bcrypt format", hash)
	}

	if !CheckPassword(hash, "hunter2secret") {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword(hash, "hunter2secrer") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if CheckPassword("not-a-hash", "hunter2secret") {
		t.Error("CheckPassword() accepted a malformed hash")
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	a, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	b, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}
