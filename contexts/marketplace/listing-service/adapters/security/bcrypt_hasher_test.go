package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("123456")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "123456" {
		t.Fatalf("expected plaintext to never be stored")
	}

	ok, err := hasher.Compare(hash, "123456")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = hasher.Compare(hash, "654321")
	if err != nil || ok {
		t.Fatalf("expected clean mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestBcryptHasherRejectsCorruptHash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	if _, err := hasher.Compare("not-a-bcrypt-hash", "123456"); err == nil {
		t.Fatalf("expected corrupt hash to surface an error")
	}
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	if got := NewBcryptHasher(99).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
}
