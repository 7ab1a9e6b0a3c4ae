package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("Secret1!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if digest == "Secret1!" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !h.Check("Secret1!", digest) {
		t.Fatal("expected matching plaintext to verify")
	}
	if h.Check("Secret2!", digest) {
		t.Fatal("expected non-matching plaintext to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	d1, err := h.Hash("Secret1!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	d2, err := h.Hash("Secret1!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if d1 == d2 {
		t.Fatal("expected two hashes of the same plaintext to differ")
	}
	if !h.Check("Secret1!", d1) || !h.Check("Secret1!", d2) {
		t.Fatal("expected both digests to verify the plaintext")
	}
}

func TestCheckMalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	if h.Check("whatever", "not-a-bcrypt-digest") {
		t.Fatal("malformed digest must not verify")
	}
	if h.Check("whatever", "") {
		t.Fatal("empty digest must not verify")
	}
}

func TestValidPassword(t *testing.T) {
	cases := []struct {
		pw string
		ok bool
	}{
		{"abcd123!", true},
		{"abc12345", false}, // no symbol
		{"Abcdefg!", false}, // no digit
		{"ABCD123!", false}, // no lowercase
		{"ab1!", false},     // too short
		{"", false},
		{"longenough1@", true},
	}

	for _, tc := range cases {
		if got := ValidPassword(tc.pw); got != tc.ok {
			t.Errorf("ValidPassword(%q) = %v, want %v", tc.pw, got, tc.ok)
		}
	}
}
