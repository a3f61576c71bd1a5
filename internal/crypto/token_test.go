package crypto

import (
	"bytes"
	"testing"
)

func TestDeriveSigningKeyIsDeterministic(t *testing.T) {
	first, err := DeriveSigningKey("operator-secret")
	if err != nil {
		t.Fatalf("derive key error: %v", err)
	}
	second, err := DeriveSigningKey("operator-secret")
	if err != nil {
		t.Fatalf("derive key error: %v", err)
	}

	if len(first) != SigningKeySize {
		t.Fatalf("expected %d byte key, got %d", SigningKeySize, len(first))
	}
	if !bytes.Equal(first, second) {
		t.Errorf("expected identical keys for identical secrets")
	}

	other, err := DeriveSigningKey("another-secret")
	if err != nil {
		t.Fatalf("derive key error: %v", err)
	}
	if bytes.Equal(first, other) {
		t.Errorf("expected different keys for different secrets")
	}
}

func TestDeriveSigningKeyRejectsEmptySecret(t *testing.T) {
	if _, err := DeriveSigningKey(""); err != ErrEmptySecret {
		t.Errorf("expected ErrEmptySecret, got %v", err)
	}
}

func TestGenerateSecretIsUnique(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatalf("generate secret error: %v", err)
	}
	b, err := GenerateSecret()
	if err != nil {
		t.Fatalf("generate secret error: %v", err)
	}
	if a == b {
		t.Errorf("expected distinct secrets")
	}
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("some.jwt.value")
	if len(fp) != fingerprintLength {
		t.Fatalf("expected fingerprint length %d, got %d", fingerprintLength, len(fp))
	}
	if fp != Fingerprint("some.jwt.value") {
		t.Errorf("fingerprint must be stable")
	}
	if fp == Fingerprint("other.jwt.value") {
		t.Errorf("fingerprints of different tokens collided")
	}
}
