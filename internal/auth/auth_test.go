package auth

import (
	"strings"
	"testing"
)

func TestCredentialRoundTrip(t *testing.T) {
	cred, err := NewCredential("hunter2")
	if err != nil {
		t.Fatalf("NewCredential error: %v", err)
	}
	if strings.Contains(cred, "hunter2") {
		t.Fatalf("credential contains the plaintext password")
	}
	if !Verify(cred, "hunter2") {
		t.Errorf("correct password rejected")
	}
	if Verify(cred, "hunter3") {
		t.Errorf("wrong password accepted")
	}
}

func TestCredentialsAreSalted(t *testing.T) {
	a, _ := NewCredential("same-password")
	b, _ := NewCredential("same-password")
	if a == b {
		t.Errorf("two credentials for the same password are identical, salt missing")
	}
}

func TestEmptyPasswordRejected(t *testing.T) {
	if _, err := NewCredential(""); err == nil {
		t.Errorf("empty password accepted")
	}
}

func TestVerifyMalformedCredential(t *testing.T) {
	for _, cred := range []string{"", "nodollar", "zz$deadbeef", "00ff$"} {
		if Verify(cred, "password") {
			t.Errorf("malformed credential %q verified", cred)
		}
	}
}
