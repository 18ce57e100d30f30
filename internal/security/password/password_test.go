package password

import (
	"crypto/sha256"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/orgvault/internal/domain"
)

func TestHashAndVerify(t *testing.T) {
	c := NewCodec(bcrypt.MinCost)

	digest, err := c.Hash("secret123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(digest, FormatTag) {
		t.Fatalf("digest missing format tag: %q", digest)
	}
	if !c.Verify("secret123", digest) {
		t.Fatal("correct password did not verify")
	}
	if c.Verify("secret124", digest) {
		t.Fatal("wrong password verified")
	}
}

func TestHashRejectsInvalidInput(t *testing.T) {
	c := NewCodec(bcrypt.MinCost)

	cases := []struct {
		name     string
		password string
	}{
		{"empty", ""},
		{"whitespace only", "   \t\n"},
		{"oversized", strings.Repeat("x", MaxPasswordLength+1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Hash(tc.password); !errors.Is(err, domain.ErrInvalidCredentialFormat) {
				t.Errorf("expected ErrInvalidCredentialFormat, got %v", err)
			}
		})
	}
}

func TestHashAcceptsLongPasswords(t *testing.T) {
	// Longer than bcrypt's 72-byte input limit; the SHA-256 pre-hash must
	// keep the full password significant.
	c := NewCodec(bcrypt.MinCost)
	long := strings.Repeat("a", 100)

	digest, err := c.Hash(long)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !c.Verify(long, digest) {
		t.Fatal("long password did not verify")
	}
	if c.Verify(long+"b", digest) {
		t.Fatal("extended password verified; pre-hash is not covering the tail")
	}
}

func TestVerifyLegacyUntaggedDigest(t *testing.T) {
	c := NewCodec(bcrypt.MinCost)

	// Legacy digests are bare bcrypt hashes over the same pre-hash, stored
	// without the format tag.
	pre := sha256.Sum256([]byte("oldpassword"))
	legacy, err := bcrypt.GenerateFromPassword(pre[:], bcrypt.MinCost)
	if err != nil {
		t.Fatalf("building legacy digest: %v", err)
	}

	if !c.Verify("oldpassword", string(legacy)) {
		t.Fatal("legacy digest did not verify")
	}
	if c.Verify("otherpassword", string(legacy)) {
		t.Fatal("wrong password verified against legacy digest")
	}
}

func TestVerifyNeverErrorsOnMalformedDigest(t *testing.T) {
	c := NewCodec(bcrypt.MinCost)

	for _, digest := range []string{
		"",
		"not-a-hash",
		"$bcrypt-sha256$",
		"$bcrypt-sha256$garbage",
		"$2a$totally$broken",
	} {
		if c.Verify("secret123", digest) {
			t.Errorf("malformed digest %q verified", digest)
		}
	}
}

func TestDistinctPasswordsDistinctDigests(t *testing.T) {
	c := NewCodec(bcrypt.MinCost)

	d1, err := c.Hash("password-one")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	d2, err := c.Hash("password-two")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if c.Verify("password-one", d2) || c.Verify("password-two", d1) {
		t.Fatal("cross-verification succeeded")
	}
}
