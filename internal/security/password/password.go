package password

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/orgvault/internal/domain"
)

const (
	// FormatTag marks digests produced by the sha256+bcrypt scheme, so the
	// stored format stays verifiable across future migrations.
	FormatTag = "$bcrypt-sha256$"

	// MaxPasswordLength bounds accepted password input.
	MaxPasswordLength = 4096

	// DefaultCost is the bcrypt work factor used when none is configured.
	DefaultCost = 12
)

// Codec performs one-way password hashing. The password is pre-hashed with
// SHA-256 to a fixed 32 bytes before bcrypt, so bcrypt's 72-byte input limit
// never applies regardless of password length.
type Codec struct {
	cost int
}

// NewCodec returns a codec with the given bcrypt cost, falling back to
// DefaultCost when the value is out of bcrypt's supported range.
func NewCodec(cost int) *Codec {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Codec{cost: cost}
}

// Hash returns a tagged digest of password. Empty, whitespace-only, and
// oversized input is rejected with domain.ErrInvalidCredentialFormat.
func (c *Codec) Hash(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", fmt.Errorf("%w: password exceeds %d characters", domain.ErrInvalidCredentialFormat, MaxPasswordLength)
	}
	trimmed := strings.TrimSpace(password)
	if trimmed == "" {
		return "", fmt.Errorf("%w: password is empty", domain.ErrInvalidCredentialFormat)
	}

	pre := sha256.Sum256([]byte(trimmed))
	digest, err := bcrypt.GenerateFromPassword(pre[:], c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return FormatTag + string(digest), nil
}

// Verify reports whether password matches digest. It never returns an error:
// a structurally invalid digest, wrong format, or mismatch all verify as
// false. A digest without the format tag is treated as a legacy bare bcrypt
// hash over the same SHA-256 pre-hash.
func (c *Codec) Verify(password, digest string) bool {
	trimmed := strings.TrimSpace(password)
	if trimmed == "" || digest == "" {
		return false
	}

	hash := strings.TrimPrefix(digest, FormatTag)
	pre := sha256.Sum256([]byte(trimmed))
	return bcrypt.CompareHashAndPassword([]byte(hash), pre[:]) == nil
}
