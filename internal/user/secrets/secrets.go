package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "signup/pkg/domain-errors"
)

// activationTokenBytes is the entropy of an activation token.
const activationTokenBytes = 20

// GenerateActivationToken creates an unguessable activation token as a
// lowercase hex string (40 characters).
func GenerateActivationToken() (string, error) {
	buf := make([]byte, activationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate activation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hasher hashes passwords with bcrypt. Passwords are reduced to a base64
// SHA-256 digest first so inputs beyond bcrypt's 72-byte limit are accepted
// and every byte of them counts.
type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher. Costs outside bcrypt's range fall back to
// bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash creates a salted bcrypt digest of the password.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// prehash yields 44 bytes for any input, well inside bcrypt's limit.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
