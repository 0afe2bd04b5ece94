package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// WHY BCRYPT?
// bcrypt is deliberately slow, and that slowness is the security feature:
// it makes offline brute-forcing of a stolen users table expensive. It also
// generates and embeds a random salt per hash, so no separate salt column
// and no rainbow tables.
//
// NEVER store passwords in plain text or with fast hashes (MD5, SHA-256).
//
// Stored format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$12$<22-char salt><31-char hash>

// bcryptCost is the work factor for registration hashing.
//
// Cost 12 takes roughly 250ms on a modern server — negligible for a login,
// brutal for an attacker. Tune so hashing stays in the 200–300ms range on
// production hardware.
const bcryptCost = 12

// PasswordService provides bcrypt hashing and verification for the
// email/password login path.
//
// It's a struct rather than free functions so the cost can be injected:
// tests use the bcrypt minimum (cost 4) and run in milliseconds.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: bcryptCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Use bcrypt.MinCost in tests; never below the default in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password for storage in users.password_hash.
//
// Rejects passwords over 72 bytes: bcrypt silently truncates beyond that,
// and silent truncation means "correct password, first 72 bytes" — better
// to refuse at registration than surprise at login.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored bcrypt hash.
// Returns nil on match. bcrypt's comparison is constant-time, so response
// timing leaks nothing about how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
