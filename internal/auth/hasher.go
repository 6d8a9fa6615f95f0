package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a password into the verifier kept in the directory and
// checks candidate passwords against it.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// PlainHasher stores the password itself. It is the default and keeps
// directories written by earlier versions readable; it offers no protection.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Verify(stored, password string) bool { return stored == password }

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (BcryptHasher) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// NewHasher returns the hasher registered under name ("plain" or "bcrypt").
func NewHasher(name string) (Hasher, error) {
	switch name {
	case "", "plain":
		return PlainHasher{}, nil
	case "bcrypt":
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
