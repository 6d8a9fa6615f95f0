package auth

import (
	"errors"
	"testing"
)

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		confirm  string
		want     error
	}{
		{"ok", "alice", "secret1", "secret1", nil},
		{"missing username", "", "secret1", "secret1", ErrMissingFields},
		{"missing password", "alice", "", "", ErrMissingFields},
		{"mismatch", "alice", "secret1", "secret2", ErrPasswordMismatch},
		{"too short", "alice", "abc", "abc", ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.username, tt.password, tt.confirm, DefaultMinPasswordLength)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	if err := ValidateLogin("alice", "x"); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
	if err := ValidateLogin("alice", ""); !errors.Is(err, ErrMissingFields) {
		t.Errorf("err = %v, want %v", err, ErrMissingFields)
	}
}

func TestNewHasher(t *testing.T) {
	for _, name := range []string{"", "plain", "bcrypt"} {
		if _, err := NewHasher(name); err != nil {
			t.Errorf("NewHasher(%q): %v", name, err)
		}
	}
	if _, err := NewHasher("md5"); err == nil {
		t.Error("expected error for unknown hasher")
	}

	h := PlainHasher{}
	v, _ := h.Hash("secret1")
	if !h.Verify(v, "secret1") || h.Verify(v, "secret2") {
		t.Error("plain hasher verify mismatch")
	}
}
