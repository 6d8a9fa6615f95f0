package auth

import "errors"

// DefaultMinPasswordLength is the shortest password the sign-up form accepts.
const DefaultMinPasswordLength = 6

var (
	ErrMissingFields      = errors.New("username and password are required")
	ErrPasswordMismatch   = errors.New("password and confirmation do not match")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// ValidateLogin checks the sign-in form before Login is called.
func ValidateLogin(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingFields
	}
	return nil
}

// ValidateRegistration checks the sign-up form before Register is called.
func ValidateRegistration(username, password, confirm string, minLen int) error {
	if err := ValidateLogin(username, password); err != nil {
		return err
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len([]rune(password)) < minLen {
		return ErrPasswordTooShort
	}
	return nil
}
