package model

// User is the signed-in identity. The directory holds only a credential
// verifier per username, never a User.
type User struct {
	Username string `json:"username"`
}
