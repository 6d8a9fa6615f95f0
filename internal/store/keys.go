package store

// Storage keys. Each key is owned by exactly one store.
const (
	KeyUsersDirectory     = "users-directory"
	KeyCurrentSessionUser = "current-session-user"
	KeyRememberSession    = "remember-session-flag"
	KeyGroceryItems       = "grocery-items"
)

// Backend is a flat string key/value namespace, the persistence surface
// shared by the credential and list stores.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}
