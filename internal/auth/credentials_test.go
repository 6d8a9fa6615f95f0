package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/grocer/internal/database"
	"github.com/dukerupert/grocer/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupCredentialStore(t *testing.T, hasher Hasher) (*CredentialStore, *store.MemoryKV) {
	t.Helper()
	kv := store.NewMemoryKV()
	cs := NewCredentialStore(kv, hasher, discardLogger())
	cs.Initialize()
	return cs, kv
}

func directory(t *testing.T, kv store.Backend) map[string]string {
	t.Helper()
	raw, ok, err := kv.Get(store.KeyUsersDirectory)
	if err != nil {
		t.Fatalf("get directory: %v", err)
	}
	dir := map[string]string{}
	if !ok {
		return dir
	}
	if err := json.Unmarshal([]byte(raw), &dir); err != nil {
		t.Fatalf("decode directory: %v", err)
	}
	return dir
}

func TestRegister(t *testing.T) {
	cs, kv := setupCredentialStore(t, nil)

	ok, err := cs.Register("alice", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !ok {
		t.Fatal("expected registration to succeed")
	}

	u, signedIn := cs.CurrentUser()
	if !signedIn || u.Username != "alice" {
		t.Errorf("current user = %+v (%v), want alice", u, signedIn)
	}
	if cs.IsLoading() {
		t.Error("expected loading = false after register")
	}

	if got := directory(t, kv)["alice"]; got != "secret1" {
		t.Errorf("directory[alice] = %q, want %q", got, "secret1")
	}
	raw, ok, _ := kv.Get(store.KeyCurrentSessionUser)
	if !ok || raw != `{"username":"alice"}` {
		t.Errorf("session = %q (%v)", raw, ok)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	cs, kv := setupCredentialStore(t, nil)

	if ok, _ := cs.Register("alice", "secret1"); !ok {
		t.Fatal("first register failed")
	}
	ok, err := cs.Register("alice", "other")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if ok {
		t.Error("expected duplicate registration to fail")
	}
	if got := directory(t, kv)["alice"]; got != "secret1" {
		t.Errorf("directory[alice] = %q, want %q", got, "secret1")
	}
}

func TestRegisterIsCaseSensitive(t *testing.T) {
	cs, kv := setupCredentialStore(t, nil)

	cs.Register("alice", "secret1")
	if ok, _ := cs.Register("Alice", "secret2"); !ok {
		t.Error("expected differently cased username to register")
	}
	if got := len(directory(t, kv)); got != 2 {
		t.Errorf("directory size = %d, want 2", got)
	}
}

func TestLogin(t *testing.T) {
	cs, _ := setupCredentialStore(t, nil)
	cs.Register("alice", "secret1")
	cs.Logout()

	ok, err := cs.Login("alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !ok {
		t.Fatal("expected login to succeed")
	}
	if u, _ := cs.CurrentUser(); u.Username != "alice" {
		t.Errorf("current user = %q, want %q", u.Username, "alice")
	}
}

func TestLoginRejected(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "bob", "secret1"},
		{"whitespace not trimmed", "alice ", "secret1"},
		{"password case", "alice", "SECRET1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, kv := setupCredentialStore(t, nil)
			cs.Register("alice", "secret1")
			cs.Logout()

			ok, err := cs.Login(tt.username, tt.password)
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if ok {
				t.Error("expected login to fail")
			}
			if _, signedIn := cs.CurrentUser(); signedIn {
				t.Error("expected no session")
			}
			if _, ok, _ := kv.Get(store.KeyCurrentSessionUser); ok {
				t.Error("expected no persisted session")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	cs, kv := setupCredentialStore(t, nil)
	cs.Register("alice", "secret1")
	cs.SetRemember(true)

	if err := cs.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, signedIn := cs.CurrentUser(); signedIn {
		t.Error("expected no session after logout")
	}
	if _, ok, _ := kv.Get(store.KeyCurrentSessionUser); ok {
		t.Error("expected session record removed")
	}
	if _, ok, _ := kv.Get(store.KeyRememberSession); ok {
		t.Error("expected remember flag removed")
	}
	if _, ok := directory(t, kv)["alice"]; !ok {
		t.Error("directory entry must survive logout")
	}
}

func TestInitializeRestoresRememberedSession(t *testing.T) {
	kv := store.NewMemoryKV()
	first := NewCredentialStore(kv, nil, discardLogger())
	first.Initialize()
	first.Register("alice", "secret1")
	if err := first.SetRemember(true); err != nil {
		t.Fatalf("set remember: %v", err)
	}

	second := NewCredentialStore(kv, nil, discardLogger())
	if !second.IsLoading() {
		t.Error("expected loading before Initialize")
	}
	second.Initialize()
	if second.IsLoading() {
		t.Error("expected loading = false after Initialize")
	}
	u, ok := second.CurrentUser()
	if !ok || u.Username != "alice" {
		t.Errorf("restored user = %+v (%v), want alice", u, ok)
	}
}

func TestInitializeWithoutRememberFlag(t *testing.T) {
	kv := store.NewMemoryKV()
	first := NewCredentialStore(kv, nil, discardLogger())
	first.Initialize()
	first.Register("alice", "secret1")

	second := NewCredentialStore(kv, nil, discardLogger())
	second.Initialize()
	if _, ok := second.CurrentUser(); ok {
		t.Error("session must not be restored without the remember flag")
	}

	first.SetRemember(true)
	first.SetRemember(false)
	third := NewCredentialStore(kv, nil, discardLogger())
	third.Initialize()
	if _, ok := third.CurrentUser(); ok {
		t.Error("session must not be restored after remember was turned off")
	}
}

func TestInitializeIgnoresCorruptSession(t *testing.T) {
	kv := store.NewMemoryKV()
	kv.Set(store.KeyRememberSession, "true")
	kv.Set(store.KeyCurrentSessionUser, "{oops")

	cs := NewCredentialStore(kv, nil, discardLogger())
	cs.Initialize()
	if _, ok := cs.CurrentUser(); ok {
		t.Error("expected no session from corrupt record")
	}
	if cs.IsLoading() {
		t.Error("expected loading = false")
	}
}

func TestRegisterWriteFailure(t *testing.T) {
	cs, kv := setupCredentialStore(t, nil)
	kv.FailWrites(store.ErrWriteFailed)

	ok, err := cs.Register("alice", "secret1")
	if ok {
		t.Error("expected registration to fail")
	}
	if !errors.Is(err, store.ErrWriteFailed) {
		t.Errorf("err = %v, want %v", err, store.ErrWriteFailed)
	}
	if _, signedIn := cs.CurrentUser(); signedIn {
		t.Error("expected no session")
	}
}

func TestCorruptDirectory(t *testing.T) {
	cs, kv := setupCredentialStore(t, nil)
	kv.Set(store.KeyUsersDirectory, "not json")

	ok, err := cs.Login("alice", "secret1")
	if ok || err == nil {
		t.Errorf("login = (%v, %v), want (false, error)", ok, err)
	}
}

func TestBcryptDirectoryStoresVerifier(t *testing.T) {
	cs, kv := setupCredentialStore(t, BcryptHasher{Cost: 4})

	if ok, err := cs.Register("alice", "secret1"); !ok || err != nil {
		t.Fatalf("register = (%v, %v)", ok, err)
	}
	stored := directory(t, kv)["alice"]
	if stored == "secret1" || stored == "" {
		t.Errorf("directory holds %q, want a bcrypt hash", stored)
	}
	cs.Logout()

	if ok, _ := cs.Login("alice", "wrong"); ok {
		t.Error("expected wrong password rejected")
	}
	if ok, _ := cs.Login("alice", "secret1"); !ok {
		t.Error("expected correct password accepted")
	}

	has, err := cs.HasUser("alice")
	if err != nil || !has {
		t.Errorf("HasUser = (%v, %v), want (true, nil)", has, err)
	}
}

func TestCredentialStoreOnSQLite(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	kv := store.NewKVStore(db)

	cs := NewCredentialStore(kv, nil, discardLogger())
	cs.Initialize()
	cs.Register("alice", "secret1")
	cs.SetRemember(true)

	restored := NewCredentialStore(kv, nil, discardLogger())
	restored.Initialize()
	if u, ok := restored.CurrentUser(); !ok || u.Username != "alice" {
		t.Errorf("restored = %+v (%v), want alice", u, ok)
	}
}
