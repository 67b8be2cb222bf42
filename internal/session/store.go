// Package session holds the bearer token for the current session.
//
// The store is injected explicitly into the HTTP client and the auth service;
// nothing reads it as ambient global state. Invariant: the token is either
// absent or attached to every outgoing backend request.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store is a single-slot token store.
type Store interface {
	// Get returns the stored token, and whether one is stored.
	Get() (string, bool)
	// Set replaces the stored token.
	Set(token string) error
	// Clear removes the stored token. Clearing an empty store is a no-op.
	Clear()
}

// Memory is a mutex-guarded in-memory store. The zero value is ready to use.
type Memory struct {
	mu    sync.Mutex
	token string
}

var _ Store = (*Memory)(nil)

func (m *Memory) Get() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *Memory) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}

// defaultAccessTTL is assumed when the token carries no exp claim.
const defaultAccessTTL = 15 * time.Minute

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// File persists the token as token.json under dir, so the session survives
// between CLI invocations. An expired file counts as no token.
type File struct {
	dir string
}

var _ Store = (*File)(nil)

// NewFile returns a file store rooted at dir.
func NewFile(dir string) *File { return &File{dir: dir} }

// DefaultDir is $XDG_CONFIG_HOME/articlecheck, falling back to
// ~/.config/articlecheck.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "articlecheck")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "articlecheck")
}

func (f *File) path() string { return filepath.Join(f.dir, "token.json") }

func (f *File) Get() (string, bool) {
	b, err := os.ReadFile(f.path())
	if err != nil {
		return "", false
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", false
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", false
	}
	return tf.AccessToken, true
}

// Set writes the token with its expiry. The exp claim is read without
// signature validation; the client only needs to know when to stop sending
// the token, the backend stays the authority on validity.
func (f *File) Set(token string) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}

	exp := time.Now().Add(defaultAccessTTL)
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	b, err := json.MarshalIndent(tokenFile{AccessToken: token, ExpiresAt: exp}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(), b, 0o600)
}

func (f *File) Clear() {
	_ = os.Remove(f.path())
}
