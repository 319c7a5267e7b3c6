// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package auth provides bearer-token authentication for the pipeline's
// optional HTTP API. There is a single access level (the API has no
// dashboard and no per-resource ownership model): a caller either holds a
// valid token or does not.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"grimm.is/fwpolicy/internal/errors"
)

// Token is a bcrypt-hashed API credential.
type Token struct {
	Label     string    `json:"label"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists a small set of API tokens to a JSON file. It is safe for
// concurrent use; every mutation is written atomically (write-to-temp then
// rename) so a crash mid-write never corrupts the file.
type Store struct {
	path   string
	tokens map[string]*Token // keyed by label
	mu     sync.RWMutex
}

// NewStore loads (or lazily creates) a token store at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New(errors.KindValidation, "token store path cannot be empty")
	}

	s := &Store{
		path:   path,
		tokens: make(map[string]*Token),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, errors.KindInternal, "failed to load token store")
	}

	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var tokens map[string]*Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tokens == nil {
		tokens = make(map[string]*Token)
	}
	s.tokens = tokens
	return nil
}

// saveLocked writes the token set to disk. Caller must hold s.mu.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.tokens, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// IsEmpty reports whether no tokens have been issued. The HTTP server uses
// this to decide whether to require a bearer token at all — an API with no
// issued tokens runs open, matching the "auth is optional" design in
// SPEC_FULL.md §4.8.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens) == 0
}

// Issue generates a new random bearer token, stores its bcrypt hash under
// label, and returns the plaintext token (shown to the caller exactly once).
func (s *Store) Issue(label string) (string, error) {
	if label == "" {
		return "", errors.New(errors.KindValidation, "token label cannot be empty")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, errors.KindInternal, "failed to generate token")
	}
	plaintext := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, errors.KindInternal, "failed to hash token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[label]; exists {
		return "", errors.Errorf(errors.KindConflict, "token label already exists: %s", label)
	}

	s.tokens[label] = &Token{
		Label:     label,
		Hash:      string(hash),
		CreatedAt: time.Now(),
	}

	if err := s.saveLocked(); err != nil {
		return "", err
	}

	return plaintext, nil
}

// Verify reports whether candidate matches any issued token.
func (s *Store) Verify(candidate string) bool {
	if candidate == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if bcrypt.CompareHashAndPassword([]byte(t.Hash), []byte(candidate)) == nil {
			return true
		}
	}
	return false
}

// Revoke removes a token by label.
func (s *Store) Revoke(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[label]; !exists {
		return errors.Errorf(errors.KindNotFound, "token label not found: %s", label)
	}
	delete(s.tokens, label)
	return s.saveLocked()
}

// Labels lists the labels of all issued tokens (never their hashes).
func (s *Store) Labels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	labels := make([]string, 0, len(s.tokens))
	for l := range s.tokens {
		labels = append(labels, l)
	}
	return labels
}
