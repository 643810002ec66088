// Package auth holds registered user credentials and the server that runs
// the credential-check chain on login.
//
// Users are loaded from a text file (one "email:password" pair per line) or
// from the comma-separated HANDOFF_USERS environment variable. Lines
// starting with # are treated as comments. Empty lines are ignored.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// UsersEnv overrides the users file when set.
const UsersEnv = "HANDOFF_USERS"

// ErrInvalidEntry is returned for a user entry that is not "email:password".
var ErrInvalidEntry = errors.New("invalid user entry")

// Store maps emails to bcrypt password hashes. Reads may run concurrently;
// registrations are serialized.
type Store struct {
	mu    sync.RWMutex
	users map[string][]byte
	cost  int
}

// NewStore returns an empty Store hashing with the given bcrypt cost. A
// cost outside bcrypt's range uses bcrypt.DefaultCost.
func NewStore(cost int) *Store {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Store{users: make(map[string][]byte), cost: cost}
}

// LoadStore creates a Store and registers users from the given file path.
// If HANDOFF_USERS is set, those users take precedence over the file.
func LoadStore(path string, cost int) (*Store, error) {
	s := NewStore(cost)

	if env := os.Getenv(UsersEnv); env != "" {
		for _, entry := range strings.Split(env, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			if err := s.registerEntry(entry); err != nil {
				return nil, fmt.Errorf("%s: %w", UsersEnv, err)
			}
		}
		if s.Count() == 0 {
			return nil, fmt.Errorf("%s is set but contains no users", UsersEnv)
		}
		return s, nil
	}

	if path == "" {
		return nil, fmt.Errorf("no users file path provided and %s is not set", UsersEnv)
	}

	if err := s.loadFile(path); err != nil {
		return nil, fmt.Errorf("load users file: %w", err)
	}

	if s.Count() == 0 {
		return nil, fmt.Errorf("users file %q contains no users", path)
	}

	return s, nil
}

// Register stores password for email, replacing any earlier registration.
func (s *Store) Register(email, password string) error {
	if email == "" {
		return fmt.Errorf("%w: empty email", ErrInvalidEntry)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = hash
	return nil
}

// HasEmail reports whether email is registered.
func (s *Store) HasEmail(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[email]
	return ok
}

// ValidPassword reports whether password matches the one registered for
// email. Unknown emails never match.
func (s *Store) ValidPassword(email, password string) bool {
	s.mu.RLock()
	hash, ok := s.users[email]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// Count returns the number of registered users.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// registerEntry parses and registers one "email:password" entry.
func (s *Store) registerEntry(entry string) error {
	email, password, ok := strings.Cut(entry, ":")
	email = strings.TrimSpace(email)
	if !ok || email == "" {
		return fmt.Errorf("%w: want email:password", ErrInvalidEntry)
	}
	return s.Register(email, password)
}

// loadFile reads users from a text file, one per line.
func (s *Store) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := s.registerEntry(text); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}
