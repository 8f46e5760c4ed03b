// Package credential keeps the session credential between runs.
package credential

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"filedesk/internal/util/logx"
)

// Store holds at most one credential. Absence means unauthenticated.
type Store interface {
	Save(token string) error
	Load() (string, bool)
	Clear() error
}

type record struct {
	Origin  string    `json:"origin"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"savedAt"`
}

// FileStore persists the credential for one backend origin under dir.
type FileStore struct {
	mu     sync.Mutex
	dir    string
	origin string
}

func NewFileStore(dir, origin string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("credential: empty directory")
	}
	if strings.TrimSpace(origin) == "" {
		return nil, errors.New("credential: empty origin")
	}
	return &FileStore{dir: dir, origin: origin}, nil
}

func (s *FileStore) path() string {
	h := sha1.Sum([]byte(strings.ToLower(s.origin)))
	return filepath.Join(s.dir, "credentials", fmt.Sprintf("cred_%s.json", hex.EncodeToString(h[:])))
}

func (s *FileStore) Save(token string) error {
	if token == "" {
		return errors.New("credential: empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.path()
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	tmp := p + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record{Origin: s.origin, Token: token, SavedAt: time.Now().UTC()}); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	logx.Debugf("credential: saved for %s", s.origin)
	return nil
}

func (s *FileStore) Load() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path())
	if err != nil {
		return "", false
	}
	defer f.Close()
	var r record
	if err := json.NewDecoder(f).Decode(&r); err != nil {
		logx.Warnf("credential: ignoring unreadable store: %v", err)
		return "", false
	}
	if r.Token == "" {
		return "", false
	}
	return r.Token, true
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	logx.Debugf("credential: cleared for %s", s.origin)
	return nil
}

// MemoryStore is used for --ephemeral runs and tests.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore(token string) *MemoryStore { return &MemoryStore{token: token} }

func (m *MemoryStore) Save(token string) error {
	if token == "" {
		return errors.New("credential: empty token")
	}
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
