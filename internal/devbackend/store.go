package devbackend

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/google/uuid"

	"filedesk/internal/model"
)

var (
	errUserExists = errors.New("User already exists")
	errBadLogin   = errors.New("Invalid credentials")
	errNotFound   = errors.New("File not found")
)

type storedFile struct {
	record model.FileRecord
	data   []byte
}

// Store is the in-memory state shared by the three backend surfaces.
type Store struct {
	mu       sync.RWMutex
	users    map[string]string // username -> password hash
	userIDs  map[string]int
	sessions map[string]string // token -> username
	files    []*storedFile
}

func NewStore() *Store {
	return &Store{
		users:    map[string]string{},
		userIDs:  map[string]int{},
		sessions: map[string]string{},
	}
}

func hashPassword(p string) string {
	h := sha256.Sum256([]byte(p))
	return hex.EncodeToString(h[:])
}

func (s *Store) Register(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return errUserExists
	}
	s.users[username] = hashPassword(password)
	s.userIDs[username] = len(s.userIDs) + 1
	return nil
}

func (s *Store) Login(username, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.users[username]; !ok || h != hashPassword(password) {
		return "", errBadLogin
	}
	tok := uuid.New().String()
	s.sessions[tok] = username
	return tok, nil
}

// Session returns the user id behind tok.
func (s *Store) Session(tok string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.sessions[tok]
	if !ok {
		return 0, false
	}
	return s.userIDs[u], true
}

func (s *Store) Logout(tok string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[tok]; !ok {
		return false
	}
	delete(s.sessions, tok)
	return true
}

// Put adds or replaces a file, keeping insertion order for new names.
func (s *Store) Put(rec model.FileRecord, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.record.Filename == rec.Filename {
			f.record, f.data = rec, data
			return
		}
	}
	s.files = append(s.files, &storedFile{record: rec, data: data})
}

func (s *Store) List() []model.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FileRecord, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f.record)
	}
	return out
}

func (s *Store) Get(name string) (model.FileRecord, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f.record.Filename == name {
			return f.record, f.data, nil
		}
	}
	return model.FileRecord{}, nil, errNotFound
}

func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.files {
		if f.record.Filename == name {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return nil
		}
	}
	return errNotFound
}
