package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore holds the session's token pair. The client re-reads the store
// before every request, so a store shared with another process always wins
// over whatever the client saw last.
type TokenStore interface {
	Access() string
	Refresh() string
	SetPair(access, refresh string)
	SetAccess(access string)
	Clear()
}

// MemoryTokenStore keeps the pair in process memory. Safe for concurrent use.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryTokenStore) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryTokenStore) SetPair(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

func (s *MemoryTokenStore) SetAccess(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}

// FileTokenStore persists the pair as JSON on disk so CLI sessions survive
// process restarts. Every read hits the file, matching TokenStore's contract.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

type tokenFile struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) load() tokenFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return tokenFile{}
	}
	var tf tokenFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return tokenFile{}
	}
	return tf
}

func (s *FileTokenStore) save(tf tokenFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(tf)
	if err != nil {
		return fmt.Errorf("client: encode token file: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("client: create token dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("client: write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Access() string  { return s.load().Access }
func (s *FileTokenStore) Refresh() string { return s.load().Refresh }

func (s *FileTokenStore) SetPair(access, refresh string) {
	_ = s.save(tokenFile{Access: access, Refresh: refresh})
}

func (s *FileTokenStore) SetAccess(access string) {
	tf := s.load()
	tf.Access = access
	_ = s.save(tf)
}

func (s *FileTokenStore) Clear() {
	_ = os.Remove(s.path)
}

// ExpiresWithin reports whether the JWT's exp claim falls inside window from
// now. Signature is not verified; the server remains the authority and a
// wrong guess only costs an extra refresh round trip. Unparseable tokens
// report true so callers refresh rather than send something broken.
func ExpiresWithin(token string, window time.Duration) bool {
	if token == "" {
		return true
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Until(exp.Time) <= window
}
