package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Slot names shared by the static layer and the persisted store.
const (
	KeyAPIKey    = "GEMINI_API_KEY"
	KeyScriptURL = "GOOGLE_SCRIPT_URL"
)

// Values is one source of credentials. Empty string means unset.
type Values struct {
	APIKey    string
	ScriptURL string
}

// Store persists credentials in a dotenv file.
//
// The file holds the two slots GEMINI_API_KEY and GOOGLE_SCRIPT_URL. Other
// keys in the file are preserved on write.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store backed by path. The file is created on first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted values. A missing file yields empty values.
func (s *Store) Load() (Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return Values{}, err
	}
	return Values{
		APIKey:    strings.TrimSpace(m[KeyAPIKey]),
		ScriptURL: strings.TrimSpace(m[KeyScriptURL]),
	}, nil
}

// Save writes the non-empty fields of v, leaving the other slot untouched.
func (s *Store) Save(v Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return err
	}
	if v.APIKey != "" {
		m[KeyAPIKey] = v.APIKey
	}
	if v.ScriptURL != "" {
		m[KeyScriptURL] = v.ScriptURL
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := godotenv.Write(m, s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	// the file holds an API key
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("chmod settings: %w", err)
	}
	return nil
}

// read must be called with mu held.
func (s *Store) read() (map[string]string, error) {
	m, err := godotenv.Read(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", s.path, err)
	}
	return m, nil
}
