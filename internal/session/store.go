package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/keyring"
	"github.com/julianstephens/mealplanner/internal/logger"
)

// Session is the persisted identity: a bearer token and the display name
// returned at login.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
}

// Store persists a single session across process restarts.
type Store interface {
	// Load returns the zero Session when nothing is stored.
	Load() (Session, error)
	Save(Session) error
	Clear() error
	Name() string
}

// KeyringStore keeps the token and username in the OS keyring.
type KeyringStore struct{}

func (KeyringStore) Name() string { return "keyring" }

func (KeyringStore) Load() (Session, error) {
	var s Session
	token, err := keyring.Get(constants.KeyringTokenUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Session{}, nil
		}
		return Session{}, err
	}
	s.Token = token

	username, err := keyring.Get(constants.KeyringUsernameUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return Session{}, err
	}
	s.Username = username
	return s, nil
}

func (KeyringStore) Save(s Session) error {
	if err := keyring.Set(constants.KeyringTokenUser, s.Token); err != nil {
		return err
	}
	if s.Username == "" {
		if err := keyring.Delete(constants.KeyringUsernameUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
		return nil
	}
	return keyring.Set(constants.KeyringUsernameUser, s.Username)
}

func (KeyringStore) Clear() error {
	for _, key := range []string{constants.KeyringTokenUser, constants.KeyringUsernameUser} {
		if err := keyring.Delete(key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
	}
	return nil
}

// FileStore keeps the session in a JSON file readable only by the owner.
// It is used when no OS keyring is available.
type FileStore struct {
	path string
}

// NewFileStore keeps the session in a file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Name() string { return "file:" + f.path }

func (f *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return s, nil
}

func (f *FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// NewDefaultStore prefers the OS keyring and falls back to a session file
// under configDir.
func NewDefaultStore(configDir string) Store {
	if keyring.IsAvailable() {
		return KeyringStore{}
	}
	path := filepath.Join(configDir, constants.SessionFileName)
	logger.Warn("OS keyring unavailable, storing session in file", "path", path)
	return NewFileStore(path)
}
