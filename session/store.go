// Package session persists the authenticated session (bearer token plus
// user profile) across invocations. A single JSON file under the user
// config directory replaces the two separate entries the browser client
// kept, so a session is never half-written.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360studio/taskdeck/task"
)

const (
	// userConfigDir is the directory under $HOME for taskdeck state.
	userConfigDir = ".config/taskdeck"
	// sessionFile is the name of the persisted session file.
	sessionFile = "session.json"
)

// ErrNoSession indicates no usable session is persisted. A missing,
// unreadable, or corrupt session file all map here: the caller treats
// every one of those as "not logged in".
var ErrNoSession = errors.New("no session")

// Session is the authenticated identity held by the client.
type Session struct {
	Token string    `json:"token"`
	User  task.User `json:"user"`
}

// Store reads and writes the session file. It never performs network I/O.
type Store struct {
	path   string
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPath overrides the session file location.
func WithPath(path string) StoreOption {
	return func(s *Store) {
		s.path = path
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store using the default path under the user config
// directory unless overridden.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.path == "" {
		s.path = defaultPath()
	}
	return s
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return sessionFile
	}
	return filepath.Join(home, userConfigDir, sessionFile)
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted session. It fails soft: any problem short of
// a valid session yields ErrNoSession.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Session file unreadable, treating as absent",
				slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return nil, ErrNoSession
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn("Session file corrupt, treating as absent",
			slog.String("path", s.path), slog.String("error", err.Error()))
		return nil, ErrNoSession
	}
	if sess.Token == "" {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Save persists the session atomically: marshal, write to a temp file in
// the same directory, then rename over the destination.
func (s *Store) Save(sess *Session) error {
	if sess == nil || sess.Token == "" {
		return fmt.Errorf("refusing to save empty session")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, sessionFile+".*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	s.logger.Debug("Session saved", slog.String("path", s.path))
	return nil
}

// Clear removes the persisted session. A session that was never saved is
// not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
