// ABOUTME: Persistent credential store for the session token and theme preference
// ABOUTME: Stores a versioned JSON document in the XDG config directory with in-memory fallback

package credstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// SchemaVersion is the version written to state.json.
// Documents with any other version are ignored on load.
const SchemaVersion = 1

// fileName is the state document inside the config directory
const fileName = "state.json"

// Store holds the auth token and the dark mode flag.
// Writes replace the whole value; readers never observe a partial write.
type Store interface {
	Token() (string, bool)
	SetToken(token string)
	ClearToken()
	// ClearTokenIf removes the token only if it still equals token.
	ClearTokenIf(token string) bool
	DarkMode() bool
	SetDarkMode(dark bool)
}

type document struct {
	Version  int    `json:"version"`
	Token    string `json:"token,omitempty"`
	DarkMode bool   `json:"dark_mode"`
}

// FileStore persists the document to disk. When the directory or file is
// unusable it keeps working in memory and reports Degraded.
type FileStore struct {
	mu       sync.Mutex
	dir      string
	doc      document
	degraded bool
	log      *slog.Logger
}

// Open loads the store from dir. It never fails: an unusable dir yields a
// degraded, memory-only store.
func Open(dir string, log *slog.Logger) *FileStore {
	if log == nil {
		log = slog.Default()
	}
	fs := &FileStore{
		dir: dir,
		doc: document{Version: SchemaVersion},
		log: log,
	}

	if dir == "" {
		fs.degrade("no config directory available", nil)
		return fs
	}

	data, err := os.ReadFile(fs.path())
	if os.IsNotExist(err) {
		return fs
	}
	if err != nil {
		fs.degrade("cannot read credential store", err)
		return fs
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		// Corrupt file, start fresh
		fs.log.Warn("Ignoring unreadable credential store", "path", fs.path(), "error", err)
		return fs
	}
	if doc.Version != SchemaVersion {
		fs.log.Warn("Ignoring credential store with unknown schema version", "path", fs.path(), "version", doc.Version)
		return fs
	}

	fs.doc = doc
	return fs
}

// path returns the location of the state document
func (fs *FileStore) path() string {
	return filepath.Join(fs.dir, fileName)
}

// Degraded reports whether the store has fallen back to memory only
func (fs *FileStore) Degraded() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.degraded
}

// Token returns the stored token, if any
func (fs *FileStore) Token() (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.doc.Token, fs.doc.Token != ""
}

// SetToken overwrites the stored token
func (fs *FileStore) SetToken(token string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	next := fs.doc
	next.Token = token
	fs.replace(next)
}

// ClearToken removes the stored token
func (fs *FileStore) ClearToken() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.doc.Token == "" {
		return
	}
	next := fs.doc
	next.Token = ""
	fs.replace(next)
}

// ClearTokenIf removes the stored token if it equals token
func (fs *FileStore) ClearTokenIf(token string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.doc.Token == "" || fs.doc.Token != token {
		return false
	}
	next := fs.doc
	next.Token = ""
	fs.replace(next)
	return true
}

// DarkMode returns the persisted theme preference
func (fs *FileStore) DarkMode() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.doc.DarkMode
}

// SetDarkMode persists the theme preference
func (fs *FileStore) SetDarkMode(dark bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	next := fs.doc
	next.DarkMode = dark
	fs.replace(next)
}

// replace swaps in next and writes it to disk. Caller holds mu.
func (fs *FileStore) replace(next document) {
	next.Version = SchemaVersion
	fs.doc = next
	if fs.degraded {
		return
	}
	if err := fs.write(next); err != nil {
		fs.degrade("cannot write credential store", err)
	}
}

// write atomically replaces the file with doc
func (fs *FileStore) write(doc document) error {
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fs.dir, fileName+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, fs.path()); err != nil {
		return fmt.Errorf("replace %s: %w", fs.path(), err)
	}
	return nil
}

// degrade switches to memory-only operation and logs once. Caller holds mu
// (or is Open, before the store is shared).
func (fs *FileStore) degrade(reason string, err error) {
	if fs.degraded {
		return
	}
	fs.degraded = true
	fs.log.Warn("Credential store unavailable, keeping state in memory only",
		"reason", reason,
		"dir", fs.dir,
		"error", err,
	)
}
