package portal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "coursecrawl"
	fallbackDir    = ".coursecrawl/sessions"
)

// Session holds portal cookies saved between runs, so a run that passed a
// bot check or picked up load-balancer affinity cookies can resume without
// renegotiating them.
type Session struct {
	Name      string    `json:"name"`
	BaseURL   string    `json:"base_url"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Cookie is the persisted subset of http.Cookie.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// SessionStore persists sessions in the OS keyring, falling back to files
// under ~/.coursecrawl/sessions where no keyring is available (CI, headless
// servers).
type SessionStore struct {
	mu       sync.Mutex
	fileOnly *bool
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// useFiles probes keyring availability once and caches the answer.
func (s *SessionStore) useFiles() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fileOnly != nil {
		return *s.fileOnly
	}

	result := os.Getenv("CI") != "" || os.Getenv("CODESPACES") != ""
	if !result {
		if err := keyring.Set(keyringService, "_probe", "ok"); err != nil {
			result = true
		} else {
			_ = keyring.Delete(keyringService, "_probe")
		}
	}

	s.fileOnly = &result
	return result
}

func sessionPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, fallbackDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// Save persists a session under its name, overwriting any previous one.
func (s *SessionStore) Save(sess *Session) error {
	if sess.Name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if s.useFiles() {
		path, err := sessionPath(sess.Name)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o600)
	}

	if err := keyring.Set(keyringService, sess.Name, string(data)); err != nil {
		return fmt.Errorf("keyring: %w", err)
	}
	return nil
}

// Load retrieves a saved session, rejecting expired ones.
func (s *SessionStore) Load(name string) (*Session, error) {
	if name == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}

	var data string
	if s.useFiles() {
		path, err := sessionPath(name)
		if err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read session: %w", err)
		}
		data = string(raw)
	} else {
		var err error
		data, err = keyring.Get(keyringService, name)
		if err != nil {
			return nil, fmt.Errorf("keyring: %w", err)
		}
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		return nil, fmt.Errorf("session %q expired at %s", name, sess.ExpiresAt.Format(time.RFC3339))
	}

	return &sess, nil
}

// Delete removes a saved session. Missing sessions are not an error.
func (s *SessionStore) Delete(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	if s.useFiles() {
		path, err := sessionPath(name)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	if err := keyring.Delete(keyringService, name); err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("keyring: %w", err)
	}
	return nil
}

// List returns the names of all saved sessions. Only the file store can
// enumerate; the keyring has no listing API, so it returns nothing there.
func (s *SessionStore) List() ([]string, error) {
	if !s.useFiles() {
		return nil, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(home, fallbackDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	return names, nil
}

// ApplySession loads a saved session into the client's cookie jar.
func (c *Client) ApplySession(store *SessionStore, name string) error {
	sess, err := store.Load(name)
	if err != nil {
		return err
	}

	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("portal: base URL: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(sess.Cookies))
	for _, ck := range sess.Cookies {
		cookies = append(cookies, &http.Cookie{
			Name:     ck.Name,
			Value:    ck.Value,
			Domain:   ck.Domain,
			Path:     ck.Path,
			Expires:  ck.Expires,
			Secure:   ck.Secure,
			HttpOnly: ck.HTTPOnly,
		})
	}
	c.jar.SetCookies(base, cookies)
	return nil
}

// ExportSession snapshots the client's current cookies as a named session.
func (c *Client) ExportSession(name string) (*Session, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("portal: base URL: %w", err)
	}

	var cookies []Cookie
	for _, ck := range c.jar.Cookies(base) {
		cookies = append(cookies, Cookie{Name: ck.Name, Value: ck.Value, Path: ck.Path})
	}

	return &Session{
		Name:      name,
		BaseURL:   c.cfg.BaseURL,
		Cookies:   cookies,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(12 * time.Hour),
	}, nil
}
