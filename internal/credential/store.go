package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound means no credentials file exists yet (fresh install or
// logged out). ErrCorrupt means a file exists but could not be parsed into
// well-formed credentials; callers log the distinction and treat both as
// logged-out.
var (
	ErrNotFound = errors.New("credentials not found")
	ErrCorrupt  = errors.New("credentials file corrupt")
)

const credentialsFile = "credentials.json"

// Store persists credentials under a fixed directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create credential dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, credentialsFile)
}

// Save writes the credentials file, replacing any previous identity.
func (s *Store) Save(c Credentials) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Load reads the persisted credentials. A missing file is ErrNotFound; an
// unparsable or incomplete file is ErrCorrupt.
func (s *Store) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, ErrNotFound
		}
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if c.SESSDATA == "" || c.BiliJCT == "" || c.DedeUserID == "" {
		return Credentials{}, fmt.Errorf("%w: missing mandatory field", ErrCorrupt)
	}
	return c, nil
}

// Remove deletes the credentials file. Absence is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// ExportNetscape writes the three mandatory cookies as a Netscape cookie
// file scoped to .bilibili.com and returns its path. The file holds the
// live session token, so callers delete it as soon as the consuming
// process exits.
func (s *Store) ExportNetscape(c Credentials) (string, error) {
	path := filepath.Join(s.dir, "cookies.txt")
	body := fmt.Sprintf(
		"# Netscape HTTP Cookie File\n"+
			".bilibili.com\tTRUE\t/\tTRUE\t0\tSESSDATA\t%s\n"+
			".bilibili.com\tTRUE\t/\tFALSE\t0\tbili_jct\t%s\n"+
			".bilibili.com\tTRUE\t/\tFALSE\t0\tDedeUserID\t%s\n",
		c.SESSDATA, c.BiliJCT, c.DedeUserID,
	)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return "", fmt.Errorf("write cookie jar: %w", err)
	}
	return path, nil
}
