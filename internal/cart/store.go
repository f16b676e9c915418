package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// Store is the local durable cart cache, keyed by store owner and session.
// Load returns (nil, nil) when nothing was saved for the session.
type Store interface {
	Load(ctx context.Context, ownerID, sessionID string) ([]CartItem, error)
	Save(ctx context.Context, ownerID, sessionID string, items []CartItem) error
}

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidSessionID reports whether id can be used as a store key.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

type persistedCart struct {
	Items   []CartItem `json:"items"`
	SavedAt time.Time  `json:"savedAt"`
}

// FileStore keeps one JSON document per session under dir/<owner>.
type FileStore struct {
	dir string
	now func() time.Time
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart store dir: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

func (f *FileStore) path(ownerID, sessionID string) (string, error) {
	if !ValidSessionID(ownerID) {
		return "", ErrInvalidOwnerID
	}
	if !ValidSessionID(sessionID) {
		return "", ErrInvalidSessionID
	}
	return filepath.Join(f.dir, ownerID, sessionID+".json"), nil
}

func (f *FileStore) Load(ctx context.Context, ownerID, sessionID string) ([]CartItem, error) {
	p, err := f.path(ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}

	var doc persistedCart
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}
	if doc.Items == nil {
		doc.Items = []CartItem{}
	}
	return doc.Items, nil
}

// Save writes through a temp file and rename so a crash never leaves a
// half-written cart behind.
func (f *FileStore) Save(ctx context.Context, ownerID, sessionID string, items []CartItem) error {
	p, err := f.path(ownerID, sessionID)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}

	b, err := json.Marshal(persistedCart{Items: cloneItems(items), SavedAt: f.now().UTC()})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}

	tmp, err := os.CreateTemp(dir, sessionID+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveCart, err)
	}
	return nil
}
