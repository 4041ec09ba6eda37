package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/giygas/medreminder/interfaces"
	"github.com/giygas/medreminder/logging"
	"github.com/giygas/medreminder/medicine"
)

// Blob keys
const (
	KeyMedicines = "medicines"
	KeyLastReset = "lastResetDate"
)

// Compile-time check to ensure FileStore implements Store
var _ interfaces.Store = (*FileStore)(nil)

// FileStore persists the blob as one JSON object on disk. Each write
// rewrites the whole file; the last writer wins.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a store backed by path, creating its directory
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file
func (fs *FileStore) Path() string {
	return fs.path
}

// Load returns the persisted records, or an empty sequence if none exist
func (fs *FileStore) Load() ([]medicine.Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	blob, err := fs.readBlob()
	if err != nil {
		return nil, err
	}

	raw, ok := blob[KeyMedicines]
	if !ok || string(raw) == "null" {
		return []medicine.Record{}, nil
	}

	var records []medicine.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", KeyMedicines, err)
	}

	for i := range records {
		records[i].Normalize()
	}
	return records, nil
}

// Save replaces the persisted records
func (fs *FileStore) Save(records []medicine.Record) error {
	if records == nil {
		records = []medicine.Record{}
	}
	return fs.put(KeyMedicines, records)
}

// LastReset returns the persisted reset day, "" if never set
func (fs *FileStore) LastReset() (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	blob, err := fs.readBlob()
	if err != nil {
		return "", err
	}

	raw, ok := blob[KeyLastReset]
	if !ok {
		return "", nil
	}

	var day string
	if err := json.Unmarshal(raw, &day); err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", KeyLastReset, err)
	}
	return day, nil
}

// SetLastReset persists the reset day
func (fs *FileStore) SetLastReset(day string) error {
	return fs.put(KeyLastReset, day)
}

func (fs *FileStore) put(key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	blob, err := fs.readBlob()
	if err != nil {
		return err
	}
	blob[key] = encoded

	return fs.writeBlob(blob)
}

// readBlob reads the whole file; caller must hold the lock
func (fs *FileStore) readBlob() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fs.path, err)
	}

	blob := make(map[string]json.RawMessage)
	if len(data) == 0 {
		return blob, nil
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", fs.path, err)
	}
	return blob, nil
}

// writeBlob rewrites the whole file; caller must hold the write lock
func (fs *FileStore) writeBlob(blob map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode blob: %w", err)
	}

	if err := os.WriteFile(fs.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", fs.path, err)
	}

	logging.Debug("Blob written", "path", fs.path, "bytes", len(data))
	return nil
}
