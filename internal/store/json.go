package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/liftedinit/roadchain/internal/models"
)

const lockRetryDelay = 50 * time.Millisecond

// JSONStore keeps the chain in a single file holding a JSON array of records.
// Every append rewrites the file through a temporary file and a rename, while
// holding an exclusive lock on a sibling ".lock" file. The file is the source
// of truth: appends and loads always read it, so several processes can share
// one chain file.
type JSONStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

// NewJSONStore opens the chain file at path. A missing file is an empty chain.
func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		return nil, fmt.Errorf("missing chain file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create chain directory: %w", err)
	}

	records, err := readJSONFileOrEmpty(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("Opened JSON chain file", "path", path, "records", len(records))

	return &JSONStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// ReadJSONFile reads the records of a chain file. A missing file is an error
// matching fs.ErrNotExist.
func ReadJSONFile(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain file: %w", err)
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode chain file %s: %w", path, err)
	}
	return records, nil
}

func readJSONFileOrEmpty(path string) ([]models.Record, error) {
	records, err := ReadJSONFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return records, err
}

// WriteJSONFile atomically replaces the chain file at path with records.
func WriteJSONFile(path string, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode chain: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary chain file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary chain file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temporary chain file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary chain file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace chain file: %w", err)
	}
	return nil
}

func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the chain file. Renames are atomic, so no lock is needed.
func (s *JSONStore) Load(_ context.Context) ([]models.Record, error) {
	return readJSONFileOrEmpty(s.path)
}

// Append checks the record against the file's current length under the file
// lock, so concurrent writers in other processes cannot overwrite each other.
func (s *JSONStore) Append(ctx context.Context, record models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock chain file: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to lock chain file %s", s.path)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			slog.Warn("Failed to unlock chain file", "path", s.path, "error", err)
		}
	}()

	records, err := readJSONFileOrEmpty(s.path)
	if err != nil {
		return err
	}
	if record.Index != uint64(len(records)) {
		return fmt.Errorf("%w: index %d, stored %d", ErrOutOfOrder, record.Index, len(records))
	}
	return WriteJSONFile(s.path, append(records, record))
}

func (s *JSONStore) Close() error {
	return s.lock.Close()
}
