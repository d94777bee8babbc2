package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourusername/yt-courier-go/internal/domain"
)

const ledgerFileSuffix = "_failed_downloads.json"

// FileLedgerStore implements domain.LedgerStore with one JSON file per
// requester, so an operator can inspect or diff a user's failed list
// directly.
type FileLedgerStore struct {
	dir string
}

// NewFileLedgerStore creates a store rooted at dir
func NewFileLedgerStore(dir string) (*FileLedgerStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	return &FileLedgerStore{dir: dir}, nil
}

// Load reads the record for one requester; a missing file is an empty list
func (s *FileLedgerStore) Load(requester int64) ([]domain.FailedItem, error) {
	data, err := os.ReadFile(s.path(requester))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ledger record: %w", err)
	}

	var items []domain.FailedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode ledger record: %w", err)
	}
	return items, nil
}

// LoadAll reads every persisted record in the directory
func (s *FileLedgerStore) LoadAll() (map[int64][]domain.FailedItem, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger directory: %w", err)
	}

	records := make(map[int64][]domain.FailedItem)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ledgerFileSuffix) {
			continue
		}
		requester, err := strconv.ParseInt(strings.TrimSuffix(name, ledgerFileSuffix), 10, 64)
		if err != nil {
			continue
		}
		items, err := s.Load(requester)
		if err != nil {
			return nil, err
		}
		records[requester] = items
	}
	return records, nil
}

// Save overwrites the record for one requester, synchronously
func (s *FileLedgerStore) Save(requester int64, items []domain.FailedItem) error {
	if items == nil {
		items = []domain.FailedItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger record: %w", err)
	}
	if err := os.WriteFile(s.path(requester), data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger record: %w", err)
	}
	return nil
}

// Delete removes the record for one requester; missing is not an error
func (s *FileLedgerStore) Delete(requester int64) error {
	if err := os.Remove(s.path(requester)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete ledger record: %w", err)
	}
	return nil
}

func (s *FileLedgerStore) path(requester int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d%s", requester, ledgerFileSuffix))
}
