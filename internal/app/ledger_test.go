package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/yt-courier-go/internal/domain"
)

// mockLedgerStore implements domain.LedgerStore in memory
type mockLedgerStore struct {
	mu      sync.Mutex
	records map[int64][]domain.FailedItem
	saves   int
	failAll bool
}

func newMockLedgerStore() *mockLedgerStore {
	return &mockLedgerStore{records: make(map[int64][]domain.FailedItem)}
}

func (m *mockLedgerStore) Load(requester int64) ([]domain.FailedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[requester], nil
}

func (m *mockLedgerStore) LoadAll() (map[int64][]domain.FailedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64][]domain.FailedItem, len(m.records))
	for k, v := range m.records {
		out[k] = append([]domain.FailedItem(nil), v...)
	}
	return out, nil
}

func (m *mockLedgerStore) Save(requester int64, items []domain.FailedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errors.New("disk full")
	}
	m.records[requester] = append([]domain.FailedItem(nil), items...)
	m.saves++
	return nil
}

func (m *mockLedgerStore) Delete(requester int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errors.New("disk full")
	}
	delete(m.records, requester)
	return nil
}

func TestFailedLedger_AppendDedupes(t *testing.T) {
	store := newMockLedgerStore()
	ledger := NewFailedLedger(store, nil)

	item := domain.FailedItem{URL: "https://youtu.be/a", Format: domain.FormatVideo}
	ledger.Append(7, item)
	ledger.Append(7, item)
	ledger.Append(7, domain.FailedItem{URL: "https://youtu.be/a", Format: domain.FormatAudio})

	items := ledger.List(7)
	require.Len(t, items, 2)
	assert.Equal(t, domain.FormatVideo, items[0].Format)
	assert.Equal(t, domain.FormatAudio, items[1].Format)

	// mirror is written after each mutation
	persisted, err := store.Load(7)
	require.NoError(t, err)
	assert.Equal(t, items, persisted)
}

func TestFailedLedger_ExtendPersistsOnce(t *testing.T) {
	store := newMockLedgerStore()
	ledger := NewFailedLedger(store, nil)

	ledger.Extend(7, []domain.FailedItem{
		{URL: "https://youtu.be/a", Format: domain.FormatVideo},
		{URL: "https://youtu.be/b", Format: domain.FormatVideo},
		{URL: "https://youtu.be/a", Format: domain.FormatVideo},
	})

	assert.Len(t, ledger.List(7), 2)
	assert.Equal(t, 1, store.saves)
}

func TestFailedLedger_RemoveByIndices(t *testing.T) {
	store := newMockLedgerStore()
	ledger := NewFailedLedger(store, nil)

	ledger.Extend(7, []domain.FailedItem{
		{URL: "https://youtu.be/a", Format: domain.FormatVideo},
		{URL: "https://youtu.be/b", Format: domain.FormatVideo},
		{URL: "https://youtu.be/c", Format: domain.FormatVideo},
	})

	// 1-based display positions; out-of-range indices are ignored
	ledger.RemoveByIndices(7, []int{1, 3, 99, -2})

	items := ledger.List(7)
	require.Len(t, items, 1)
	assert.Equal(t, "https://youtu.be/b", items[0].URL)

	persisted, err := store.Load(7)
	require.NoError(t, err)
	assert.Equal(t, items, persisted)
}

func TestFailedLedger_RemoveOutOfRangeOnlyIsNoop(t *testing.T) {
	store := newMockLedgerStore()
	ledger := NewFailedLedger(store, nil)

	ledger.Append(7, domain.FailedItem{URL: "https://youtu.be/a", Format: domain.FormatVideo})
	ledger.RemoveByIndices(7, []int{5})

	assert.Len(t, ledger.List(7), 1)
}

func TestFailedLedger_Clear(t *testing.T) {
	store := newMockLedgerStore()
	ledger := NewFailedLedger(store, nil)

	ledger.Append(7, domain.FailedItem{URL: "https://youtu.be/a", Format: domain.FormatVideo})
	ledger.Clear(7)

	assert.Empty(t, ledger.List(7))
	persisted, err := store.Load(7)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestFailedLedger_LoadRestoresState(t *testing.T) {
	store := newMockLedgerStore()
	store.records[7] = []domain.FailedItem{
		{URL: "https://youtu.be/a", Format: domain.FormatAudio},
		{URL: "https://youtu.be/b", Format: domain.FormatVideo},
	}

	ledger := NewFailedLedger(store, nil)
	require.NoError(t, ledger.Load())

	items := ledger.List(7)
	require.Len(t, items, 2)
	assert.Equal(t, "https://youtu.be/a", items[0].URL)
	assert.Equal(t, "https://youtu.be/b", items[1].URL)
}

func TestFailedLedger_PersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	store := newMockLedgerStore()
	store.failAll = true
	ledger := NewFailedLedger(store, nil)

	ledger.Append(7, domain.FailedItem{URL: "https://youtu.be/a", Format: domain.FormatVideo})

	// the write failed but the in-memory copy still holds the item
	assert.Len(t, ledger.List(7), 1)
}

func TestFailedLedger_RequestersAreIsolated(t *testing.T) {
	store := newMockLedgerStore()
	ledger := NewFailedLedger(store, nil)

	ledger.Append(1, domain.FailedItem{URL: "https://youtu.be/a", Format: domain.FormatVideo})
	ledger.Append(2, domain.FailedItem{URL: "https://youtu.be/b", Format: domain.FormatVideo})
	ledger.Clear(1)

	assert.Empty(t, ledger.List(1))
	assert.Len(t, ledger.List(2), 1)
}
