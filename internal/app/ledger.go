package app

import (
	"sync"

	"github.com/yourusername/yt-courier-go/internal/domain"
	"go.uber.org/zap"
)

// FailedLedger is the per-requester record of failed downloads. The
// in-memory copy is authoritative for the process lifetime; every
// mutation is mirrored to the durable store so a restart does not lose
// retry state. Mutations for the same requester are serialized; distinct
// requesters do not block each other.
type FailedLedger struct {
	store  domain.LedgerStore
	logger *zap.Logger

	mu    sync.Mutex // guards items and locks maps
	items map[int64][]domain.FailedItem
	locks map[int64]*sync.Mutex
}

// NewFailedLedger creates a ledger backed by the given store
func NewFailedLedger(store domain.LedgerStore, logger *zap.Logger) *FailedLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FailedLedger{
		store:  store,
		logger: logger,
		items:  make(map[int64][]domain.FailedItem),
		locks:  make(map[int64]*sync.Mutex),
	}
}

// Load restores all persisted records into memory. Called once at startup.
func (l *FailedLedger) Load() error {
	records, err := l.store.LoadAll()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for requester, items := range records {
		l.items[requester] = items
	}
	return nil
}

// Append adds one failed item and persists the requester's record.
// An item already present for the requester is not duplicated.
func (l *FailedLedger) Append(requester int64, item domain.FailedItem) {
	lock := l.requesterLock(requester)
	lock.Lock()
	defer lock.Unlock()

	l.mu.Lock()
	if !containsItem(l.items[requester], item) {
		l.items[requester] = append(l.items[requester], item)
	}
	snapshot := copyItems(l.items[requester])
	l.mu.Unlock()

	l.persist(requester, snapshot)
}

// Extend adds a sequence of failed items and persists once afterwards
func (l *FailedLedger) Extend(requester int64, items []domain.FailedItem) {
	if len(items) == 0 {
		return
	}

	lock := l.requesterLock(requester)
	lock.Lock()
	defer lock.Unlock()

	l.mu.Lock()
	for _, item := range items {
		if !containsItem(l.items[requester], item) {
			l.items[requester] = append(l.items[requester], item)
		}
	}
	snapshot := copyItems(l.items[requester])
	l.mu.Unlock()

	l.persist(requester, snapshot)
}

// List returns a snapshot of the requester's failed items in order
func (l *FailedLedger) List(requester int64) []domain.FailedItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return copyItems(l.items[requester])
}

// RemoveByIndices removes items at the given 1-based display positions
// and re-persists. Indices outside range are ignored.
func (l *FailedLedger) RemoveByIndices(requester int64, indices []int) {
	lock := l.requesterLock(requester)
	lock.Lock()
	defer lock.Unlock()

	selected := make(map[int]bool, len(indices))
	for _, idx := range indices {
		selected[idx] = true
	}

	l.mu.Lock()
	current := l.items[requester]
	kept := make([]domain.FailedItem, 0, len(current))
	for i, item := range current {
		if !selected[i+1] {
			kept = append(kept, item)
		}
	}
	l.items[requester] = kept
	snapshot := copyItems(kept)
	l.mu.Unlock()

	l.persist(requester, snapshot)
}

// Clear removes all failed items for a requester, in memory and on disk
func (l *FailedLedger) Clear(requester int64) {
	lock := l.requesterLock(requester)
	lock.Lock()
	defer lock.Unlock()

	l.mu.Lock()
	delete(l.items, requester)
	l.mu.Unlock()

	if err := l.store.Delete(requester); err != nil {
		l.logger.Error("failed to clear persisted ledger record",
			zap.Int64("requester", requester),
			zap.Error(err))
	}
}

// persist mirrors the requester's record to the store. A write failure is
// logged at error severity; the in-memory state stays authoritative.
func (l *FailedLedger) persist(requester int64, items []domain.FailedItem) {
	if err := l.store.Save(requester, items); err != nil {
		l.logger.Error("failed to persist ledger record",
			zap.Int64("requester", requester),
			zap.Int("items", len(items)),
			zap.Error(err))
	}
}

func (l *FailedLedger) requesterLock(requester int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[requester]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[requester] = lock
	}
	return lock
}

func containsItem(items []domain.FailedItem, item domain.FailedItem) bool {
	for _, existing := range items {
		if existing == item {
			return true
		}
	}
	return false
}

func copyItems(items []domain.FailedItem) []domain.FailedItem {
	out := make([]domain.FailedItem, len(items))
	copy(out, items)
	return out
}
