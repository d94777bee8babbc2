package domain

import "context"

// Transport delivers messages and files to a chat
type Transport interface {
	// SendText sends a plain text message
	SendText(chatID int64, text string) error

	// SendOptions sends a text message with a fixed set of reply options
	SendOptions(chatID int64, text string, options []string) error

	// SendFile delivers a local file to the chat
	SendFile(chatID int64, path string) error
}

// Fetcher resolves and downloads media from a source URL
type Fetcher interface {
	// Fetch downloads the best available combined stream to destDir and
	// returns the local file path. No internal retries.
	Fetch(ctx context.Context, url string, destDir string) (string, error)

	// ResolveCollection expands a collection URL into its ordered item URLs
	ResolveCollection(ctx context.Context, url string) ([]string, error)
}

// AudioExtractor produces an audio-only artifact from a video file.
// It never fails: on any internal error the result degrades to the
// original video path.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) Extraction
}

// Archiver bundles artifacts into a single deliverable archive
type Archiver interface {
	Bundle(dest string, files []string) error
}

// LedgerStore is the durable keyed record store behind the failed-item
// ledger. One record per requester, overwrite semantics.
type LedgerStore interface {
	// Load reads the record for one requester; empty slice if none
	Load(requester int64) ([]FailedItem, error)

	// LoadAll reads every persisted record, keyed by requester
	LoadAll() (map[int64][]FailedItem, error)

	// Save overwrites the record for one requester
	Save(requester int64, items []FailedItem) error

	// Delete removes the record for one requester
	Delete(requester int64) error
}

// UserRepository persists user profiles and consent flags
type UserRepository interface {
	// SaveContact upserts profile fields from a message sender
	SaveContact(contact ContactSnapshot) error

	// SetConsent records the marketing consent decision
	SetConsent(telegramID int64, consent bool, phone string) error

	// SetPreferredFormat records the user's last chosen format
	SetPreferredFormat(telegramID int64, format Format) error

	// IncrementDownloads bumps the delivered-download counter
	IncrementDownloads(telegramID int64) error

	// MarketingUsers lists users opted in for marketing with at least
	// minDownloads delivered downloads
	MarketingUsers(minDownloads int) ([]int64, error)

	// Stats returns aggregate user statistics
	Stats() (*UserStats, error)
}
