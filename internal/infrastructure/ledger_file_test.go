package infrastructure

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/yt-courier-go/internal/domain"
)

func TestFileLedgerStore_RoundTrip(t *testing.T) {
	store, err := NewFileLedgerStore(t.TempDir())
	require.NoError(t, err)

	items := []domain.FailedItem{
		{URL: "https://youtu.be/a", Format: domain.FormatVideo},
		{URL: "https://youtu.be/b", Format: domain.FormatAudio},
	}
	require.NoError(t, store.Save(42, items))

	loaded, err := store.Load(42)
	require.NoError(t, err)
	assert.Equal(t, items, loaded)
}

func TestFileLedgerStore_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileLedgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(1, []domain.FailedItem{{URL: "https://youtu.be/a", Format: domain.FormatVideo}}))
	require.NoError(t, store.Save(2, []domain.FailedItem{{URL: "https://youtu.be/b", Format: domain.FormatAudio}}))

	// a fresh store over the same directory sees everything
	reopened, err := NewFileLedgerStore(dir)
	require.NoError(t, err)
	records, err := reopened.LoadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://youtu.be/a", records[1][0].URL)
	assert.Equal(t, "https://youtu.be/b", records[2][0].URL)
}

func TestFileLedgerStore_MissingRecordIsEmpty(t *testing.T) {
	store, err := NewFileLedgerStore(t.TempDir())
	require.NoError(t, err)

	items, err := store.Load(99)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileLedgerStore_DeleteIsIdempotent(t *testing.T) {
	store, err := NewFileLedgerStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(42, []domain.FailedItem{{URL: "https://youtu.be/a", Format: domain.FormatVideo}}))
	require.NoError(t, store.Delete(42))
	require.NoError(t, store.Delete(42))

	items, err := store.Load(42)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileLedgerStore_RecordIsHumanReadableJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileLedgerStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(42, []domain.FailedItem{{URL: "https://youtu.be/a", Format: domain.FormatVideo}}))

	data, err := os.ReadFile(filepath.Join(dir, "42_failed_downloads.json"))
	require.NoError(t, err)

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "https://youtu.be/a", decoded[0]["url"])
	assert.Equal(t, "MP4", decoded[0]["format"])
}

func TestFileLedgerStore_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileLedgerStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc_failed_downloads.json"), []byte("[]"), 0644))

	records, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}
