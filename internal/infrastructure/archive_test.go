package infrastructure

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipArchiver_Bundle(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "song_one.mp3")
	fileB := filepath.Join(dir, "song_two.mp3")
	require.NoError(t, os.WriteFile(fileA, []byte("aaa"), 0644))
	require.NoError(t, os.WriteFile(fileB, []byte("bbb"), 0644))

	dest := filepath.Join(dir, "playlist_MP3_7.zip")
	archiver := NewZipArchiver()
	require.NoError(t, archiver.Bundle(dest, []string{fileA, fileB}))

	reader, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"song_one.mp3", "song_two.mp3"}, names)
}

func TestZipArchiver_EmptyInputErrors(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty.zip")
	archiver := NewZipArchiver()

	err := archiver.Bundle(dest, nil)
	require.Error(t, err)
	assert.NoFileExists(t, dest)
}

func TestZipArchiver_MissingFileCleansUpArchive(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.zip")
	archiver := NewZipArchiver()

	err := archiver.Bundle(dest, []string{filepath.Join(dir, "no-such-file.mp3")})
	require.Error(t, err)
	assert.NoFileExists(t, dest)
}
