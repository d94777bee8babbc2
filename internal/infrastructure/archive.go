package infrastructure

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ZipArchiver implements domain.Archiver using zip archives. Entries are
// stored under their base names, matching what the user downloaded.
type ZipArchiver struct{}

// NewZipArchiver creates a zip archiver
func NewZipArchiver() *ZipArchiver {
	return &ZipArchiver{}
}

// Bundle writes the given files into a zip archive at dest
func (a *ZipArchiver) Bundle(dest string, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("no files to archive")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	for _, file := range files {
		if err := addToArchive(zw, file); err != nil {
			zw.Close()
			out.Close()
			os.Remove(dest)
			return err
		}
	}

	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}

func addToArchive(zw *zip.Writer, file string) error {
	in, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer in.Close()

	w, err := zw.Create(filepath.Base(file))
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", file, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", file, err)
	}
	return nil
}
