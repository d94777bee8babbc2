package infrastructure

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/yourusername/yt-courier-go/internal/domain"
	"go.uber.org/zap"
)

// FFmpegExtractor implements domain.AudioExtractor by shelling out to
// ffmpeg. Extraction failure never fails the download: the result
// degrades to the original video file.
type FFmpegExtractor struct {
	binary string
	logger *zap.Logger
}

// NewFFmpegExtractor creates an extractor using the given ffmpeg binary
func NewFFmpegExtractor(binary string, logger *zap.Logger) *FFmpegExtractor {
	if binary == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegExtractor{binary: binary, logger: logger}
}

// Extract transcodes the video to mp3, removes the source on success, and
// returns the new path. On any failure it returns the original path with
// Degraded set, so callers always get a deliverable artifact.
func (e *FFmpegExtractor) Extract(ctx context.Context, videoPath string) domain.Extraction {
	audioPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-codec:a", "libmp3lame",
		"-q:a", "2",
		audioPath,
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e.logger.Error("audio extraction failed, keeping original file",
			zap.String("input", videoPath),
			zap.String("stderr", tailOf(stderr.String(), 500)),
			zap.Error(err))
		os.Remove(audioPath)
		return domain.Extraction{Path: videoPath, Degraded: true}
	}

	if err := os.Remove(videoPath); err != nil {
		e.logger.Warn("failed to remove source video after extraction",
			zap.String("path", videoPath),
			zap.Error(err))
	}

	e.logger.Info("extracted audio",
		zap.String("input", videoPath),
		zap.String("output", audioPath))

	return domain.Extraction{Path: audioPath}
}

// tailOf returns at most the last n bytes of s
func tailOf(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
