package infrastructure

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kkdai/youtube/v2"
	"github.com/yourusername/yt-courier-go/internal/domain"
	"go.uber.org/zap"
)

// YouTubeFetcher implements domain.Fetcher for YouTube videos and
// playlists. It always downloads the best available combined
// (video+audio) stream; audio-only artifacts are derived afterwards by
// the extractor.
type YouTubeFetcher struct {
	client youtube.Client
	logger *zap.Logger
}

// NewYouTubeFetcher creates a YouTube fetcher
func NewYouTubeFetcher(logger *zap.Logger) *YouTubeFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YouTubeFetcher{logger: logger}
}

// Fetch downloads the best combined stream for a video URL into destDir
// and returns the local file path. No internal retries; the caller's
// retry policy wraps the whole operation.
func (f *YouTubeFetcher) Fetch(ctx context.Context, url, destDir string) (string, error) {
	video, err := f.client.GetVideoContext(ctx, url)
	if err != nil {
		return "", &domain.FetchError{URL: url, Err: err}
	}

	format := bestCombinedFormat(video)
	if format == nil {
		return "", &domain.FetchError{URL: url, Err: domain.ErrNoStreams}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", &domain.FetchError{URL: url, Err: err}
	}

	// Unique token in the name keeps concurrent downloads from colliding
	name := fmt.Sprintf("%s_%s%s",
		uuid.New().String()[:8],
		sanitizeFilename(video.Title),
		extensionForMime(format.MimeType))
	path := filepath.Join(destDir, name)

	stream, size, err := f.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", &domain.FetchError{URL: url, Err: err}
	}
	defer stream.Close()

	file, err := os.Create(path)
	if err != nil {
		return "", &domain.FetchError{URL: url, Err: err}
	}

	written, err := io.Copy(file, stream)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", &domain.FetchError{URL: url, Err: err}
	}

	f.logger.Info("downloaded video",
		zap.String("url", url),
		zap.String("title", video.Title),
		zap.String("path", path),
		zap.Int64("bytes", written),
		zap.Int64("expected", size))

	return path, nil
}

// ResolveCollection expands a playlist URL into its ordered watch URLs
func (f *YouTubeFetcher) ResolveCollection(ctx context.Context, url string) ([]string, error) {
	playlist, err := f.client.GetPlaylistContext(ctx, url)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}

	urls := make([]string, 0, len(playlist.Videos))
	for _, entry := range playlist.Videos {
		if entry == nil || entry.ID == "" {
			continue
		}
		urls = append(urls, "https://www.youtube.com/watch?v="+entry.ID)
	}

	f.logger.Info("resolved playlist",
		zap.String("url", url),
		zap.String("title", playlist.Title),
		zap.Int("videos", len(urls)))

	return urls, nil
}

// bestCombinedFormat picks the highest-quality stream carrying both
// video and audio
func bestCombinedFormat(video *youtube.Video) *youtube.Format {
	candidates := video.Formats.WithAudioChannels()

	var best *youtube.Format
	for i := range candidates {
		format := &candidates[i]
		if !strings.HasPrefix(format.MimeType, "video/") {
			continue
		}
		if best == nil || betterFormat(format, best) {
			best = format
		}
	}
	return best
}

func betterFormat(candidate, current *youtube.Format) bool {
	if candidate.Height != current.Height {
		return candidate.Height > current.Height
	}
	return candidate.Bitrate > current.Bitrate
}

// extensionForMime maps a stream mime type to a file extension
func extensionForMime(mimeType string) string {
	base := mimeType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	switch strings.TrimSpace(base) {
	case "video/mp4", "audio/mp4":
		return ".mp4"
	case "video/webm", "audio/webm":
		return ".webm"
	case "video/3gpp":
		return ".3gp"
	default:
		return ".mp4"
	}
}

// sanitizeFilename strips characters that are unsafe in file names
func sanitizeFilename(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('_')
		}
	}
	out := sb.String()
	if out == "" {
		out = "video"
	}
	const maxLen = 120
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
