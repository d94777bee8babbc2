package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/yt-courier-go/internal/domain"
	"go.uber.org/zap"
)

// DownloadService drives single and batch downloads through fetch,
// optional audio extraction, delivery, and cleanup. Failures that survive
// the retry budget land in the failed-item ledger.
type DownloadService struct {
	fetcher   domain.Fetcher
	extractor domain.AudioExtractor
	archiver  domain.Archiver
	transport domain.Transport
	ledger    *FailedLedger
	users     domain.UserRepository
	config    *domain.DownloadConfig
	logger    *zap.Logger
}

// NewDownloadService creates a download service
func NewDownloadService(
	fetcher domain.Fetcher,
	extractor domain.AudioExtractor,
	archiver domain.Archiver,
	transport domain.Transport,
	ledger *FailedLedger,
	users domain.UserRepository,
	config *domain.DownloadConfig,
	logger *zap.Logger,
) *DownloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DownloadService{
		fetcher:   fetcher,
		extractor: extractor,
		archiver:  archiver,
		transport: transport,
		ledger:    ledger,
		users:     users,
		config:    config,
		logger:    logger,
	}
}

// Dispatch routes a request to the single or batch path based on the
// canonical collection predicate.
func (s *DownloadService) Dispatch(ctx context.Context, requester int64, url string, format domain.Format) {
	if domain.IsCollectionURL(url) {
		s.DownloadCollection(ctx, requester, url, format)
	} else {
		s.DownloadSingle(ctx, requester, url, format)
	}
}

// DownloadSingle drives one URL through fetch, optional extraction,
// delivery, and cleanup. On retry exhaustion the item is recorded in the
// ledger and the requester is notified.
func (s *DownloadService) DownloadSingle(ctx context.Context, requester int64, url string, format domain.Format) {
	outcome := s.runItem(ctx, requester, url, format)

	if !outcome.Succeeded() {
		s.logger.Error("download failed after retries",
			zap.Int64("requester", requester),
			zap.String("url", url),
			zap.String("format", string(format)),
			zap.Error(outcome.Err))

		s.notify(requester, fmt.Sprintf(
			"Download failed after %d attempts: %v\nUse /retry to try again later.",
			s.config.MaxAttempts, outcome.Err))
		s.ledger.Append(requester, *outcome.Failed)
		return
	}

	s.deliverAndCleanup(requester, outcome.Artifact)
}

// DownloadCollection resolves a collection URL into its items once, then
// runs the batch. A resolution failure is reported to the requester and
// recorded as one failed item for the collection URL itself.
func (s *DownloadService) DownloadCollection(ctx context.Context, requester int64, url string, format domain.Format) {
	urls, err := s.fetcher.ResolveCollection(ctx, url)
	if err != nil {
		s.logger.Error("failed to resolve collection",
			zap.Int64("requester", requester),
			zap.String("url", url),
			zap.Error(err))
		s.notify(requester, fmt.Sprintf("Could not read the playlist: %v", err))
		s.ledger.Append(requester, domain.FailedItem{URL: url, Format: format})
		return
	}

	s.DownloadBatch(ctx, requester, urls, format)
}

// DownloadBatch runs every item through the retried fetch(+extract)
// independently, bundles the successes into one archive, and reports the
// failures once. A single item's failure never aborts the rest.
func (s *DownloadService) DownloadBatch(ctx context.Context, requester int64, urls []string, format domain.Format) {
	var artifacts []string
	var failures []domain.FailedItem

	for _, url := range urls {
		outcome := s.runItem(ctx, requester, url, format)
		if outcome.Succeeded() {
			artifacts = append(artifacts, outcome.Artifact)
		} else {
			failures = append(failures, *outcome.Failed)
		}
	}

	// archive only after every item has resolved
	if len(artifacts) > 0 {
		s.deliverArchive(requester, format, artifacts)
	}

	if len(failures) > 0 {
		var sb strings.Builder
		sb.WriteString("Some items could not be downloaded:\n")
		for _, item := range failures {
			fmt.Fprintf(&sb, "- %s\n", item.URL)
		}
		sb.WriteString("Use /retry to try them again.")
		s.notify(requester, sb.String())

		s.ledger.Extend(requester, failures)
	}
}

// RetryAll re-runs every failed item for the requester. The ledger is
// cleared up front; items that fail again re-append themselves through
// the normal failure path, leaving exactly the still-failing set.
func (s *DownloadService) RetryAll(ctx context.Context, requester int64) {
	items := s.ledger.List(requester)
	if len(items) == 0 {
		return
	}

	s.ledger.Clear(requester)
	for _, item := range items {
		s.Dispatch(ctx, requester, item.URL, item.Format)
	}
}

// RetrySelected re-runs the failed items at the given 1-based positions.
// Out-of-range positions are ignored. Selected items are removed first;
// still-failing ones re-append themselves.
func (s *DownloadService) RetrySelected(ctx context.Context, requester int64, indices []int) {
	items := s.ledger.List(requester)

	var chosen []domain.FailedItem
	for _, idx := range indices {
		if idx >= 1 && idx <= len(items) {
			chosen = append(chosen, items[idx-1])
		}
	}
	if len(chosen) == 0 {
		return
	}

	s.ledger.RemoveByIndices(requester, indices)
	for _, item := range chosen {
		s.Dispatch(ctx, requester, item.URL, item.Format)
	}
}

// runItem wraps one whole fetch(+extract) operation in the retry policy
// and converts the result into an outcome.
func (s *DownloadService) runItem(ctx context.Context, requester int64, url string, format domain.Format) domain.Outcome {
	policy := NewRetryPolicy(s.config.MaxAttempts, s.config.RetryDelay, s.logger)

	path, err := policy.Do(ctx, url, func() (string, error) {
		return s.fetchOnce(ctx, url, format)
	})
	if err != nil {
		return domain.FailureOutcome(url, format, err)
	}
	return domain.SuccessOutcome(path)
}

// fetchOnce performs one fetch attempt, plus audio extraction for the
// audio format. Extraction degrades rather than fails, so only the fetch
// can error here.
func (s *DownloadService) fetchOnce(ctx context.Context, url string, format domain.Format) (string, error) {
	if s.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.FetchTimeout)
		defer cancel()
	}

	path, err := s.fetcher.Fetch(ctx, url, s.config.DownloadsDir)
	if err != nil {
		return "", err
	}

	if format == domain.FormatAudio {
		extraction := s.extractor.Extract(ctx, path)
		if extraction.Degraded {
			s.logger.Warn("audio extraction degraded to original file",
				zap.String("url", url),
				zap.String("path", path))
		}
		path = extraction.Path
	}

	return path, nil
}

// deliverAndCleanup sends one artifact and always removes it afterwards.
// A delivery failure is logged, not counted as a download failure.
func (s *DownloadService) deliverAndCleanup(requester int64, artifact string) {
	if err := s.transport.SendFile(requester, artifact); err != nil {
		s.logger.Error("failed to deliver artifact",
			zap.Int64("requester", requester),
			zap.String("artifact", artifact),
			zap.Error(err))
	} else {
		s.recordDelivery(requester)
	}

	s.removeArtifact(artifact)
}

// deliverArchive bundles the artifacts into one zip named from requester
// and format, delivers it, and removes every constituent plus the archive.
func (s *DownloadService) deliverArchive(requester int64, format domain.Format, artifacts []string) {
	name := fmt.Sprintf("playlist_%s_%d.zip", format, requester)
	archivePath := filepath.Join(s.config.ArchivesDir, name)

	if err := s.archiver.Bundle(archivePath, artifacts); err != nil {
		s.logger.Error("failed to build archive",
			zap.Int64("requester", requester),
			zap.String("archive", archivePath),
			zap.Error(err))
		s.notify(requester, fmt.Sprintf("Could not package the playlist: %v", err))
		for _, artifact := range artifacts {
			s.removeArtifact(artifact)
		}
		return
	}

	if err := s.transport.SendFile(requester, archivePath); err != nil {
		s.logger.Error("failed to deliver archive",
			zap.Int64("requester", requester),
			zap.String("archive", archivePath),
			zap.Error(err))
	} else {
		s.recordDelivery(requester)
	}

	for _, artifact := range artifacts {
		s.removeArtifact(artifact)
	}
	s.removeArtifact(archivePath)
}

func (s *DownloadService) recordDelivery(requester int64) {
	if s.users == nil {
		return
	}
	if err := s.users.IncrementDownloads(requester); err != nil {
		s.logger.Warn("failed to increment download counter",
			zap.Int64("requester", requester),
			zap.Error(err))
	}
}

func (s *DownloadService) removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove artifact",
			zap.String("path", path),
			zap.Error(err))
	}
}

func (s *DownloadService) notify(requester int64, text string) {
	if err := s.transport.SendText(requester, text); err != nil {
		s.logger.Error("failed to send message",
			zap.Int64("requester", requester),
			zap.Error(err))
	}
}
