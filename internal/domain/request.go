package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Format represents the output format requested by a user
type Format string

const (
	FormatAudio Format = "MP3" // audio-only, extracted after download
	FormatVideo Format = "MP4" // best available combined stream
)

// ParseFormat parses a user-supplied format choice
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(strings.TrimSpace(s))) {
	case FormatAudio:
		return FormatAudio, nil
	case FormatVideo:
		return FormatVideo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

// ValidateFormat checks if a format is valid
func ValidateFormat(f Format) bool {
	return f == FormatAudio || f == FormatVideo
}

// DownloadRequest represents a single-item download request
type DownloadRequest struct {
	Requester int64
	URL       string
	Format    Format
}

// BatchDownloadRequest represents a collection download sharing one format.
// URLs are resolved once at batch start and fixed for the batch's lifetime.
type BatchDownloadRequest struct {
	Requester int64
	URLs      []string
	Format    Format
}

// FailedItem is one failed (url, format) pair recorded in the ledger
type FailedItem struct {
	URL    string `json:"url"`
	Format Format `json:"format"`
}

// Outcome is the result of a retried download operation: either an
// artifact path or a failed item carrying the last error.
type Outcome struct {
	Artifact string
	Failed   *FailedItem
	Err      error
}

// SuccessOutcome builds a success outcome for a local artifact
func SuccessOutcome(path string) Outcome {
	return Outcome{Artifact: path}
}

// FailureOutcome builds a failure outcome after retry exhaustion
func FailureOutcome(url string, format Format, err error) Outcome {
	return Outcome{Failed: &FailedItem{URL: url, Format: format}, Err: err}
}

// Succeeded reports whether the outcome carries an artifact
func (o Outcome) Succeeded() bool {
	return o.Failed == nil
}

// Extraction is the result of an audio extraction attempt. Degraded means
// extraction failed and Path is the original, unmodified video file.
type Extraction struct {
	Path     string
	Degraded bool
}

// InboundMessage is a transport-neutral inbound chat message
type InboundMessage struct {
	ChatID       int64
	Text         string
	From         ContactSnapshot
	ContactPhone string // set when the user shared their contact card
}

// ContactSnapshot carries the sender's profile fields as seen on a message
type ContactSnapshot struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// ErrInvalidFormat is returned for a malformed format choice
var ErrInvalidFormat = errors.New("invalid format")

// ErrNoStreams is returned when a video has no downloadable streams
var ErrNoStreams = errors.New("no downloadable streams")

// FetchError wraps a failure to resolve or download a source URL
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsVideoURL checks if a URL points at a supported video site
func IsVideoURL(raw string) bool {
	return strings.Contains(raw, "youtube.com") || strings.Contains(raw, "youtu.be")
}

// IsCollectionURL is the canonical predicate for "does this URL denote a
// collection of items". Every dispatch and retry decision uses it.
func IsCollectionURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Query().Get("list") != "" {
		return true
	}
	return strings.Contains(u.Path, "/playlist")
}
