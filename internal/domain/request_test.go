package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("mp3")
	require.NoError(t, err)
	assert.Equal(t, FormatAudio, f)

	f, err = ParseFormat(" MP4 ")
	require.NoError(t, err)
	assert.Equal(t, FormatVideo, f)

	_, err = ParseFormat("flac")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFormat))
}

func TestValidateFormat(t *testing.T) {
	assert.True(t, ValidateFormat(FormatAudio))
	assert.True(t, ValidateFormat(FormatVideo))
	assert.False(t, ValidateFormat(Format("WAV")))
}

func TestOutcome(t *testing.T) {
	ok := SuccessOutcome("/tmp/video.mp4")
	assert.True(t, ok.Succeeded())
	assert.Equal(t, "/tmp/video.mp4", ok.Artifact)
	assert.Nil(t, ok.Failed)

	fail := FailureOutcome("https://youtu.be/abc", FormatVideo, errors.New("boom"))
	assert.False(t, fail.Succeeded())
	require.NotNil(t, fail.Failed)
	assert.Equal(t, "https://youtu.be/abc", fail.Failed.URL)
	assert.Equal(t, FormatVideo, fail.Failed.Format)
	assert.EqualError(t, fail.Err, "boom")
}

func TestIsCollectionURL(t *testing.T) {
	assert.True(t, IsCollectionURL("https://www.youtube.com/watch?v=abc&list=PL123"))
	assert.True(t, IsCollectionURL("https://www.youtube.com/playlist?list=PL123"))
	assert.False(t, IsCollectionURL("https://www.youtube.com/watch?v=abc"))
	assert.False(t, IsCollectionURL("https://youtu.be/abc"))
	// a bare "playlist" in the query string is not a collection marker
	assert.False(t, IsCollectionURL("https://www.youtube.com/watch?v=playlist"))
}

func TestIsVideoURL(t *testing.T) {
	assert.True(t, IsVideoURL("https://www.youtube.com/watch?v=abc"))
	assert.True(t, IsVideoURL("https://youtu.be/abc"))
	assert.False(t, IsVideoURL("https://example.com/video"))
}

func TestFetchError(t *testing.T) {
	inner := errors.New("network down")
	err := &FetchError{URL: "https://youtu.be/abc", Err: inner}
	assert.Contains(t, err.Error(), "https://youtu.be/abc")
	assert.True(t, errors.Is(err, inner))
}
