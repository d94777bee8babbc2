package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "My_Video_Title", sanitizeFilename("My Video Title"))
	assert.Equal(t, "clip2.final", sanitizeFilename("clip2.final"))
	assert.Equal(t, "whats_up", sanitizeFilename("what's up?"))
	assert.Equal(t, "video", sanitizeFilename("???"))
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, sanitizeFilename(string(long)), 120)
}

func TestExtensionForMime(t *testing.T) {
	assert.Equal(t, ".mp4", extensionForMime(`video/mp4; codecs="avc1.4d401e, mp4a.40.2"`))
	assert.Equal(t, ".webm", extensionForMime("video/webm"))
	assert.Equal(t, ".mp4", extensionForMime("application/octet-stream"))
}
