package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"support-chat-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesUnderDatedPath(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "http://localhost:3000/")

	path, err := s.Save([]byte("payload"), "photo.png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "chat/"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestURLJoinsBaseWithoutDoubleSlash(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), "http://localhost:3000/")
	assert.Equal(t, "http://localhost:3000/uploads/chat/a/b.png", s.URL("chat/a/b.png"))
}

func TestDetectMediaKind(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 16))
	mp4 := []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")

	assert.Equal(t, entity.AttachmentImage, DetectMediaKind(png))
	assert.Equal(t, entity.AttachmentVideo, DetectMediaKind(mp4))
	assert.Equal(t, entity.AttachmentNone, DetectMediaKind([]byte("just some text")))
	assert.Equal(t, entity.AttachmentNone, DetectMediaKind([]byte("%PDF-1.4")))
}
