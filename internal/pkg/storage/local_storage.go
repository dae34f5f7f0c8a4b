package storage

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"support-chat-be/internal/entity"

	"github.com/google/uuid"
)

// AttachmentStorage is the capability the chat core consumes: store a binary
// at a path-addressed location and hand back something retrievable.
type AttachmentStorage interface {
	Save(data []byte, filename string) (path string, err error)
	URL(path string) string
}

// LocalStorage writes attachments under the uploads directory served by the
// fiber static route.
type LocalStorage struct {
	baseDir string
	baseURL string
}

func NewLocalStorage(baseDir, baseURL string) *LocalStorage {
	return &LocalStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *LocalStorage) Save(data []byte, filename string) (string, error) {
	ext := filepath.Ext(filename)
	rel := filepath.Join("chat", time.Now().Format("2006/01/02"), uuid.New().String()+ext)

	full := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare attachment dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}

	return filepath.ToSlash(rel), nil
}

func (s *LocalStorage) URL(path string) string {
	return s.baseURL + "/uploads/" + path
}

// DetectMediaKind sniffs the attachment content and maps it onto the chat
// media kinds. Anything that is neither image nor video is rejected upstream.
func DetectMediaKind(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return entity.AttachmentImage
	case strings.HasPrefix(contentType, "video/"):
		return entity.AttachmentVideo
	default:
		return entity.AttachmentNone
	}
}
