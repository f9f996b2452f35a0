// SPDX-License-Identifier: MIT

// Package images stores uploaded post images on the local filesystem.
package images

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blogicum/blogicum/internal/metrics"
)

var (
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("images: upload exceeds size limit")
	// ErrUnsupportedType is returned for non-image payloads.
	ErrUnsupportedType = errors.New("images: unsupported content type")
	// ErrNotFound is returned when a stored image does not exist.
	ErrNotFound = errors.New("images: not found")
)

// Extension per accepted sniffed content type. Client-supplied filenames are
// never trusted; the stored name is derived from the payload alone.
var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes images atomically under a single directory.
type Store struct {
	dir      string
	maxBytes int64
	logger   zerolog.Logger
}

// NewStore creates the image directory if needed.
func NewStore(dir string, maxBytes int64, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("images: create directory: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes, logger: logger}, nil
}

// Dir returns the storage directory, for read-only file serving.
func (s *Store) Dir() string { return s.dir }

// Save sniffs the payload type, enforces the size limit and writes the image
// with fsync-before-rename durability. It returns the stored filename.
func (s *Store) Save(postID int64, r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("images: read upload: %w", err)
	}
	head = head[:n]

	ext, ok := extByType[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("post-%d-%s%s", postID, uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return "", fmt.Errorf("images: create pending file: %w", err)
	}
	defer func() {
		// renameio removes the temp file if not committed.
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug().Err(err).Msg("cleanup pending image file")
		}
	}()

	if _, err := pending.Write(head); err != nil {
		return "", fmt.Errorf("images: write upload: %w", err)
	}
	// +1 so a stream at exactly the limit passes and one past it fails.
	written, err := io.Copy(pending, io.LimitReader(r, s.maxBytes-int64(len(head))+1))
	if err != nil {
		return "", fmt.Errorf("images: write upload: %w", err)
	}
	if int64(len(head))+written > s.maxBytes {
		return "", ErrTooLarge
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("images: atomically replace image file: %w", err)
	}

	metrics.ImagesUploaded.Inc()
	s.logger.Debug().
		Str("image", name).
		Int64("bytes", int64(len(head))+written).
		Msg("stored post image")
	return name, nil
}

// Remove deletes a stored image. Missing files are not an error: the caller
// may be cleaning up after a post whose image was never written.
func (s *Store) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("images: remove %s: %w", name, err)
	}
	return nil
}

// Path resolves a stored name to its on-disk path, rejecting traversal.
func (s *Store) Path(name string) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("images: stat %s: %w", name, err)
	}
	return path, nil
}

func (s *Store) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, name), nil
}
