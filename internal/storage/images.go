// Package storage keeps uploaded product images on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoImage          = errors.New("image is required")
	ErrUnsupportedImage = errors.New("only jpeg, jpg, png, gif, webp and avif images are allowed")
	ErrImageTooLarge    = errors.New("image is too large")
)

var allowedExt = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true, ".avif": true,
}

var allowedMIME = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true, "image/avif": true,
}

type ImageStore struct {
	Dir      string
	MaxBytes int64
	Now      func() time.Time
}

func NewImageStore(dir string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{Dir: dir, MaxBytes: maxBytes, Now: time.Now}, nil
}

// Save validates the upload and writes it as <uploader>-<date>-<uuid><ext>,
// returning the stored file name.
func (s *ImageStore) Save(uploaderID uuid.UUID, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNoImage
	}
	if fh.Size > s.MaxBytes {
		return "", ErrImageTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	declared := strings.ToLower(strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0]))
	if !allowedExt[ext] || !allowedMIME[declared] {
		return "", ErrUnsupportedImage
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if !sniffOK(head, ext) {
		return "", ErrUnsupportedImage
	}

	name := fmt.Sprintf("%s-%s-%s%s", uploaderID, s.now().Format("2006-01-02"), uuid.NewString(), ext)
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(strings.NewReader(string(head)), src), s.MaxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.MaxBytes {
		err = ErrImageTooLarge
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.Dir, name))
		if errors.Is(err, ErrImageTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

func (s *ImageStore) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("bad image name %q", name)
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *ImageStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// avif has no signature in net/http's sniffer.
func sniffOK(head []byte, ext string) bool {
	sniffed := http.DetectContentType(head)
	if allowedMIME[sniffed] {
		return true
	}
	return ext == ".avif" && sniffed == "application/octet-stream"
}
