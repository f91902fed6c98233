package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func newStore(t *testing.T, max int64) *ImageStore {
	t.Helper()
	s, err := NewImageStore(filepath.Join(t.TempDir(), "images"), max)
	require.NoError(t, err)
	s.Now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestSave_StoresUniqueNames(t *testing.T) {
	t.Parallel()

	s := newStore(t, 1<<20)
	uploader := uuid.New()

	first, err := s.Save(uploader, fileHeader(t, "phone.PNG", "image/png", pngBytes))
	require.NoError(t, err)
	second, err := s.Save(uploader, fileHeader(t, "phone.PNG", "image/png", pngBytes))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, uploader.String()+"-2026-03-04-"), first)
	assert.True(t, strings.HasSuffix(first, ".png"), first)

	got, err := os.ReadFile(filepath.Join(s.Dir, first))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, got)
}

func TestSave_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		ctype   string
		content []byte
		max     int64
		want    error
	}{
		{name: "bad extension", file: "x.exe", ctype: "image/png", content: pngBytes, max: 1 << 20, want: ErrUnsupportedImage},
		{name: "bad mime", file: "x.png", ctype: "text/plain", content: pngBytes, max: 1 << 20, want: ErrUnsupportedImage},
		{name: "content is not an image", file: "x.png", ctype: "image/png", content: []byte("hello world"), max: 1 << 20, want: ErrUnsupportedImage},
		{name: "too large", file: "x.png", ctype: "image/png", content: pngBytes, max: 10, want: ErrImageTooLarge},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newStore(t, tt.max)
			_, err := s.Save(uuid.New(), fileHeader(t, tt.file, tt.ctype, tt.content))
			require.ErrorIs(t, err, tt.want)

			entries, err := os.ReadDir(s.Dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestSave_NoFile(t *testing.T) {
	t.Parallel()

	_, err := newStore(t, 10).Save(uuid.New(), nil)
	require.ErrorIs(t, err, ErrNoImage)
}

func TestSave_AvifWithoutSignature(t *testing.T) {
	t.Parallel()

	s := newStore(t, 1<<20)
	_, err := s.Save(uuid.New(), fileHeader(t, "x.avif", "image/avif", []byte{0, 0, 0, 0x1c, 'f', 't', 'y', 'p', 'a', 'v', 'i', 'f', 0, 1}))
	require.NoError(t, err)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s := newStore(t, 1<<20)
	name, err := s.Save(uuid.New(), fileHeader(t, "a.png", "image/png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, s.Remove(name))
	require.NoError(t, s.Remove(name))
	require.Error(t, s.Remove("../etc/passwd"))
}
