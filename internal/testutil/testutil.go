// Package testutil builds throwaway stores and fixtures for package tests.
package testutil

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/pkg/db"
	pkg_hash "github.com/Skotchmaster/storefront/pkg/hash"
)

// PNG is the smallest payload the image sniffer accepts as png.
var PNG = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

// NewDB opens a migrated in-memory sqlite store that is closed with the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

// SeedUser inserts a user whose password is "secret123".
func SeedUser(t testing.TB, gdb *gorm.DB, name, email, role string) *models.User {
	t.Helper()

	h, err := pkg_hash.HashPassword("secret123", 4)
	require.NoError(t, err)
	if role == "" {
		role = policy.RoleCustomer
	}
	u := &models.User{Name: name, Email: email, PasswordHash: h, Role: role}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func SeedProduct(t testing.TB, gdb *gorm.DB, name, category, price string) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    10,
		Image:    name + ".png",
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

// Identity is the policy view of a seeded user.
func Identity(u *models.User) policy.Identity {
	return policy.Identity{UserID: u.ID, Role: u.Role}
}

// MultipartBody builds a multipart form with the given text fields and, when
// filename is set, one file part named "image".
func MultipartBody(t testing.TB, fields map[string]string, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

// ImageHeader returns the parsed file header of a single uploaded image.
func ImageHeader(t testing.TB, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body, ct := MultipartBody(t, nil, filename, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}
