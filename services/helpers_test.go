package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/inventory-api/models"
	"github.com/kendall-kelly/inventory-api/store"
)

var testNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

// newSeededService returns a query service over an empty memory store
// loaded with the sample data.
func newSeededService(t *testing.T) *QueryService {
	t.Helper()
	return seeded(t, store.NewMemoryStore())
}

func newSeededSQLiteService(t *testing.T) *QueryService {
	t.Helper()
	db, err := store.OpenGorm(store.BackendSQLite, filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	s, err := store.NewGormStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return seeded(t, s)
}

func seeded(t *testing.T, s store.Store) *QueryService {
	t.Helper()
	q := NewQueryService(s)
	q.now = func() time.Time { return testNow }
	n, err := Seed(context.Background(), q, models.SampleData(testNow))
	require.NoError(t, err)
	require.Equal(t, 11, n)
	return q
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	require.Len(t, form.File["image"], 1)
	return form.File["image"][0]
}
