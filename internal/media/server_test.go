package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnet/internal/storage"
)

type fakeReader struct {
	files map[string]string
	types map[string]string
	err   error
}

func (f fakeReader) Open(_ context.Context, bucket, objectPath string) (io.ReadCloser, storage.Object, error) {
	if f.err != nil {
		return nil, storage.Object{}, f.err
	}
	key := bucket + "/" + objectPath
	body, ok := f.files[key]
	if !ok {
		return nil, storage.Object{}, fmt.Errorf("%s: %w", key, storage.ErrObjectNotFound)
	}
	return io.NopCloser(strings.NewReader(body)), storage.Object{
		Bucket:      bucket,
		Path:        objectPath,
		ContentType: f.types[key],
		Size:        int64(len(body)),
	}, nil
}

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServeFile(t *testing.T) {
	srv := NewHTTPServer(fakeReader{
		files: map[string]string{
			"chat-attachments/u1/1.png": "pixels",
			"chat-attachments/u1/2.pdf": "%PDF",
		},
		types: map[string]string{"chat-attachments/u1/2.pdf": "application/pdf"},
	}, nil)

	rec := get(t, srv, http.MethodGet, "/media/chat-attachments/u1/1.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pixels", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "6", rec.Header().Get("Content-Length"))

	rec = get(t, srv, http.MethodGet, "/media/chat-attachments/u1/2.pdf")
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = get(t, srv, http.MethodHead, "/media/chat-attachments/u1/1.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestServeFile_Errors(t *testing.T) {
	srv := NewHTTPServer(fakeReader{files: map[string]string{}}, nil)
	rec := get(t, srv, http.MethodGet, "/media/chat-attachments/u1/missing.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	srv = NewHTTPServer(fakeReader{err: errors.New("mongo down")}, nil)
	rec = get(t, srv, http.MethodGet, "/media/chat-attachments/u1/1.png")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := NewHTTPServer(fakeReader{}, nil)
	rec := get(t, srv, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentTypeFor("a.JPG"))
	assert.Equal(t, "video/webm", contentTypeFor("clip.webm"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("blob"))
}
