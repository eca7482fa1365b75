package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnet/internal/common"
	"campusnet/internal/task"
	"campusnet/internal/testutil"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	gate    chan struct{}
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Upload(ctx context.Context, bucket, objectPath, contentType string, body io.Reader) (Object, error) {
	if m.gate != nil {
		<-m.gate
	}
	if m.err != nil {
		return Object{}, m.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Object{}, err
	}
	m.mu.Lock()
	m.objects[bucket+"/"+objectPath] = data
	m.mu.Unlock()
	return Object{Bucket: bucket, Path: objectPath, ContentType: contentType, Size: int64(len(data))}, nil
}

func (m *memoryStore) PublicURL(bucket, objectPath string) string {
	return JoinURL("https://files.test", bucket, objectPath)
}

func newAttachments(store ObjectStorage) *Attachments {
	a := NewAttachments(store, common.ContextIdentity{}, "", task.NewTracker(nil), nil)
	a.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return a
}

func TestAttachments_Upload(t *testing.T) {
	store := newMemoryStore()
	a := newAttachments(store)
	ctx := common.WithViewer(context.Background(), "u1")

	att, err := a.Upload(ctx, "slides.zip", "application/zip", strings.NewReader("PK"))
	require.NoError(t, err)
	assert.Equal(t, "u1/1700000000000.zip", att.Path)
	assert.Equal(t, common.AttachmentArchive, att.Kind)
	assert.Equal(t, "https://files.test/chat-attachments/u1/1700000000000.zip", att.URL)
	assert.Equal(t, int64(2), att.Size)
	assert.Equal(t, []byte("PK"), store.objects["chat-attachments/u1/1700000000000.zip"])
}

func TestAttachments_Validation(t *testing.T) {
	a := newAttachments(newMemoryStore())

	_, err := a.Upload(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	ctx := common.WithViewer(context.Background(), "u1")
	_, err = a.Upload(ctx, "", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrValidationFailed)
	_, err = a.Upload(ctx, "a.png", "image/png", nil)
	assert.ErrorIs(t, err, common.ErrValidationFailed)
}

func TestAttachments_StoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("bucket gone")
	a := newAttachments(store)

	_, err := a.Upload(common.WithViewer(context.Background(), "u1"), "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestAttachments_OversizeNeverReachesStore(t *testing.T) {
	store := newMemoryStore()
	a := newAttachments(store)
	ctx := common.WithViewer(context.Background(), "u1")

	body := bytes.NewReader(make([]byte, MaxAttachmentBytes+1))
	_, err := a.Upload(ctx, "big.mp4", "video/mp4", body)
	require.ErrorIs(t, err, common.ErrValidationFailed)
	assert.Contains(t, err.Error(), "25 MiB")
	assert.Empty(t, store.objects)
	busy, _ := a.Uploading(ctx)
	assert.False(t, busy)
}

// trackedReader notes any read that happens after the upload call returned.
type trackedReader struct {
	r        io.Reader
	mu       sync.Mutex
	returned bool
	late     bool
}

func (tr *trackedReader) Read(p []byte) (int, error) {
	tr.mu.Lock()
	if tr.returned {
		tr.late = true
	}
	tr.mu.Unlock()
	return tr.r.Read(p)
}

func TestAttachments_BodyIsNotReadAfterCallerReturns(t *testing.T) {
	store := newMemoryStore()
	store.gate = make(chan struct{})
	a := newAttachments(store)
	ctx, cancel := context.WithCancel(common.WithViewer(context.Background(), "u1"))

	body := &trackedReader{r: strings.NewReader("payload")}
	result := make(chan error, 1)
	go func() {
		_, err := a.Upload(ctx, "a.txt", "text/plain", body)
		result <- err
	}()
	require.Eventually(t, func() bool { return a.tracker.InProgress(uploadKey("u1")) }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)
	body.mu.Lock()
	body.returned = true
	body.mu.Unlock()

	close(store.gate)
	a.tracker.Wait()
	assert.False(t, body.late)
	assert.Equal(t, []byte("payload"), store.objects["chat-attachments/u1/1700000000000.txt"])
}

func TestAttachments_UploadingWhileInFlight(t *testing.T) {
	store := newMemoryStore()
	store.gate = make(chan struct{})
	a := newAttachments(store)
	ctx := common.WithViewer(context.Background(), "u1")

	busy, err := a.Uploading(ctx)
	require.NoError(t, err)
	assert.False(t, busy)

	waitCtx, cancel := context.WithCancel(ctx)
	result := make(chan error, 1)
	go func() {
		_, err := a.Upload(waitCtx, "a.png", "image/png", strings.NewReader("x"))
		result <- err
	}()

	assert.Eventually(t, func() bool {
		busy, _ := a.Uploading(ctx)
		return busy
	}, time.Second, 5*time.Millisecond)

	// The caller gives up but the upload itself carries on.
	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)
	busy, _ = a.Uploading(ctx)
	assert.True(t, busy)

	close(store.gate)
	a.tracker.Wait()
	busy, _ = a.Uploading(ctx)
	assert.False(t, busy)
	assert.Len(t, store.objects, 1)
}

func multipartBody(t *testing.T, fileName, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandler_Upload(t *testing.T) {
	r := mux.NewRouter()
	r.Use(testutil.ViewerHeader)
	NewHandler(newAttachments(newMemoryStore()), nil).Register(r)

	body, ct := multipartBody(t, "photo.png", "image/png", "pixels")
	req := httptest.NewRequest(http.MethodPost, "/attachments", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Viewer", "u1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var att Attachment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &att))
	assert.Equal(t, common.AttachmentImage, att.Kind)
	assert.Equal(t, "u1/1700000000000.png", att.Path)

	req = httptest.NewRequest(http.MethodGet, "/attachments/uploading", nil)
	req.Header.Set("X-Viewer", "u1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"uploading":false}`, rec.Body.String())
}

func TestHandler_UploadErrors(t *testing.T) {
	r := mux.NewRouter()
	r.Use(testutil.ViewerHeader)
	NewHandler(newAttachments(newMemoryStore()), nil).Register(r)

	req := httptest.NewRequest(http.MethodPost, "/attachments", strings.NewReader(""))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/attachments", strings.NewReader("not multipart"))
	req.Header.Set("X-Viewer", "u1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
