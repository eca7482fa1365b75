// Package storage uploads chat attachments and media to an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

// Object describes a stored file.
type Object struct {
	Bucket      string    `json:"bucket"`
	Path        string    `json:"path"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ObjectStorage is the write side every backend offers.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectPath, contentType string, body io.Reader) (Object, error)
	PublicURL(bucket, objectPath string) string
}

// ObjectReader is implemented by backends that can also serve their files.
type ObjectReader interface {
	Open(ctx context.Context, bucket, objectPath string) (io.ReadCloser, Object, error)
}

// Store is a backend that can both write and serve objects.
type Store interface {
	ObjectStorage
	ObjectReader
}

// AttachmentPath names an upload <viewer>/<unix-millis>.<ext>, keeping the
// extension of the original file name.
func AttachmentPath(viewerID string, at time.Time, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(fileName, "\\", "/"))))
	return fmt.Sprintf("%s/%d%s", viewerID, at.UnixMilli(), ext)
}

// JoinURL appends an escaped object path to base.
func JoinURL(base, bucket, objectPath string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(bucket) + "/" + escapePath(objectPath)
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
