package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusnet/internal/storage"
)

// Bucketer hands out GridFS buckets by name.
type Bucketer interface {
	Bucket(name string) (*gridfs.Bucket, error)
}

// MediaStorage stores objects as GridFS files named by their object path.
type MediaStorage struct {
	buckets    Bucketer
	publicBase string
	now        func() time.Time
}

func NewMediaStorage(buckets Bucketer, publicBaseURL string) *MediaStorage {
	return &MediaStorage{
		buckets:    buckets,
		publicBase: publicBaseURL,
		now:        time.Now,
	}
}

func (ms *MediaStorage) Upload(ctx context.Context, bucket, objectPath, contentType string, body io.Reader) (storage.Object, error) {
	b, err := ms.buckets.Bucket(bucket)
	if err != nil {
		return storage.Object{}, err
	}

	uploadedAt := ms.now()
	metadata := bson.M{
		"content_type": contentType,
		"uploaded_at":  uploadedAt,
	}
	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := b.OpenUploadStream(objectPath, opts)
	if err != nil {
		return storage.Object{}, fmt.Errorf("upload failed: %w", err)
	}
	if err := stream.SetWriteDeadline(deadline(ctx)); err != nil {
		stream.Abort()
		return storage.Object{}, fmt.Errorf("upload failed: %w", err)
	}

	size, err := io.Copy(stream, body)
	if err != nil {
		stream.Abort()
		return storage.Object{}, fmt.Errorf("file copy failed: %w", err)
	}
	if err := stream.Close(); err != nil {
		return storage.Object{}, fmt.Errorf("upload failed: %w", err)
	}

	return storage.Object{
		Bucket:      bucket,
		Path:        objectPath,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  uploadedAt,
	}, nil
}

// Open streams the newest revision of the file stored under objectPath.
func (ms *MediaStorage) Open(ctx context.Context, bucket, objectPath string) (io.ReadCloser, storage.Object, error) {
	b, err := ms.buckets.Bucket(bucket)
	if err != nil {
		return nil, storage.Object{}, err
	}

	stream, err := b.OpenDownloadStreamByName(objectPath)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, storage.Object{}, fmt.Errorf("%s/%s: %w", bucket, objectPath, storage.ErrObjectNotFound)
	}
	if err != nil {
		return nil, storage.Object{}, fmt.Errorf("download failed: %w", err)
	}
	if err := stream.SetReadDeadline(deadline(ctx)); err != nil {
		stream.Close()
		return nil, storage.Object{}, fmt.Errorf("download failed: %w", err)
	}

	file := stream.GetFile()
	var metadata bson.M
	if file.Metadata != nil {
		_ = bson.Unmarshal(file.Metadata, &metadata)
	}

	return stream, storage.Object{
		Bucket:      bucket,
		Path:        file.Name,
		ContentType: stringFromMap(metadata, "content_type"),
		Size:        file.Length,
		UploadedAt:  file.UploadDate,
	}, nil
}

func (ms *MediaStorage) PublicURL(bucket, objectPath string) string {
	return storage.JoinURL(ms.publicBase, bucket, objectPath)
}

// deadline maps the context deadline onto a GridFS stream deadline; zero
// means none.
func deadline(ctx context.Context) time.Time {
	d, _ := ctx.Deadline()
	return d
}

func stringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

var _ storage.Store = (*MediaStorage)(nil)
