package dbmongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

type failingBuckets struct{}

func (failingBuckets) Bucket(string) (*gridfs.Bucket, error) {
	return nil, errors.New("no bucket")
}

func TestStringFromMap(t *testing.T) {
	assert.Equal(t, "", stringFromMap(nil, "content_type"))
	assert.Equal(t, "image/png", stringFromMap(bson.M{"content_type": "image/png"}, "content_type"))
	assert.Equal(t, "", stringFromMap(bson.M{"content_type": 42}, "content_type"))
	assert.Equal(t, "", stringFromMap(bson.M{}, "missing"))
}

func TestDeadline(t *testing.T) {
	assert.True(t, deadline(context.Background()).IsZero())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	assert.False(t, deadline(ctx).IsZero())
}

func TestMediaStorage_PublicURL(t *testing.T) {
	ms := NewMediaStorage(failingBuckets{}, "http://localhost:8081/media/")
	assert.Equal(t,
		"http://localhost:8081/media/chat-attachments/u1/1700000000000%20copy.pdf",
		ms.PublicURL("chat-attachments", "u1/1700000000000 copy.pdf"))
}

func TestMediaStorage_BucketFailure(t *testing.T) {
	ms := NewMediaStorage(failingBuckets{}, "")

	_, err := ms.Upload(context.Background(), "b", "p", "text/plain", nil)
	require.Error(t, err)

	_, _, err = ms.Open(context.Background(), "b", "p")
	require.Error(t, err)
}
