package storage

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/logging"
	"campusnet/internal/task"
)

// MaxAttachmentBytes caps a single chat attachment.
const MaxAttachmentBytes int64 = 25 << 20

// Attachment is what the chat composer needs to send a message with media.
type Attachment struct {
	URL  string                `json:"url"`
	Kind common.AttachmentKind `json:"kind"`
	Path string                `json:"path"`
	Size int64                 `json:"size"`
}

// Attachments uploads chat media on behalf of the current viewer.
type Attachments struct {
	store    ObjectStorage
	identity common.Identity
	bucket   string
	tracker  *task.Tracker
	log      *zap.Logger
	now      func() time.Time
}

func NewAttachments(store ObjectStorage, identity common.Identity, bucket string, tracker *task.Tracker, log *zap.Logger) *Attachments {
	if bucket == "" {
		bucket = "chat-attachments"
	}
	return &Attachments{
		store:    store,
		identity: identity,
		bucket:   bucket,
		tracker:  tracker,
		log:      logging.OrNop(log),
		now:      time.Now,
	}
}

func uploadKey(viewerID string) string {
	return "upload:" + viewerID
}

// Upload stores body under the viewer's attachment path. The body is read in
// full on the calling goroutine, so nothing oversize reaches the store. The
// store write keeps running if ctx is cancelled; the caller just stops
// waiting for it.
func (a *Attachments) Upload(ctx context.Context, fileName, contentType string, body io.Reader) (Attachment, error) {
	const op = "storage.Upload"
	viewer, err := common.RequireViewer(ctx, a.identity, op)
	if err != nil {
		return Attachment{}, err
	}
	if fileName == "" {
		return Attachment{}, common.Errorf(common.KindValidationFailed, op, "file name is required")
	}
	if body == nil {
		return Attachment{}, common.Errorf(common.KindValidationFailed, op, "file body is required")
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(body, MaxAttachmentBytes+1))
	if err != nil {
		return Attachment{}, common.Errorf(common.KindValidationFailed, op, "read attachment: %v", err)
	}
	if n > MaxAttachmentBytes {
		return Attachment{}, common.Errorf(common.KindValidationFailed, op,
			"attachment exceeds %s", humanize.IBytes(uint64(MaxAttachmentBytes)))
	}

	objectPath := AttachmentPath(viewer, a.now(), fileName)
	var obj Object
	done := a.tracker.Go(ctx, uploadKey(viewer), func(ctx context.Context) error {
		var err error
		obj, err = a.store.Upload(ctx, a.bucket, objectPath, contentType, bytes.NewReader(buf.Bytes()))
		return err
	})

	select {
	case err := <-done:
		if err != nil {
			return Attachment{}, common.E(common.KindStoreUnavailable, op, err)
		}
	case <-ctx.Done():
		return Attachment{}, ctx.Err()
	}

	a.log.Debug("attachment uploaded",
		zap.String("viewer", viewer),
		zap.String("path", objectPath),
		zap.String("size", humanize.IBytes(uint64(obj.Size))))

	return Attachment{
		URL:  a.store.PublicURL(a.bucket, objectPath),
		Kind: common.DetectAttachmentKind(contentType, fileName),
		Path: objectPath,
		Size: obj.Size,
	}, nil
}

// Uploading reports whether the viewer has an upload in flight.
func (a *Attachments) Uploading(ctx context.Context) (bool, error) {
	viewer, err := common.RequireViewer(ctx, a.identity, "storage.Uploading")
	if err != nil {
		return false, err
	}
	return a.tracker.InProgress(uploadKey(viewer)), nil
}
