package common

import (
	"path"
	"path/filepath"
	"strings"
)

// AttachmentKind classifies a chat attachment.
type AttachmentKind string

const (
	AttachmentNone     AttachmentKind = ""
	AttachmentImage    AttachmentKind = "image"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentDocument AttachmentKind = "document"
	AttachmentArchive  AttachmentKind = "archive"
	AttachmentSticker  AttachmentKind = "sticker"
)

func (k AttachmentKind) String() string {
	return string(k)
}

func (k AttachmentKind) IsValid() bool {
	switch k {
	case AttachmentImage, AttachmentVideo, AttachmentDocument, AttachmentArchive, AttachmentSticker:
		return true
	}
	return false
}

// ParseAttachmentKind accepts stored column values. Legacy rows use "zip"
// for archives and "text" for messages without media.
func ParseAttachmentKind(s string) AttachmentKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image":
		return AttachmentImage
	case "video":
		return AttachmentVideo
	case "document", "file":
		return AttachmentDocument
	case "archive", "zip":
		return AttachmentArchive
	case "sticker":
		return AttachmentSticker
	}
	return AttachmentNone
}

var archiveExts = map[string]bool{".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true}

// DetectAttachmentKind picks a kind from the MIME type, falling back to the file name.
func DetectAttachmentKind(mimeType, fileName string) AttachmentKind {
	lower := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(lower, "image/"):
		return AttachmentImage
	case strings.HasPrefix(lower, "video/"):
		return AttachmentVideo
	case strings.Contains(lower, "zip"), strings.Contains(lower, "compressed"), strings.Contains(lower, "x-tar"):
		return AttachmentArchive
	}
	if archiveExts[strings.ToLower(filepath.Ext(fileName))] {
		return AttachmentArchive
	}
	return AttachmentDocument
}

var videoExts = map[string]bool{".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true, ".m4v": true}

// IsVideoURL reports whether a media URL points at a video file, ignoring any
// query or fragment.
func IsVideoURL(u string) bool {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return videoExts[strings.ToLower(path.Ext(u))]
}
