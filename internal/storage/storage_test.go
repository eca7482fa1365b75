package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentPath(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	tests := []struct {
		name     string
		fileName string
		expected string
	}{
		{"keeps extension", "notes.PDF", "u1/1700000000123.pdf"},
		{"no extension", "README", "u1/1700000000123"},
		{"windows path", `C:\Users\me\photo.jpeg`, "u1/1700000000123.jpeg"},
		{"nested path", "a/b/clip.mp4", "u1/1700000000123.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AttachmentPath("u1", at, tt.fileName))
		})
	}
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/chat-attachments/u1/1.png",
		JoinURL("https://cdn.example.com/", "chat-attachments", "u1/1.png"))
	assert.Equal(t, "http://localhost:9000/media/u%201/a%23b.png",
		JoinURL("http://localhost:9000", "media", "u 1/a#b.png"))
}
