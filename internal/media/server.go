// Package media serves stored attachments and post media over HTTP.
package media

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"campusnet/internal/logging"
	"campusnet/internal/storage"
)

type HTTPServer struct {
	storage storage.ObjectReader
	router  *mux.Router
	log     *zap.Logger
}

func NewHTTPServer(reader storage.ObjectReader, log *zap.Logger) *HTTPServer {
	s := &HTTPServer{
		storage: reader,
		router:  mux.NewRouter(),
		log:     logging.OrNop(log),
	}

	// GET /media/{bucket}/{path}, where path may contain slashes
	s.router.HandleFunc("/media/{bucket}/{path:.+}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bucket, objectPath := vars["bucket"], vars["path"]

	fileReader, obj, err := s.storage.Open(r.Context(), bucket, objectPath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("failed to open media", zap.String("bucket", bucket), zap.String("path", objectPath), zap.Error(err))
		http.Error(w, "Storage unavailable", http.StatusServiceUnavailable)
		return
	}
	defer fileReader.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = contentTypeFor(objectPath)
	}
	w.Header().Set("Content-Type", contentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if r.Method == http.MethodHead {
		return
	}

	if _, err := io.Copy(w, fileReader); err != nil {
		s.log.Warn("error streaming file", zap.String("path", objectPath), zap.Error(err))
	}
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".pdf":
		return "application/pdf"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
