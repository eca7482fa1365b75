package storage

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/httpx"
	"campusnet/internal/logging"
)

type Handler struct {
	attachments *Attachments
	log         *zap.Logger
}

func NewHandler(attachments *Attachments, log *zap.Logger) *Handler {
	return &Handler{attachments: attachments, log: logging.OrNop(log)}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/attachments", h.upload).Methods(http.MethodPost)
	r.HandleFunc("/attachments/uploading", h.uploading).Methods(http.MethodGet)
}

// upload accepts a multipart form with the file under "file".
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	const op = "storage.upload"
	if _, err := httpx.Viewer(r, op); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxAttachmentBytes+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, h.log, common.E(common.KindValidationFailed, op, err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	att, err := h.attachments.Upload(r.Context(), header.Filename, contentType, file)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, att)
}

func (h *Handler) uploading(w http.ResponseWriter, r *http.Request) {
	busy, err := h.attachments.Uploading(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"uploading": busy})
}
