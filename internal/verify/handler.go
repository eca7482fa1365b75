package verify

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"campusnet/internal/httpx"
	"campusnet/internal/logging"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: logging.OrNop(log)}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/verification", h.submit).Methods(http.MethodPost)
	r.HandleFunc("/verification/in-progress", h.inProgress).Methods(http.MethodGet)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var in SubmitInput
	if err := httpx.Decode(r, "verify.submit", &in); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	res, err := h.service.Submit(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) inProgress(w http.ResponseWriter, r *http.Request) {
	busy, err := h.service.InProgress(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"in_progress": busy})
}
