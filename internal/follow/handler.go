package follow

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
	r.HandleFunc("/users/{userID}/follow", h.follow).Methods(http.MethodPost)
	r.HandleFunc("/users/{userID}/follow", h.unfollow).Methods(http.MethodDelete)
	r.HandleFunc("/users/{userID}/follow", h.status).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/follow-counts", h.counts).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/followers", h.followers).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/following", h.following).Methods(http.MethodGet)
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Follow(r.Context(), httpx.Var(r, "userID")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unfollow(r.Context(), httpx.Var(r, "userID")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	Following bool `json:"following"`
	Mutual    bool `json:"mutual"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	target := httpx.Var(r, "userID")
	following, err := h.service.IsFollowing(r.Context(), target)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	resp := statusResponse{Following: following}
	if viewer, err := httpx.Viewer(r, "follow.status"); err == nil && following {
		if resp.Mutual, err = h.service.IsMutual(r.Context(), viewer, target); err != nil {
			httpx.WriteError(w, h.log, err)
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Counts(r.Context(), httpx.Var(r, "userID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, counts)
}

func (h *Handler) followers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Followers(r.Context(), httpx.Var(r, "userID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) following(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Following(r.Context(), httpx.Var(r, "userID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}
