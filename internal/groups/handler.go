package groups

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
	r.HandleFunc("/groups", h.list).Methods(http.MethodGet)
	r.HandleFunc("/groups", h.create).Methods(http.MethodPost)
	r.HandleFunc("/groups/{groupID}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/groups/{groupID}", h.update).Methods(http.MethodPatch)
	r.HandleFunc("/groups/{groupID}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/groups/{groupID}/members", h.members).Methods(http.MethodGet)
	r.HandleFunc("/groups/{groupID}/members/{userID}", h.addMember).Methods(http.MethodPut)
	r.HandleFunc("/groups/{groupID}/members/{userID}", h.removeMember).Methods(http.MethodDelete)
	r.HandleFunc("/groups/{groupID}/members/{userID}/role", h.setRole).Methods(http.MethodPut)
	r.HandleFunc("/groups/{groupID}/leave", h.leave).Methods(http.MethodPost)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.ListForViewer(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.Decode(r, "groups.create", &in); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	g, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, g)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.Get(r.Context(), httpx.Var(r, "groupID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httpx.Decode(r, "groups.update", &in); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	g, err := h.service.Update(r.Context(), httpx.Var(r, "groupID"), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), httpx.Var(r, "groupID")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.Members(r.Context(), httpx.Var(r, "groupID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, members)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	if err := h.service.AddMember(r.Context(), httpx.Var(r, "groupID"), httpx.Var(r, "userID")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveMember(r.Context(), httpx.Var(r, "groupID"), httpx.Var(r, "userID")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.Decode(r, "groups.set_role", &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	if err := h.service.SetRole(r.Context(), httpx.Var(r, "groupID"), httpx.Var(r, "userID"), req.Role); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Leave(r.Context(), httpx.Var(r, "groupID")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
