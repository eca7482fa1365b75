package user

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/httpx"
	"campusnet/internal/logging"
)

type UserHandler struct {
	userService UserService
	log         *zap.Logger
}

func NewUserHandler(userService UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: logging.OrNop(log)}
}

// Register mounts the profile routes. /users/me is registered before
// /users/{userID} so it is not taken for an id.
func (h *UserHandler) Register(r *mux.Router) {
	r.HandleFunc("/users", h.search).Methods(http.MethodGet)
	r.HandleFunc("/users/me", h.me).Methods(http.MethodGet)
	r.HandleFunc("/users/me", h.updateMe).Methods(http.MethodPatch)
	r.HandleFunc("/users/me/classmates", h.classmates).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}", h.profile).Methods(http.MethodGet)
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.userService.Me(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	var update ProfileUpdate
	if err := httpx.Decode(r, "user.update_profile", &update); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	u, err := h.userService.UpdateProfile(r.Context(), update)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) classmates(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Classmates(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *UserHandler) profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.userService.GetProfile(r.Context(), httpx.Var(r, "userID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// search reads ?search=&role=&college=&branch=&batch=. batch may be "All".
func (h *UserHandler) search(w http.ResponseWriter, r *http.Request) {
	const op = "user.search"
	q := r.URL.Query()
	filter := SearchFilter{
		Text:    q.Get("search"),
		Role:    q.Get("role"),
		College: q.Get("college"),
		Branch:  q.Get("branch"),
	}
	if batch := pick(q.Get("batch")); batch != "" {
		year, err := strconv.Atoi(batch)
		if err != nil {
			httpx.WriteError(w, h.log, common.Errorf(common.KindValidationFailed, op, "batch %q is not a year", batch))
			return
		}
		filter.BatchEnd = year
	}
	users, err := h.userService.Search(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}
