package interactions

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/httpx"
	"campusnet/internal/logging"
)

type Handler struct {
	counters map[Action]*Counter
	comments *Comments
	log      *zap.Logger
}

func NewHandler(likes, bookmarks *Counter, comments *Comments, log *zap.Logger) *Handler {
	return &Handler{
		counters: map[Action]*Counter{
			ActionLike:     likes,
			ActionBookmark: bookmarks,
		},
		comments: comments,
		log:      logging.OrNop(log),
	}
}

var collections = map[string]EntityKind{
	"posts":    KindPost,
	"projects": KindProject,
}

var actionPaths = map[string]Action{
	"likes":     ActionLike,
	"bookmarks": ActionBookmark,
}

func (h *Handler) Register(r *mux.Router) {
	const entity = "/{collection:posts|projects}/{id}"
	r.HandleFunc(entity+"/{action:likes|bookmarks}", h.state).Methods(http.MethodGet)
	r.HandleFunc(entity+"/{action:likes|bookmarks}/toggle", h.toggle).Methods(http.MethodPost)
	r.HandleFunc(entity+"/comments", h.listComments).Methods(http.MethodGet)
	r.HandleFunc(entity+"/comments", h.addComment).Methods(http.MethodPost)
	r.HandleFunc(entity+"/comments/count", h.countComments).Methods(http.MethodGet)
}

func entityFrom(r *http.Request) (string, EntityKind) {
	return httpx.Var(r, "id"), collections[httpx.Var(r, "collection")]
}

func (h *Handler) counter(r *http.Request) (*Counter, error) {
	c := h.counters[actionPaths[httpx.Var(r, "action")]]
	if c == nil {
		return nil, common.Errorf(common.KindNotFound, "interactions.route", "unknown action %q", httpx.Var(r, "action"))
	}
	return c, nil
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	c, err := h.counter(r)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	id, kind := entityFrom(r)
	state, err := c.GetState(r.Context(), id, kind)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

type toggleResponse struct {
	State
	Error string `json:"error,omitempty"`
}

// toggle reports the rolled back state alongside the error so clients can
// re-render without a second request.
func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	c, err := h.counter(r)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	id, kind := entityFrom(r)
	state, err := c.Toggle(r.Context(), id, kind)
	if err != nil {
		if common.KindOf(err) != common.KindStoreUnavailable {
			httpx.WriteError(w, h.log, err)
			return
		}
		httpx.WriteJSON(w, httpx.StatusFor(err), toggleResponse{State: state, Error: err.Error()})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toggleResponse{State: state})
}

func (h *Handler) countComments(w http.ResponseWriter, r *http.Request) {
	id, kind := entityFrom(r)
	n, err := h.comments.Count(r.Context(), id, kind)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	id, kind := entityFrom(r)
	comments, err := h.comments.List(r.Context(), id, kind)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, comments)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := httpx.Decode(r, "interactions.add_comment", &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	id, kind := entityFrom(r)
	comment, err := h.comments.Add(r.Context(), id, kind, req.Content)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, comment)
}
