package feed

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"campusnet/internal/httpx"
	"campusnet/internal/logging"
)

type FeedHandler struct {
	service *FeedService
	log     *zap.Logger
}

func NewFeedHandler(service *FeedService, log *zap.Logger) *FeedHandler {
	return &FeedHandler{service: service, log: logging.OrNop(log)}
}

func (h *FeedHandler) Register(r *mux.Router) {
	r.HandleFunc("/posts", h.timeline).Methods(http.MethodGet)
	r.HandleFunc("/posts", h.createPost).Methods(http.MethodPost)
	r.HandleFunc("/posts/alumni", h.alumniPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/other-colleges", h.otherCollegePosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", h.getPost).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", h.deletePost).Methods(http.MethodDelete)

	r.HandleFunc("/projects", h.projects).Methods(http.MethodGet)
	r.HandleFunc("/projects", h.createProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}", h.getProject).Methods(http.MethodGet)

	r.HandleFunc("/stories", h.stories).Methods(http.MethodGet)
	r.HandleFunc("/stories", h.createStory).Methods(http.MethodPost)

	r.HandleFunc("/users/{userID}/posts", h.userPosts).Methods(http.MethodGet)
	r.HandleFunc("/users/{userID}/projects", h.userProjects).Methods(http.MethodGet)
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func (h *FeedHandler) timeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := PostFilter{
		Branch:  q.Get("branch"),
		Search:  q.Get("search"),
		College: q.Get("college"),
	}
	posts, err := h.service.Timeline(r.Context(), filter, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

func (h *FeedHandler) alumniPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.AlumniPosts(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

// otherCollegePosts takes the caller's college from ?college=.
func (h *FeedHandler) otherCollegePosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.OtherCollegePosts(r.Context(), r.URL.Query().Get("college"), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

func (h *FeedHandler) createPost(w http.ResponseWriter, r *http.Request) {
	var in PostInput
	if err := httpx.Decode(r, "feed.create_post", &in); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	post, err := h.service.CreatePost(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, post)
}

func (h *FeedHandler) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), httpx.Var(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

func (h *FeedHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePost(r.Context(), httpx.Var(r, "id")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FeedHandler) createProject(w http.ResponseWriter, r *http.Request) {
	var in ProjectInput
	if err := httpx.Decode(r, "feed.create_project", &in); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	project, err := h.service.CreateProject(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, project)
}

func (h *FeedHandler) projects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.Projects(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, projects)
}

func (h *FeedHandler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.GetProject(r.Context(), httpx.Var(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, project)
}

func (h *FeedHandler) stories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.service.ActiveStories(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stories)
}

func (h *FeedHandler) createStory(w http.ResponseWriter, r *http.Request) {
	var in StoryInput
	if err := httpx.Decode(r, "feed.create_story", &in); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	story, err := h.service.CreateStory(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, story)
}

func (h *FeedHandler) userPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.UserPosts(r.Context(), httpx.Var(r, "userID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

func (h *FeedHandler) userProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.UserProjects(r.Context(), httpx.Var(r, "userID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, projects)
}
