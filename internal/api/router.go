package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	chathandler "campusnet/internal/chat/handler"
	"campusnet/internal/common"
	"campusnet/internal/feed"
	"campusnet/internal/follow"
	"campusnet/internal/groups"
	"campusnet/internal/httpx"
	"campusnet/internal/interactions"
	"campusnet/internal/logging"
	"campusnet/internal/metrics"
	"campusnet/internal/notif"
	"campusnet/internal/storage"
	"campusnet/internal/user"
	"campusnet/internal/verify"
)

// Routes gathers every handler mounted under /api/v1.
type Routes struct {
	Chat          *chathandler.Handler
	Users         *user.UserHandler
	Groups        *groups.Handler
	Interactions  *interactions.Handler
	Follow        *follow.Handler
	Notifications *notif.NotificationHandler
	Feed          *feed.FeedHandler
	Attachments   *storage.Handler
	Verification  *verify.Handler
}

// NewRouter builds the API: public /health and /metrics, everything else
// under /api/v1 behind bearer auth.
func NewRouter(routes *Routes, tokens *common.TokenManager, limiter *SendLimiter, log *zap.Logger) *mux.Router {
	log = logging.OrNop(log)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(loggingMiddleware(log))

	// Middleware only runs on matched routes, so preflights need a route.
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware(tokens, log))

	// Users first so /users/me is not read as a user id.
	if routes.Users != nil {
		routes.Users.Register(authed)
	}
	if routes.Groups != nil {
		routes.Groups.Register(authed)
	}
	if routes.Interactions != nil {
		routes.Interactions.Register(authed)
	}
	if routes.Follow != nil {
		routes.Follow.Register(authed)
	}
	if routes.Notifications != nil {
		routes.Notifications.Register(authed)
	}
	if routes.Feed != nil {
		routes.Feed.Register(authed)
	}
	if routes.Attachments != nil {
		routes.Attachments.Register(authed)
	}
	if routes.Verification != nil {
		routes.Verification.Register(authed)
	}
	if routes.Chat != nil {
		var send mux.MiddlewareFunc
		if limiter != nil {
			send = limiter.Middleware
		}
		routes.Chat.Register(authed, send)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorResponse{Error: "route not found"})
	})
	return router
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "campusnet-api"})
}
