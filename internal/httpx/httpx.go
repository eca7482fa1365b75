// Package httpx holds the JSON and error plumbing shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"campusnet/internal/common"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFor maps an error kind onto an HTTP status code.
func StatusFor(err error) int {
	switch common.KindOf(err) {
	case common.KindNotAuthenticated:
		return http.StatusUnauthorized
	case common.KindForbidden:
		return http.StatusForbidden
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindValidationFailed:
		return http.StatusBadRequest
	case common.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	resp := ErrorResponse{Error: err.Error()}
	if kind := common.KindOf(err); kind != "" {
		resp.Kind = kind.String()
	}
	WriteJSON(w, status, resp)
}

// Decode reads a JSON body into v. An empty body leaves v untouched.
func Decode(r *http.Request, op string, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return common.E(common.KindValidationFailed, op, err)
}

func Var(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// Viewer returns the authenticated user placed on the request context by the
// auth middleware.
func Viewer(r *http.Request, op string) (string, error) {
	return common.RequireViewer(r.Context(), common.ContextIdentity{}, op)
}
