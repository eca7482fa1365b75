package testutil

import (
	"net/http"

	"campusnet/internal/common"
)

// ViewerHeader stands in for the bearer auth middleware: the X-Viewer header
// becomes the authenticated user.
func ViewerHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Viewer"); id != "" {
			r = r.WithContext(common.WithViewer(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
