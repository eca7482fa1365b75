package groups

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnet/internal/dbmysql"
	"campusnet/internal/testutil"
)

func serve(r http.Handler, method, path, viewer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if viewer != "" {
		req.Header.Set("X-Viewer", viewer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GroupLifecycle(t *testing.T) {
	f := newFixture(t)
	r := mux.NewRouter()
	r.Use(testutil.ViewerHeader)
	NewHandler(f.svc, nil).Register(r)

	rec := serve(r, http.MethodPost, "/groups", "a", `{"name":"Robotics","type":"my-college"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var g dbmysql.Group
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))

	rec = serve(r, http.MethodPut, "/groups/"+g.ID+"/members/b", "a", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(r, http.MethodGet, "/groups/"+g.ID+"/members", "b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var members []*dbmysql.GroupMember
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	assert.Len(t, members, 2)

	rec = serve(r, http.MethodGet, "/groups/"+g.ID+"/members", "c", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(r, http.MethodPut, "/groups/"+g.ID+"/members/b/role", "a", `{"role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodPatch, "/groups/"+g.ID, "b", `{"name":"Mine now"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(r, http.MethodGet, "/groups", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(r, http.MethodDelete, "/groups/"+g.ID, "a", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(r, http.MethodGet, "/groups/"+g.ID, "a", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
