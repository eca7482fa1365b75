package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"campusnet/internal/chat"
	"campusnet/internal/chat/repository"
	"campusnet/internal/chat/service"
	"campusnet/internal/common"
	"campusnet/internal/querycache"
	"campusnet/internal/realtime"
	"campusnet/internal/share"
	"campusnet/internal/testutil"
)

type members map[string]bool

func (m members) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	return m[groupID+"/"+userID], nil
}

type env struct {
	db     *gorm.DB
	direct *service.DirectChannel
	router *mux.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewTestDB(t)
	hub := realtime.NewHub(2, 64, nil)
	t.Cleanup(hub.Shutdown)
	require.NoError(t, db.Use(realtime.NewGormPlugin(hub, "test", nil)))

	testutil.CreateUser(t, db, "a", "Asha", "IIT Delhi")
	testutil.CreateUser(t, db, "b", "Bilal", "IIT Delhi")
	testutil.CreatePost(t, db, "p1", "b", "demo day")

	cache := querycache.New()
	identity := common.ContextIdentity{}
	directRepo := repository.NewDirectMessageRepository(db)
	direct := service.NewDirectChannel(directRepo, hub, cache, identity, nil, nil)
	h := NewHandler(
		service.NewConversationAggregator(directRepo, hub, cache, nil),
		direct,
		service.NewGroupChannel(repository.NewGroupMessageRepository(db), members{"g1/a": true}, hub, cache, identity, nil),
		share.NewResolver(share.NewStore(db), cache, nil),
		nil,
	)
	h.keepAlive = 50 * time.Millisecond

	r := mux.NewRouter()
	r.Use(testutil.ViewerHeader)
	h.Register(r, nil)
	return &env{db: db, direct: direct, router: r}
}

func (e *env) do(t *testing.T, method, path, viewer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if viewer != "" {
		req.Header.Set("X-Viewer", viewer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_DirectMessages(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/chats/b/messages", "a", `{"body":"look at this","shared_post_id":"p1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sent MessageView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	assert.Equal(t, "look at this", sent.Body)
	require.NotNil(t, sent.SharedPreview)
	require.NotNil(t, sent.SharedPreview.Post)
	assert.Equal(t, "Bilal", sent.SharedPreview.Post.AuthorName)

	rec = e.do(t, http.MethodGet, "/chats/a/messages", "b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var thread []MessageView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &thread))
	require.Len(t, thread, 1)
	assert.Equal(t, share.PostRef("p1"), thread[0].Shared)

	rec = e.do(t, http.MethodGet, "/conversations", "b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var convs []chat.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &convs))
	require.Len(t, convs, 1)
	assert.True(t, convs[0].Unread)
	assert.Equal(t, "a", convs[0].Partner.ID)

	rec = e.do(t, http.MethodDelete, "/messages/"+sent.ID, "b", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = e.do(t, http.MethodDelete, "/messages/"+sent.ID, "a", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, http.MethodDelete, "/messages/"+sent.ID, "a", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ErrorMapping(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		viewer string
		body   string
		want   int
	}{
		{"no viewer", http.MethodGet, "/conversations", "", "", http.StatusUnauthorized},
		{"two shared refs", http.MethodPost, "/chats/b/messages", "a", `{"shared_post_id":"p1","shared_user_id":"b"}`, http.StatusBadRequest},
		{"empty message", http.MethodPost, "/chats/b/messages", "a", `{"body":"  "}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/chats/b/messages", "a", `{`, http.StatusBadRequest},
		{"not a member", http.MethodGet, "/groups/g1/messages", "b", "", http.StatusForbidden},
		{"member", http.MethodGet, "/groups/g1/messages", "a", "", http.StatusOK},
		{"bad shared kind", http.MethodGet, "/shared/reel/r1", "a", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt.method, tt.path, tt.viewer, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_SharedPreviewUnavailable(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/shared/project/gone", "a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p share.Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.True(t, p.Unavailable)
}

func TestHandler_StreamDirect(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/chats/b/stream", nil)
	require.NoError(t, err)
	req.Header.Set("X-Viewer", "a")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 8)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data: ") {
				events <- strings.TrimPrefix(line, "data: ")
			}
		}
		close(events)
	}()

	first := <-events
	assert.Equal(t, "[]", first)

	_, err = e.direct.Send(common.WithViewer(context.Background(), "b"), "a", chat.SendInput{Body: "you there?"})
	require.NoError(t, err)

	select {
	case data := <-events:
		var msgs []MessageView
		require.NoError(t, json.NewDecoder(bytes.NewBufferString(data)).Decode(&msgs))
		require.Len(t, msgs, 1)
		assert.Equal(t, "you there?", msgs[0].Body)
	case <-ctx.Done():
		t.Fatal("no update on the stream")
	}
}

func TestSendRequest_Input(t *testing.T) {
	in, err := sendRequest{AttachmentURL: "https://cdn/a/1.mp4"}.input()
	require.NoError(t, err)
	assert.Equal(t, common.AttachmentDocument, in.Attachment.Kind)

	in, err = sendRequest{AttachmentURL: "https://cdn/a/1.mp4", AttachmentType: "video"}.input()
	require.NoError(t, err)
	assert.Equal(t, common.AttachmentVideo, in.Attachment.Kind)

	_, err = sendRequest{SharedPostID: testutil.Ptr("p"), SharedProjectID: testutil.Ptr("q")}.input()
	assert.ErrorIs(t, err, common.ErrValidationFailed)

	in, err = sendRequest{Body: "hi"}.input()
	require.NoError(t, err)
	assert.Nil(t, in.Attachment)
	assert.True(t, in.Shared.IsZero())
}
