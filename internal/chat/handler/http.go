// Package handler exposes the chat services over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"campusnet/internal/chat"
	"campusnet/internal/chat/service"
	"campusnet/internal/common"
	"campusnet/internal/httpx"
	"campusnet/internal/logging"
	"campusnet/internal/share"
)

type Handler struct {
	conversations *service.ConversationAggregator
	direct        *service.DirectChannel
	groups        *service.GroupChannel
	resolver      *share.Resolver
	keepAlive     time.Duration
	log           *zap.Logger
}

func NewHandler(conversations *service.ConversationAggregator, direct *service.DirectChannel, groups *service.GroupChannel, resolver *share.Resolver, log *zap.Logger) *Handler {
	return &Handler{
		conversations: conversations,
		direct:        direct,
		groups:        groups,
		resolver:      resolver,
		keepAlive:     25 * time.Second,
		log:           logging.OrNop(log),
	}
}

// Register mounts the chat routes. send is applied to the routes that write
// messages so callers can rate limit them.
func (h *Handler) Register(r *mux.Router, send mux.MiddlewareFunc) {
	if send == nil {
		send = func(next http.Handler) http.Handler { return next }
	}

	r.HandleFunc("/conversations", h.listConversations).Methods(http.MethodGet)
	r.HandleFunc("/conversations/stream", h.streamConversations).Methods(http.MethodGet)

	r.HandleFunc("/chats/{partnerID}/messages", h.listDirect).Methods(http.MethodGet)
	r.Handle("/chats/{partnerID}/messages", send(http.HandlerFunc(h.sendDirect))).Methods(http.MethodPost)
	r.HandleFunc("/chats/{partnerID}/stream", h.streamDirect).Methods(http.MethodGet)
	r.HandleFunc("/messages/{messageID}", h.deleteDirect).Methods(http.MethodDelete)

	r.HandleFunc("/groups/{groupID}/messages", h.listGroup).Methods(http.MethodGet)
	r.Handle("/groups/{groupID}/messages", send(http.HandlerFunc(h.sendGroup))).Methods(http.MethodPost)
	r.HandleFunc("/groups/{groupID}/stream", h.streamGroup).Methods(http.MethodGet)
	r.HandleFunc("/group-messages/{messageID}", h.deleteGroup).Methods(http.MethodDelete)

	r.HandleFunc("/shared/{kind}/{id}", h.sharedPreview).Methods(http.MethodGet)
}

// MessageView is a message with its shared item resolved for display.
type MessageView struct {
	chat.Message
	SharedPreview *share.Preview `json:"shared_preview,omitempty"`
}

func (h *Handler) views(ctx context.Context, msgs []chat.Message) []MessageView {
	refs := make([]share.Ref, 0)
	for _, m := range msgs {
		if !m.Shared.IsZero() {
			refs = append(refs, m.Shared)
		}
	}
	previews := map[share.Ref]share.Preview{}
	if len(refs) > 0 && h.resolver != nil {
		var err error
		if previews, err = h.resolver.ResolveAll(ctx, refs); err != nil {
			h.log.Warn("resolving shared items failed", zap.Error(err))
		}
	}

	out := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		v := MessageView{Message: m}
		if p, ok := previews[m.Shared]; ok {
			v.SharedPreview = &p
		}
		out = append(out, v)
	}
	return out
}

type sendRequest struct {
	Body            string  `json:"body"`
	AttachmentURL   string  `json:"attachment_url,omitempty"`
	AttachmentType  string  `json:"attachment_type,omitempty"`
	SharedPostID    *string `json:"shared_post_id,omitempty"`
	SharedProjectID *string `json:"shared_project_id,omitempty"`
	SharedUserID    *string `json:"shared_user_id,omitempty"`
}

func (req sendRequest) input() (chat.SendInput, error) {
	ref, err := share.RefFromColumns(req.SharedPostID, req.SharedProjectID, req.SharedUserID)
	if err != nil {
		return chat.SendInput{}, err
	}
	in := chat.SendInput{Body: req.Body, Shared: ref}
	if req.AttachmentURL != "" {
		kind := common.ParseAttachmentKind(req.AttachmentType)
		if kind == common.AttachmentNone {
			kind = common.DetectAttachmentKind("", req.AttachmentURL)
		}
		in.Attachment = &chat.Attachment{URL: req.AttachmentURL, Kind: kind}
	}
	return in, nil
}

func (h *Handler) decodeSend(r *http.Request, op string) (chat.SendInput, error) {
	var req sendRequest
	if err := httpx.Decode(r, op, &req); err != nil {
		return chat.SendInput{}, err
	}
	return req.input()
}

func (h *Handler) listConversations(w http.ResponseWriter, r *http.Request) {
	viewer, err := httpx.Viewer(r, "chat.conversations")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	convs, err := h.conversations.ListConversations(r.Context(), viewer)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, convs)
}

func (h *Handler) streamConversations(w http.ResponseWriter, r *http.Request) {
	viewer, err := httpx.Viewer(r, "chat.conversations.stream")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	serveStream(h, w, r, "conversations",
		func(ctx context.Context) ([]chat.Conversation, error) {
			return h.conversations.ListConversations(ctx, viewer)
		},
		func(ctx context.Context, onChange func([]chat.Conversation, error)) (*service.Watch, error) {
			return h.conversations.Watch(ctx, viewer, onChange)
		},
		func(_ context.Context, convs []chat.Conversation) any { return convs },
	)
}

func (h *Handler) listDirect(w http.ResponseWriter, r *http.Request) {
	viewer, err := httpx.Viewer(r, "chat.direct.list")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	msgs, err := h.direct.ListMessages(r.Context(), viewer, httpx.Var(r, "partnerID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.views(r.Context(), msgs))
}

func (h *Handler) sendDirect(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeSend(r, "chat.direct.send")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	msg, err := h.direct.Send(r.Context(), httpx.Var(r, "partnerID"), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, h.views(r.Context(), []chat.Message{*msg})[0])
}

func (h *Handler) deleteDirect(w http.ResponseWriter, r *http.Request) {
	if err := h.direct.Delete(r.Context(), httpx.Var(r, "messageID")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) streamDirect(w http.ResponseWriter, r *http.Request) {
	viewer, err := httpx.Viewer(r, "chat.direct.stream")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	partner := httpx.Var(r, "partnerID")
	serveStream(h, w, r, "messages",
		func(ctx context.Context) ([]chat.Message, error) {
			return h.direct.ListMessages(ctx, viewer, partner)
		},
		func(ctx context.Context, onChange func([]chat.Message, error)) (*service.Watch, error) {
			return h.direct.Watch(ctx, partner, onChange)
		},
		func(ctx context.Context, msgs []chat.Message) any { return h.views(ctx, msgs) },
	)
}

func (h *Handler) listGroup(w http.ResponseWriter, r *http.Request) {
	viewer, err := httpx.Viewer(r, "chat.group.list")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	msgs, err := h.groups.ListMessages(r.Context(), viewer, httpx.Var(r, "groupID"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.views(r.Context(), msgs))
}

func (h *Handler) sendGroup(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeSend(r, "chat.group.send")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	msg, err := h.groups.Send(r.Context(), httpx.Var(r, "groupID"), in)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, h.views(r.Context(), []chat.Message{*msg})[0])
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.Delete(r.Context(), httpx.Var(r, "messageID")); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) streamGroup(w http.ResponseWriter, r *http.Request) {
	viewer, err := httpx.Viewer(r, "chat.group.stream")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	groupID := httpx.Var(r, "groupID")
	serveStream(h, w, r, "messages",
		func(ctx context.Context) ([]chat.Message, error) {
			return h.groups.ListMessages(ctx, viewer, groupID)
		},
		func(ctx context.Context, onChange func([]chat.Message, error)) (*service.Watch, error) {
			return h.groups.Watch(ctx, groupID, onChange)
		},
		func(ctx context.Context, msgs []chat.Message) any { return h.views(ctx, msgs) },
	)
}

func (h *Handler) sharedPreview(w http.ResponseWriter, r *http.Request) {
	if _, err := httpx.Viewer(r, "chat.shared"); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	ref := share.Ref{Kind: share.Kind(httpx.Var(r, "kind")), ID: httpx.Var(r, "id")}
	p, err := h.resolver.ResolveRef(r.Context(), ref)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}
