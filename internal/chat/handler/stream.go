package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"campusnet/internal/chat/service"
	"campusnet/internal/common"
	"campusnet/internal/httpx"
)

type update[T any] struct {
	v   T
	err error
}

// serveStream opens the watch before the first read so no change between the
// snapshot and the subscription is missed. Only the newest pending update is
// kept when the client falls behind.
func serveStream[T any](
	h *Handler,
	w http.ResponseWriter,
	r *http.Request,
	event string,
	initial func(context.Context) (T, error),
	open func(context.Context, func(T, error)) (*service.Watch, error),
	render func(context.Context, T) any,
) {
	ctx := r.Context()
	updates := make(chan update[T], 1)
	watch, err := open(ctx, func(v T, err error) {
		u := update[T]{v: v, err: err}
		for {
			select {
			case updates <- u:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	defer watch.Close()

	first, err := initial(ctx)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	es, err := httpx.NewEventStream(w)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	if err := es.Send(event, render(ctx, first)); err != nil {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			if u.err != nil {
				h.log.Debug("stream refresh failed", zap.String("event", event), zap.Error(u.err))
				_ = es.Send("error", httpx.ErrorResponse{Error: u.err.Error(), Kind: common.KindOf(u.err).String()})
				if common.KindOf(u.err) == common.KindForbidden {
					return
				}
				continue
			}
			if err := es.Send(event, render(ctx, u.v)); err != nil {
				return
			}
		case <-ticker.C:
			if err := es.Ping(); err != nil {
				return
			}
		}
	}
}
