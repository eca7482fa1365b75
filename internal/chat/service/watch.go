package service

import (
	"context"
	"sync"

	"campusnet/internal/common"
	"campusnet/internal/realtime"
)

// Watch is a live subscription opened by one of the channels. It ends when
// Close is called or the context it was opened with is done.
type Watch struct {
	cancel context.CancelFunc
	sub    realtime.Subscription
	once   sync.Once
}

func (w *Watch) Close() {
	w.once.Do(func() {
		w.cancel()
		if w.sub != nil {
			w.sub.Close()
		}
	})
}

func startWatch(ctx context.Context, op string, feed realtime.Feed, table string, filter realtime.Filter, handle func(context.Context, realtime.Event)) (*Watch, error) {
	wctx, cancel := context.WithCancel(ctx)
	w := &Watch{cancel: cancel}

	sub, err := feed.Subscribe(table, filter, func(e realtime.Event) {
		if wctx.Err() != nil {
			return
		}
		handle(wctx, e)
	})
	if err != nil {
		cancel()
		return nil, common.E(common.KindStoreUnavailable, op, err)
	}
	w.sub = sub

	go func() {
		<-wctx.Done()
		w.Close()
	}()
	return w, nil
}
