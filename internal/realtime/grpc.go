package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/dynamicpb"

	"campusnet/internal/common"
	"campusnet/internal/logging"
)

type WatchRequest struct {
	Table  string `json:"table"`
	Filter Filter `json:"filter"`
}

// WatchPolicy decides whether viewerID may watch the requested slice of the feed.
type WatchPolicy func(ctx context.Context, viewerID string, req *WatchRequest) error

type ChangeFeedServer interface {
	Watch(req *WatchRequest, stream grpc.ServerStream) error
}

const watchMethod = "/campusnet.realtime.v1.ChangeFeed/Watch"

var changeFeedServiceDesc = grpc.ServiceDesc{
	ServiceName: "campusnet.realtime.v1.ChangeFeed",
	HandlerType: (*ChangeFeedServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "campusnet/realtime/changefeed",
}

func watchHandler(srv interface{}, stream grpc.ServerStream) error {
	req := dynamicpb.NewMessage(watchRequestDesc)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(ChangeFeedServer).Watch(decodeWatchRequest(req), stream)
}

func RegisterChangeFeedServer(s grpc.ServiceRegistrar, srv ChangeFeedServer) {
	s.RegisterService(&changeFeedServiceDesc, srv)
}

// ChangeFeedService streams hub events to authenticated clients.
type ChangeFeedService struct {
	feed   Feed
	policy WatchPolicy
	buffer int
	log    *zap.Logger
}

func NewChangeFeedService(feed Feed, policy WatchPolicy, log *zap.Logger) *ChangeFeedService {
	return &ChangeFeedService{feed: feed, policy: policy, buffer: 64, log: logging.OrNop(log)}
}

// Watch streams matching events until the client goes away. The policy is
// checked again before every event, so a viewer who loses access (a member
// removed from a group) gets PermissionDenied instead of further rows.
func (s *ChangeFeedService) Watch(req *WatchRequest, stream grpc.ServerStream) error {
	ctx := stream.Context()
	viewer, ok := common.ViewerFrom(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "viewer required")
	}
	if req.Table == "" || req.Table == AllTables {
		return status.Error(codes.InvalidArgument, "table is required")
	}
	if s.policy != nil {
		if err := s.policy(ctx, viewer, req); err != nil {
			return toStatus(err)
		}
	}

	events := make(chan Event, s.buffer)
	sub, err := s.feed.Subscribe(req.Table, req.Filter, func(e Event) {
		select {
		case events <- e:
		default:
			s.log.Warn("watch stream lagging, dropping event", zap.String("viewer", viewer), zap.String("table", e.Table))
		}
	})
	if err != nil {
		return status.Error(codes.Unavailable, err.Error())
	}
	defer sub.Close()

	s.log.Info("watch started", zap.String("viewer", viewer), zap.String("table", req.Table), zap.String("column", req.Filter.Column))
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			if s.policy != nil {
				if err := s.policy(ctx, viewer, req); err != nil {
					s.log.Info("watch revoked", zap.String("viewer", viewer), zap.String("table", req.Table), zap.Error(err))
					return toStatus(err)
				}
			}
			msg, err := encodeEvent(e)
			if err != nil {
				s.log.Error("encode change event", zap.String("table", e.Table), zap.Error(err))
				continue
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		}
	}
}

func toStatus(err error) error {
	switch common.KindOf(err) {
	case common.KindNotAuthenticated:
		return status.Error(codes.Unauthenticated, err.Error())
	case common.KindForbidden:
		return status.Error(codes.PermissionDenied, err.Error())
	case common.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case common.KindValidationFailed:
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Unavailable, err.Error())
}

// WatchStream is the client side of a Watch call.
type WatchStream struct {
	stream grpc.ClientStream
}

func (w *WatchStream) Recv() (Event, error) {
	msg := dynamicpb.NewMessage(changeEventDesc)
	if err := w.stream.RecvMsg(msg); err != nil {
		return Event{}, err
	}
	return decodeEvent(msg)
}

// Watch opens a change feed stream on conn.
func Watch(ctx context.Context, conn grpc.ClientConnInterface, req *WatchRequest) (*WatchStream, error) {
	stream, err := conn.NewStream(ctx, &changeFeedServiceDesc.Streams[0], watchMethod)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(encodeWatchRequest(req)); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &WatchStream{stream: stream}, nil
}

func LoggingUnaryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	log = logging.OrNop(log)
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("rpc failed", zap.String("method", info.FullMethod), zap.Duration("took", time.Since(start)), zap.Error(err))
		} else {
			log.Info("rpc completed", zap.String("method", info.FullMethod), zap.Duration("took", time.Since(start)))
		}
		return resp, err
	}
}

func LoggingStreamInterceptor(log *zap.Logger) grpc.StreamServerInterceptor {
	log = logging.OrNop(log)
	return func(srv interface{}, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		log.Info("stream started", zap.String("method", info.FullMethod))
		err := handler(srv, stream)
		if err != nil {
			log.Warn("stream ended with error", zap.String("method", info.FullMethod), zap.Duration("took", time.Since(start)), zap.Error(err))
		} else {
			log.Info("stream completed", zap.String("method", info.FullMethod), zap.Duration("took", time.Since(start)))
		}
		return err
	}
}
