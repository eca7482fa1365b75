//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"campusnet/internal/api"
	chathandler "campusnet/internal/chat/handler"
	chatrepo "campusnet/internal/chat/repository"
	chatservice "campusnet/internal/chat/service"
	"campusnet/internal/common"
	"campusnet/internal/config"
	"campusnet/internal/dbmysql"
	"campusnet/internal/feed"
	"campusnet/internal/follow"
	"campusnet/internal/groups"
	"campusnet/internal/interactions"
	"campusnet/internal/media"
	"campusnet/internal/notif"
	"campusnet/internal/realtime"
	"campusnet/internal/share"
	"campusnet/internal/storage"
	"campusnet/internal/user"
	"campusnet/internal/verify"
)

var coreSet = wire.NewSet(
	ProvideLogger,
	ProvideOrigin,
	ProvideHub,
	wire.Bind(new(realtime.Feed), new(*realtime.Hub)),
	ProvideDatabase,
	ProvideRedisBridge,
	ProvideCache,
	ProvideIdentity,
	ProvideTokenManager,
)

var usersSet = wire.NewSet(
	user.NewUserRepository,
	user.NewUserService,
	wire.Bind(new(groups.UserLookup), new(user.UserService)),
	wire.Bind(new(verify.StatusRecorder), new(user.UserService)),
	groups.NewGroupRepository,
	groups.NewService,
	wire.Bind(new(chatservice.MembershipChecker), new(*groups.Service)),
)

var apiSet = wire.NewSet(
	coreSet,
	usersSet,

	dbmysql.NewNotificationRepository,
	ProvideNotificationService,
	wire.Bind(new(common.Notifier), new(*notif.NotificationService)),
	notif.NewNotificationHandler,

	chatrepo.NewDirectMessageRepository,
	chatrepo.NewGroupMessageRepository,
	chatservice.NewConversationAggregator,
	chatservice.NewDirectChannel,
	chatservice.NewGroupChannel,
	share.NewStore,
	share.NewResolver,
	chathandler.NewHandler,

	feed.NewFeedRepository,
	wire.Bind(new(feed.Posts), new(*feed.FeedRepository)),
	wire.Bind(new(feed.Projects), new(*feed.FeedRepository)),
	wire.Bind(new(feed.Stories), new(*feed.FeedRepository)),
	wire.FieldsOf(new(*config.Config), "Stories", "RateLimit"),
	feed.NewFeedService,
	feed.NewFeedHandler,
	ProvideStorySweeper,

	interactions.NewRepository,
	interactions.NewCounters,
	interactions.NewComments,
	ProvideInteractionsHandler,
	ProvideInvalidator,
	follow.NewFollowRepository,
	follow.NewService,
	follow.NewHandler,
	user.NewUserHandler,
	groups.NewHandler,

	ProvideObjectStore,
	wire.Bind(new(storage.ObjectStorage), new(storage.Store)),
	ProvideTracker,
	ProvideAttachments,
	storage.NewHandler,

	ProvideVerifier,
	verify.NewService,
	verify.NewHandler,

	wire.Struct(new(api.Routes), "*"),
	api.NewSendLimiter,
	api.NewRouter,
	wire.Struct(new(APIApplication), "*"),
)

func InitializeAPI(ctx context.Context, cfg *config.Config) (*APIApplication, func(), error) {
	wire.Build(apiSet)
	return nil, nil, nil
}

func InitializeRealtime(ctx context.Context, cfg *config.Config) (*RealtimeApplication, func(), error) {
	wire.Build(
		coreSet,
		usersSet,
		chatservice.WatchPolicy,
		realtime.NewChangeFeedService,
		ProvideGRPCServer,
		wire.Struct(new(RealtimeApplication), "*"),
	)
	return nil, nil, nil
}

func InitializeMedia(ctx context.Context, cfg *config.Config) (*MediaApplication, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideObjectStore,
		wire.Bind(new(storage.ObjectReader), new(storage.Store)),
		media.NewHTTPServer,
		wire.Struct(new(MediaApplication), "*"),
	)
	return nil, nil, nil
}
