package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chatrepo "campusnet/internal/chat/repository"
	chatservice "campusnet/internal/chat/service"
	"campusnet/internal/common"
	"campusnet/internal/dbmysql"
	"campusnet/internal/feed"
	"campusnet/internal/querycache"
	"campusnet/internal/realtime"
)

func newMigrateCommand(env Env, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(env, opts)
			if err != nil {
				return err
			}
			defer s.close()

			if err := dbmysql.AutoMigrate(s.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"tables": len(dbmysql.Models())})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(dbmysql.Models()))
			return nil
		},
	}
}

func newConversationsCommand(env Env, opts *Options) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "List a user's direct conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(env, opts)
			if err != nil {
				return err
			}
			defer s.close()

			hub := realtime.NewHub(1, 1, s.log)
			defer hub.Shutdown()
			agg := chatservice.NewConversationAggregator(chatrepo.NewDirectMessageRepository(s.db), hub, querycache.New(), s.log)

			convs, err := agg.ListConversations(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), convs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PARTNER\tNAME\tLAST MESSAGE\tWHEN\tUNREAD")
			for _, c := range convs {
				unread := ""
				if c.Unread {
					unread = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Partner.ID, c.Partner.Name, c.LastMessageText, c.RelativeTime, unread)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to list conversations for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSweepStoriesCommand(env Env, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-stories",
		Short: "Delete expired stories now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(env, opts)
			if err != nil {
				return err
			}
			defer s.close()

			sweeper, err := feed.NewStorySweeper(feed.NewFeedRepository(s.db), s.cfg.Stories.SweepCron, s.log)
			if err != nil {
				return err
			}
			sweeper.SetClock(env.Now)
			deleted, err := sweeper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			s.log.Info("sweep finished", zap.Int("deleted", deleted))
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"deleted": deleted})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired stories\n", deleted)
			return nil
		},
	}
}

func newTokenCommand(env Env, opts *Options) *cobra.Command {
	var userID, college string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(env, opts)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}
			tokens := common.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.TokenTTL())
			token, err := tokens.GenerateToken(userID, college)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"user_id": userID, "token": token})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id the token is issued to")
	cmd.Flags().StringVar(&college, "college", "", "college claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
