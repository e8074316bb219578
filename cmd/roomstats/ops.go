package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/roomstats/cmd/roomstats/cli"
	"github.com/odyssey-erp/roomstats/internal/auth"
	"github.com/odyssey-erp/roomstats/internal/shared"
	"github.com/odyssey-erp/roomstats/jobs"
)

func newWarmupCmd() *cobra.Command {
	var (
		payload jobs.WarmupPayload
		inline  bool
	)
	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Pre-populate the analytics cache",
		Long: `warmup enqueues an analytics:warmup task for the worker. With --inline it
loads every window in this process instead, which needs Postgres and Redis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if !inline {
				c := cli.NewJobsCLI(redisOpt(cfg))
				defer func() { _ = c.Close() }()
				info, err := c.TriggerWarmup(cmd.Context(), payload)
				if err != nil {
					return fmt.Errorf("enqueue warmup: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s (%s)\n", info.Type, info.ID)
				return nil
			}

			b, err := openBackend(cmd.Context(), cfg, logger, true)
			if err != nil {
				return err
			}
			defer b.Close(logger)

			job := jobs.NewWarmupJob(b.service, b.queries, logger, nil)
			job.Limit = cfg.AnalyticsTopLimit
			task, err := jobs.NewWarmupTask(payload)
			if err != nil {
				return err
			}
			return job.Handle(cmd.Context(), task)
		},
	}
	cmd.Flags().IntVar(&payload.Days, "days", 30, "Rolling window length in days")
	cmd.Flags().IntVar(&payload.Months, "months", 3, "Also warm each active month this far back")
	cmd.Flags().BoolVar(&inline, "inline", false, "Run the warmup in this process")
	return cmd
}

func newBumpCmd() *cobra.Command {
	var (
		reason string
		inline bool
	)
	cmd := &cobra.Command{
		Use:   "bump",
		Short: "Invalidate every cached analytics result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if !inline {
				c := cli.NewJobsCLI(redisOpt(cfg))
				defer func() { _ = c.Close() }()
				info, err := c.TriggerBump(cmd.Context(), reason)
				if err != nil {
					return fmt.Errorf("enqueue bump: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s (%s)\n", info.Type, info.ID)
				return nil
			}

			b, err := openBackend(cmd.Context(), cfg, logger, true)
			if err != nil {
				return err
			}
			defer b.Close(logger)

			task, err := jobs.NewBumpTask(reason)
			if err != nil {
				return err
			}
			return jobs.NewBumpJob(b.service.Cache(), logger, nil).Handle(cmd.Context(), task)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "cli", "Reason recorded in the worker log")
	cmd.Flags().BoolVar(&inline, "inline", false, "Bump the cache version directly instead of enqueueing")
	return cmd
}

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the background job queue",
	}
	var size int
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show default queue counters and scheduled tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			c := cli.NewJobsCLI(redisOpt(cfg))
			defer func() { _ = c.Close() }()

			s, err := c.InspectQueue(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n", s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry)

			scheduled, err := c.ListScheduled(cmd.Context(), size)
			if err != nil {
				return err
			}
			for _, info := range scheduled {
				fmt.Fprintf(out, "%s\t%s\t%s\n", info.ID, info.Type, info.NextProcessAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	stats.Flags().IntVar(&size, "size", 10, "Scheduled tasks to list")
	cmd.AddCommand(stats)
	return cmd
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage dashboard access tokens",
	}
	var (
		userID int64
		perms  []string
		ttl    time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Print a signed bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user must be positive")
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.JWTTTL
			}
			tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, ttl)
			if err != nil {
				return err
			}
			normalized := make([]string, 0, len(perms))
			for _, p := range perms {
				if p = strings.TrimSpace(p); p != "" {
					normalized = append(normalized, p)
				}
			}
			token, err := tokens.Issue(userID, normalized)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().Int64Var(&userID, "user", 0, "User id the token represents")
	issue.Flags().StringSliceVar(&perms, "perm", shared.RoomAnalyticsScopes(), "Permission to grant (repeatable)")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: JWT_TTL)")
	cmd.AddCommand(issue)
	return cmd
}
