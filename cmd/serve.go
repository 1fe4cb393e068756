package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/jmehdipour/wa-assistant/internal/db"
	httpSrv "github.com/jmehdipour/wa-assistant/internal/http"
	"github.com/jmehdipour/wa-assistant/internal/logger"
	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/scheduler"
	"github.com/jmehdipour/wa-assistant/internal/service/messenger"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daemon: daily scheduled messages plus the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noHTTP, _ := cmd.Flags().GetBool("no-http")
		resync, _ := cmd.Flags().GetDuration("resync")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withMessenger(cmd, func(st *store.Store, msg *messenger.Service) error {
			sched := scheduler.New(time.Local)
			tasks := scheduler.NewTasks(sched, func(t model.ScheduledTask) {
				if _, err := msg.SendScheduled(ctx, t.Phone, t.Message); err != nil {
					logger.Log.Error("scheduled send failed", zap.String("id", t.ID), zap.Error(err))
				}
			})
			syncTasks(st, tasks)
			sched.Start()
			defer sched.Stop()

			errCh := make(chan error, 1)
			var server *httpSrv.Server
			if !noHTTP {
				redisClient, err := db.NewRedisClient(cfg.Redis)
				if err != nil {
					return fmt.Errorf("redis connect: %w", err)
				}
				if redisClient != nil {
					defer app.LogClose("redis", redisClient.Close)
				}

				server = httpSrv.NewServer(cfg, st, msg, redisClient)
				go func() {
					if err := server.Start(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- err
					}
				}()
			}

			logger.Log.Info("daemon started",
				zap.Int("scheduled", tasks.Len()),
				zap.Bool("http", !noHTTP),
				zap.String("transport", cfg.Sender.Transport),
			)

			var tick <-chan time.Time
			if resync > 0 {
				t := time.NewTicker(resync)
				defer t.Stop()
				tick = t.C
			}

			var runErr error
		loop:
			for {
				select {
				case <-ctx.Done():
					logger.Log.Info("signal received, shutting down")
					break loop
				case err := <-errCh:
					runErr = fmt.Errorf("http server exited: %w", err)
					break loop
				case <-tick:
					syncTasks(st, tasks)
				}
			}

			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}
			return runErr
		})
	},
}

// syncTasks re-reads schedules.json so tasks added or removed from the CLI while the
// daemon runs take effect.
func syncTasks(st *store.Store, tasks *scheduler.Tasks) {
	added, removed, invalid := tasks.Sync(st.ListSchedules())
	for _, t := range invalid {
		logger.Log.Warn("skipping schedule with bad time", zap.String("id", t.ID), zap.String("time", t.Time))
	}
	if added > 0 || removed > 0 {
		logger.Log.Info("schedules synced", zap.Int("added", added), zap.Int("removed", removed), zap.Int("active", tasks.Len()))
	}
}

func init() {
	serveCmd.Flags().Bool("no-http", false, "only run the scheduler")
	serveCmd.Flags().Duration("resync", time.Minute, "how often to reload schedules.json (0 disables)")
}
