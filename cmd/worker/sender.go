package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/app"
	"github.com/jmehdipour/wa-assistant/internal/config"
	"github.com/jmehdipour/wa-assistant/internal/db"
	"github.com/jmehdipour/wa-assistant/internal/kafka"
	"github.com/jmehdipour/wa-assistant/internal/logger"
	"github.com/jmehdipour/wa-assistant/internal/metrics"
	"github.com/jmehdipour/wa-assistant/internal/repository"
	"github.com/jmehdipour/wa-assistant/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var senderCmd = &cobra.Command{
	Use:   "sender",
	Short: "Consume queued messages from Kafka and deliver them",
	Args:  cobra.NoArgs,
	RunE:  runSender,
}

func runSender(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	transport := strings.ToLower(strings.TrimSpace(cfg.Worker.Transport))
	if transport == app.TransportKafka {
		return fmt.Errorf("worker.transport must not be %q (it would re-publish to %s)", transport, cfg.Kafka.Topic)
	}

	// 2) store + transport → messenger
	st, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	tr, closeTr, err := app.NewTransport(cfg, transport, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("transport %s: %w", transport, err)
	}
	defer app.LogClose("transport", closeTr)
	msg := app.NewMessenger(cfg, st, tr)

	// 3) optional SQL sink
	var sink worker.Sink
	if cfg.Worker.MirrorToSink {
		sqlDB, err := db.OpenSink(cfg.Sink)
		if err != nil {
			return fmt.Errorf("sink connect: %w", err)
		}
		defer app.LogClose("sink", sqlDB.Close)

		repo, err := repository.NewSendLogRepository(sqlDB, strings.ToLower(cfg.Sink.Driver))
		if err != nil {
			return err
		}
		sink = repo
	}

	// 4) kafka consumer
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "waa-sender"
	}
	consumer, err := kafka.NewConsumerFromConfig(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.Topic,
		GroupID:        groupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer app.LogClose("kafka consumer", consumer.Close)

	w := worker.NewSenderKafka(consumer, msg, sink)

	// tune knobs
	if cfg.Worker.Count > 0 {
		w.Workers = cfg.Worker.Count
	}
	w.Delay = cfg.Worker.Delay
	if cfg.Worker.BatchSize > 0 {
		w.BatchSize = cfg.Worker.BatchSize
	}
	if cfg.Worker.BatchWait > 0 {
		w.BatchWait = cfg.Worker.BatchWait
	}

	// 5) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("sender started",
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", groupID),
		zap.String("transport", transport),
		zap.Int("workers", w.Workers),
		zap.Bool("mirror_to_sink", sink != nil),
	)

	return w.Run(ctx)
}
