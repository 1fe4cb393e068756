// Package app wires configuration into the store, transports and services shared by
// the CLI commands, the daemon and the worker.
package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jmehdipour/wa-assistant/internal/config"
	"github.com/jmehdipour/wa-assistant/internal/dispatcher"
	"github.com/jmehdipour/wa-assistant/internal/kafka"
	"github.com/jmehdipour/wa-assistant/internal/logger"
	"github.com/jmehdipour/wa-assistant/internal/service/business"
	"github.com/jmehdipour/wa-assistant/internal/service/messenger"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"go.uber.org/zap"
)

const (
	TransportManual = "manual"
	TransportHTTP   = "http"
	TransportKafka  = "kafka"
)

var ErrNoProviders = errors.New("no providers enabled in config")

// OpenStore builds the directory store from cfg and seeds it on first use.
func OpenStore(cfg config.Config) (*store.Store, error) {
	format := store.ContactsFormat(strings.ToLower(strings.TrimSpace(cfg.Store.ContactsFormat)))
	if format != store.FormatJSON && format != store.FormatText {
		return nil, fmt.Errorf("store: unknown contacts_format %q", cfg.Store.ContactsFormat)
	}

	st := store.New(cfg.Store.Dir,
		store.WithCountryCode(cfg.Owner.CountryCode),
		store.WithOwner(cfg.Owner.Name, cfg.Owner.Phone),
		store.WithContactsFormat(format),
		store.WithLogger(logger.Log.Named("store")),
	)
	if err := st.EnsureInitialized(); err != nil {
		return nil, fmt.Errorf("init store %s: %w", cfg.Store.Dir, err)
	}
	return st, nil
}

// NewTransport builds the transport called name. The returned close func releases
// its resources and is never nil. out receives manual-transport instructions.
func NewTransport(cfg config.Config, name string, out io.Writer) (messenger.Transport, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TransportManual:
		return dispatcher.NewManualTransport(out), noop, nil

	case TransportHTTP:
		var provs []dispatcher.Provider
		for _, pc := range cfg.Providers {
			if !pc.Enabled || strings.TrimSpace(pc.BaseURL) == "" {
				continue
			}
			provs = append(provs,
				dispatcher.NewHTTPProvider(
					pc.Name,
					strings.TrimRight(pc.BaseURL, "/"),
					pc.SendPath,
					pc.Token,
					pc.TimeoutMs,
					pc.Breaker.FailThreshold,
					pc.Breaker.OpenForMs,
				),
			)
		}
		if len(provs) == 0 {
			return nil, noop, ErrNoProviders
		}
		return dispatcher.NewDispatcher(provs, cfg.Dispatcher.MaxAttempts), noop, nil

	case TransportKafka:
		if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
			return nil, noop, errors.New("kafka transport needs kafka.brokers and kafka.topic")
		}
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		return p, p.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown transport %q", name)
	}
}

// NewMessenger builds the messenger over st and tr with the sender settings of cfg.
func NewMessenger(cfg config.Config, st *store.Store, tr messenger.Transport) *messenger.Service {
	return messenger.New(st, tr,
		messenger.WithDelay(cfg.Sender.Delay),
		messenger.WithAttachmentTypes(cfg.Sender.AttachmentTypes),
		messenger.WithOwnerPhone(cfg.Owner.Phone),
		messenger.WithLogger(logger.Log.Named("messenger")),
	)
}

func NewBusiness(cfg config.Config, st *store.Store) *business.Service {
	return business.New(st, cfg.Owner.BusinessName, cfg.Owner.Phone, logger.Log.Named("business"))
}

// LogClose runs closeFn and logs a failure.
func LogClose(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Log.Warn("close failed", zap.String("what", what), zap.Error(err))
	}
}
