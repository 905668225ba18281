package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"oxigo-server/internal/config"
	"oxigo-server/internal/database"
	httpserver "oxigo-server/internal/http"
	"oxigo-server/internal/incidents"
	"oxigo-server/internal/ingest"
	"oxigo-server/internal/logging"
	"oxigo-server/internal/metrics"
	"oxigo-server/internal/notify"
	"oxigo-server/internal/registration"
	"oxigo-server/internal/rewards"
	"oxigo-server/internal/sensors"
	"oxigo-server/internal/tracks"
	"oxigo-server/internal/users"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, notification workers and MQTT ingestion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

// newDispatcher picks the notification backend. An unconfigured backend
// falls back to logging.
func newDispatcher(cfg *config.Config, log logging.Logger) (notify.Dispatcher, func() error) {
	noop := func() error { return nil }
	switch cfg.NotifyBackend {
	case "sendgrid":
		if cfg.SendGridAPIKey != "" {
			return notify.NewSendGridClient(cfg.SendGridAPIKey, cfg.SendGridURL, cfg.MailFrom, log), noop
		}
		log.Warn(context.Background(), "SENDGRID_API_KEY not set, notifications will only be logged")
	case "kafka":
		if len(cfg.KafkaBrokers) > 0 {
			k := notify.NewKafkaDispatcher(cfg.KafkaBrokers, cfg.KafkaNotifyTopic, log)
			return k, k.Close
		}
		log.Warn(context.Background(), "KAFKA_BROKERS not set, notifications will only be logged")
	case "log":
	default:
		log.Warn(context.Background(), "unknown notify backend, using log", "backend", cfg.NotifyBackend)
	}
	return notify.NewLogDispatcher(log), noop
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, log := opts.Config, opts.Log

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	m := metrics.New()
	dispatcher, closeDispatcher := newDispatcher(cfg, log)
	defer func() {
		if err := closeDispatcher(); err != nil {
			log.Warn(ctx, "closing notification backend", "error", err)
		}
	}()
	queue := notify.NewQueue(dispatcher, log.With("component", "notify"), notify.QueueOptions{
		Workers:     cfg.NotifyWorkers,
		Size:        cfg.NotifyQueueSize,
		MaxAttempts: cfg.NotifyMaxAttempts,
		RetryDelay:  cfg.NotifyRetryDelay,
		Recorder:    m,
	})

	hasher := users.NewBcryptHasher()
	userSvc := users.NewService(db, hasher)
	sensorSvc := sensors.NewService(db, log)

	engine, err := httpserver.NewServer(cfg, httpserver.Deps{
		Users:        userSvc,
		Registration: registration.NewService(db, hasher, queue, log, cfg.RegisterCodeTTL),
		Incidents:    incidents.NewService(db, userSvc, queue, log),
		Rewards:      rewards.NewService(db, log),
		Sensors:      sensorSvc,
		Tracks:       tracks.NewService(db, log),
		Metrics:      m,
		Log:          log,
	})
	if err != nil {
		return err
	}

	if cfg.MQTTBroker != "" {
		sub := ingest.NewSubscriber(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTReadingsTopic, sensorSvc, m, log.With("component", "mqtt"))
		if err := sub.Start(ctx); err != nil {
			log.Error(ctx, "mqtt ingestion disabled", "broker", cfg.MQTTBroker, "error", err)
		} else {
			defer sub.Stop()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "http shutdown", "error", err)
	}
	if err := queue.Close(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "notification queue not drained", "error", err)
	}
	return nil
}
