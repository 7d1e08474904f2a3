package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/mauv0809/matchmaker/internal/backend"
	"github.com/mauv0809/matchmaker/internal/compat"
	"github.com/mauv0809/matchmaker/internal/config"
	server "github.com/mauv0809/matchmaker/internal/http"
	"github.com/mauv0809/matchmaker/internal/inngest"
	"github.com/mauv0809/matchmaker/internal/matchmaking"
	"github.com/mauv0809/matchmaker/internal/metrics"
	"github.com/mauv0809/matchmaker/internal/notifier"
	"github.com/mauv0809/matchmaker/internal/notifier/slack"
	"github.com/mauv0809/matchmaker/internal/pubsub"
	"github.com/mauv0809/matchmaker/internal/scheduler"
	"github.com/mauv0809/matchmaker/internal/stats"
)

// External sinks are fed from bounded queues so a slow sink never holds up a pass.
const (
	sinkBuffer  = 1024
	sinkTimeout = 10 * time.Second
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown log level, keeping default", "level", cfg.Server.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, storeTeardown, err := backend.Open(ctx, cfg)
	storeInitDuration := time.Since(startTime)
	log.Info("Store initialization time recorded", "backend", cfg.Store.Backend, "duration_ms", storeInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize store: %s", err)
	}
	defer func() {
		log.Info("Closing store connection")
		storeTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	observer := stats.NewObserver(stores.Counter)
	defer observer.Close()
	m := metrics.Multi(metricsSvc, observer)

	// Every match is appended to the local event log. Slack and Pub/Sub are optional extra sinks.
	publishers := []notifier.Publisher{stores.Events}
	if cfg.Slack.Enabled() {
		slackSink := notifier.NewAsync("slack", slack.NewPublisher(cfg.Slack.Token, cfg.Slack.ChannelID, cfg.Slack.DryRun, m), sinkBuffer, sinkTimeout)
		defer slackSink.Close()
		publishers = append(publishers, slackSink)
		log.Info("Slack announcements enabled", "channel", cfg.Slack.ChannelID, "dry_run", cfg.Slack.DryRun)
	}
	if cfg.PubSub.Enabled() {
		ps, psTeardown, err := pubsub.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicID, cfg.Server.InstanceID, m)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		defer psTeardown()
		psSink := notifier.NewAsync("pubsub", ps, sinkBuffer, sinkTimeout)
		defer psSink.Close()
		publishers = append(publishers, psSink)
		log.Info("Pub/Sub fan-out enabled", "project", cfg.PubSub.ProjectID, "topic", cfg.PubSub.TopicID)
	}
	matchNotifier := notifier.NewMatchNotifier(publishers...)

	engine := compat.New(cfg.Matchmaking.MaxSkillGap, cfg.Matchmaking.MaxLatency)
	sched := scheduler.New(stores.Pool, engine, stores.Guard, stores.Matches, matchNotifier, m, scheduler.Config{
		MatchSize: cfg.Matchmaking.MatchSize,
		Interval:  cfg.Matchmaking.Interval,
	})
	svc := matchmaking.NewService(stores.Pool, engine, stores.Matches, stores.Events, m)

	var trigger inngest.Trigger
	if cfg.Inngest.Enabled() {
		trigger = newInngestTrigger(cfg.Inngest, sched)
	}

	var relay notifier.Publisher
	if cfg.PubSub.Enabled() {
		relay = stores.RelayTarget()
	}
	s := server.NewServer(svc, sched, stores.Counter, metricsHandler, relay, cfg.Server.InstanceID, trigger)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		sched.Run(ctx)
	}()

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Server.Port, "instance", cfg.Server.InstanceID)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
		}
		stop()
	case <-ctx.Done():
		log.Info("Shutdown signal received")

		// Create a context with a timeout for the shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	<-schedulerDone
	log.Info("Server process shutting down")
}

func newInngestTrigger(cfg config.InngestConfig, runner inngest.PassRunner) inngest.Trigger {
	options := inngestgo.ClientOpts{
		AppID: cfg.AppID,
		Dev:   &cfg.Dev,
	}
	if cfg.SigningKey != "" {
		options.SigningKey = &cfg.SigningKey
	}
	if cfg.EventKey != "" {
		options.EventKey = &cfg.EventKey
	}
	inngestProvider, err := inngestgo.NewClient(options)
	if err != nil {
		log.Fatalf("Failed to initialize inngest: %s", err)
	}
	trigger, err := inngest.New(inngestProvider, runner)
	if err != nil {
		log.Fatalf("Failed to register inngest functions: %s", err)
	}
	log.Info("Inngest pass trigger enabled", "app", cfg.AppID)
	return trigger
}
