package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"maqraa/internal/api"
	"maqraa/internal/availability"
	"maqraa/internal/booking"
	"maqraa/internal/config"
	"maqraa/internal/metrics"
	"maqraa/internal/notify"
	"maqraa/internal/sheets"
	"maqraa/internal/slots"
	"maqraa/internal/store"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("MAQRAA_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := store.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog: built-in defaults, or slots.yaml with hot reload.
	catalog := slots.NewRef(slots.DefaultCatalog())
	if cfg.SlotsConfigPath != "" {
		if err := config.WatchSlots(ctx, cfg.SlotsConfigPath, 30*time.Second, func(updated *slots.Catalog) {
			catalog.Store(updated)
			logger.Info().Int("slots", updated.SlotCount()).Msg("slot catalog loaded")
		}); err != nil {
			logger.Error().Err(err).Msg("slots config watch failed, using built-in catalog")
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		bridge := store.NewRedisBridge(ctx, rdb, db.Feed(), &logger)
		defer bridge.Close()
	}

	cache := availability.NewCache(db, &logger)
	cache.Start(db.Feed())
	defer cache.Close()
	if err := cache.Load(ctx); err != nil {
		// Recoverable: the cache warms up from the feed and later loads.
		logger.Error().Err(err).Msg("initial availability load failed")
	}

	backup := store.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
	go backup.Start(ctx)

	notifier := buildNotifier(cfg, &logger)
	submitter := booking.NewSubmitter(db, cache, catalog, notifier, &logger)
	sessions := booking.NewSessionStore(cfg.SessionTimeout())
	go sessionCleanupLoop(ctx, sessions, &logger)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Sheets.Enabled {
		go startSheetsLoop(ctx, cfg, catalog, cache, &logger)
	}

	server := api.NewHTTPServer(cfg.Server.Port, catalog, cache, submitter, sessions, &logger)
	logger.Info().Int("port", cfg.Server.Port).Msg("maqraa booking service started")
	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("api server error")
	}
}

func buildNotifier(cfg *config.Config, logger *zerolog.Logger) *notify.Service {
	var senders []notify.Sender

	if cfg.Notify.WebhookURL != "" || cfg.Notify.TestWebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(notify.WebhookConfig{
			URL:      cfg.Notify.WebhookURL,
			TestURL:  cfg.Notify.TestWebhookURL,
			TestMode: cfg.Notify.TestMode,
		}))
	}

	if cfg.Notify.TelegramToken != "" && len(cfg.Notify.AdminChatIDs) > 0 {
		tg, err := notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.AdminChatIDs)
		if err != nil {
			logger.Error().Err(err).Msg("telegram sender disabled")
		} else {
			senders = append(senders, tg)
		}
	}

	return notify.NewService(senders, cfg.Notify.RatePerSecond, notify.DefaultRetryConfig(), logger)
}

func sessionCleanupLoop(ctx context.Context, sessions *booking.SessionStore, logger *zerolog.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Cleanup(); removed > 0 {
				logger.Info().Int("removed", removed).Msg("expired form sessions cleaned up")
			}
		}
	}
}

func startSheetsLoop(ctx context.Context, cfg *config.Config, catalog *slots.Ref, cache *availability.Cache, logger *zerolog.Logger) {
	svc, err := sheets.NewService(ctx, cfg.Sheets.CredentialsPath, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName)
	if err != nil {
		logger.Error().Err(err).Msg("sheets export disabled")
		return
	}

	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seats, days := cache.Snapshot()
			if err := svc.ExportSchedule(ctx, catalog.Load(), seats, days); err != nil {
				logger.Error().Err(err).Msg("schedule sheet export failed")
			}
		}
	}
}

func startHealthServer(ctx context.Context, port int, db *store.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
