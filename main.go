package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openplay-app/internal/cloudsync"
	"openplay-app/internal/config"
	"openplay-app/internal/host"
	"openplay-app/internal/store"
	"openplay-app/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	appStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("store", zap.Error(err))
	}
	defer appStore.Close()

	var syncer cloudsync.Syncer
	if cfg.Sync.Enabled() {
		uploader, err := cloudsync.NewUploader(context.Background(), cfg.Sync)
		if err != nil {
			logger.Fatal("cloud sync", zap.Error(err))
		}
		syncer = uploader
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hub := web.NewHub(logger.Named("live"))
	app, err := host.New(host.Options{
		Store:             appStore,
		Syncer:            syncer,
		Clock:             clockwork.NewRealClock(),
		Rand:              rand.New(rand.NewSource(seed)),
		Logger:            logger.Named("host"),
		Metrics:           host.NewMetrics(registry),
		UndoExpiry:        cfg.UndoExpiry,
		SyncRetryInterval: cfg.SyncRetryInterval,
		Announcers:        []host.Announcer{host.LogAnnouncer{Logger: logger.Named("announcer")}, hub},
		Listeners:         []host.Listener{hub},

		ReloadEachDispatch: config.OnLambda(),
	})
	if err != nil {
		logger.Fatal("host", zap.Error(err))
	}
	defer app.Close()

	server := web.NewServer(web.Options{
		Host:            app,
		Store:           appStore,
		Hub:             hub,
		Logger:          logger.Named("web"),
		Gatherer:        registry,
		OperatorPINHash: cfg.OperatorPINHash,
		CORSOrigins:     cfg.CORSOrigins,
	})
	handler := server.Routes()

	if config.OnLambda() {
		logger.Info("starting in lambda mode")
		adapter := httpadapter.New(web.FlushAfter(app, handler))
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	srv := &http.Server{Addr: cfg.Addr(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDev() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore prefers Postgres, then SQLite, then memory.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.PostgresDSN != "" {
		logger.Info("using postgres store")
		return store.NewPostgresStore(cfg.PostgresDSN, store.PostgresOptions{MigrationsDir: cfg.PostgresMigrationsDir})
	}
	if cfg.DBPath != "" {
		logger.Info("using sqlite store", zap.String("path", cfg.DBPath))
		return store.NewSQLiteStore(cfg.DBPath, store.SQLiteOptions{MigrationsDir: cfg.DBMigrationsDir})
	}
	logger.Info("using memory store")
	return store.NewMemoryStore(), nil
}
