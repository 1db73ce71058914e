package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bedtime-streamer/internal/database"
	"bedtime-streamer/internal/handlers"
	"bedtime-streamer/internal/library"
	"bedtime-streamer/internal/logging"
	"bedtime-streamer/internal/memory"
	"bedtime-streamer/internal/metrics"
	"bedtime-streamer/internal/middleware"
	"bedtime-streamer/internal/outputdir"
	"bedtime-streamer/internal/presets"
	"bedtime-streamer/internal/probe"
	"bedtime-streamer/internal/startup"
	"bedtime-streamer/internal/stream"
	"bedtime-streamer/internal/supervisor"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout   = 30 * time.Second
	collectInterval   = 15 * time.Second
	readTimeout       = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	var db *database.Database
	if config.HistoryEnabled {
		dbStart := time.Now()
		db, err = database.New(context.Background(), config.DatabasePath)
		if err != nil {
			startup.LogDatabaseInit(config.DatabasePath, time.Since(dbStart), err)
			db = nil
		} else {
			startup.LogDatabaseInit(db.Path(), time.Since(dbStart), nil)
		}
	}

	startup.LogTranscoderInit(config.FFmpegPath, config.FFprobePath)
	catalog := presets.Default()
	prober := probe.New(config.FFprobePath, config.ProbeTimeout)
	sup := supervisor.New(config.FFmpegPath, supervisor.Options{StopTimeout: config.StopTimeout})

	streamConfig := stream.Config{
		Presets:    catalog,
		Prober:     prober,
		Transcoder: sup,
		OutputDir:  config.HLSDir,
	}
	handlerConfig := handlers.Config{
		Prober:  prober,
		Presets: catalog,
		HLSDir:  config.HLSDir,
	}
	// Assigned only when open so the interfaces stay nil otherwise.
	if db != nil {
		streamConfig.History = db
		handlerConfig.History = db
	}
	svc := stream.New(streamConfig)

	lib := library.New(config.LibraryDir)
	folders, scanErr := lib.Scan()
	startup.LogLibraryInit(lib.Root(), len(folders), scanErr)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	go svc.Run(bgCtx)
	go func() {
		if err := lib.Watch(bgCtx); err != nil {
			logging.Warn("Library watcher unavailable, listings refresh on restart only: %v", err)
		}
	}()

	collector := metrics.NewCollector(outputdir.Dir(config.HLSDir), collectInterval)
	collector.Start()

	handlerConfig.Stream = svc
	handlerConfig.Library = lib
	h := handlers.New(handlerConfig)

	router := setupRouter(h, config.StaticDir)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := newServer(":"+config.Port, buildHandler(router, config))

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newServer(":"+config.MetricsPort, metricsRouter(h))
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go handleShutdown(done, shutdownDeps{
		srv:        srv,
		metricsSrv: metricsSrv,
		stream:     svc,
		collector:  collector,
		cancel:     bgCancel,
		db:         db,
	})

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		if stopErr := svc.Stop(); stopErr != nil {
			logging.Error("failed to stop stream: %v", stopErr)
		}
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func setupRouter(h *handlers.Handlers, staticDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET").Name("health")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET").Name("healthz")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD").Name("livez")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET").Name("readyz")
	r.HandleFunc("/version", h.GetVersion).Methods("GET").Name("version")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/library", h.GetLibrary).Methods("GET").Name("library")
	api.HandleFunc("/presets", h.GetPresets).Methods("GET").Name("presets")
	api.HandleFunc("/probe", h.Probe).Methods("POST").Name("probe")
	api.HandleFunc("/start", h.StartStream).Methods("POST").Name("start")
	api.HandleFunc("/stop", h.StopStream).Methods("POST").Name("stop")
	api.HandleFunc("/status", h.GetStatus).Methods("GET").Name("status")
	api.HandleFunc("/history", h.GetHistory).Methods("GET").Name("history")

	r.PathPrefix("/hls/").Handler(http.StripPrefix("/hls", h.HLSHandler())).Methods("GET", "HEAD").Name("hls")

	r.PathPrefix("/").
		MatcherFunc(notAPI).
		Methods("GET", "HEAD").
		Handler(http.FileServer(http.Dir(staticDir))).
		Name("static")

	return r
}

// notAPI keeps the static file server away from /api so a wrong method on
// an API route is answered with 405 instead of a file lookup.
func notAPI(r *http.Request, _ *mux.RouteMatch) bool {
	return r.URL.Path != "/api" && !strings.HasPrefix(r.URL.Path, "/api/")
}

// buildHandler wraps the router in the middleware chain.
func buildHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	handler := middleware.Logger(loggingConfig, startup.ServiceName)(router)
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}
	return handler
}

func metricsRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", h.LivenessCheck).Methods("GET", "HEAD")
	return r
}

// newServer has no write timeout; segment downloads on slow links can run long.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      0,
		IdleTimeout:       idleTimeout,
	}
}

type shutdownDeps struct {
	srv        *http.Server
	metricsSrv *http.Server
	stream     *stream.Service
	collector  *metrics.Collector
	cancel     context.CancelFunc
	db         *database.Database
}

func handleShutdown(done chan<- struct{}, deps shutdownDeps) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := deps.srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping stream")
	if err := deps.stream.Stop(); err != nil {
		logging.Error("Failed to stop stream: %v", err)
	} else {
		startup.LogShutdownStepComplete("Stream stopped")
	}

	deps.cancel()
	deps.collector.Stop()
	startup.LogShutdownStepComplete("Background workers stopped")

	if deps.metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := deps.metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	if deps.db != nil {
		if err := deps.db.Close(); err != nil {
			logging.Warn("Database close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("History database closed")
		}
	}

	startup.LogShutdownComplete()
}
