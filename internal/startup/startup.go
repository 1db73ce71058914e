package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"bedtime-streamer/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// ServiceName identifies the server in access logs.
const ServiceName = "BedtimeStreamer/1.0"

// Defaults for duration settings.
const (
	DefaultProbeTimeout = 10 * time.Second
	DefaultStopTimeout  = 5 * time.Second
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	LibraryDir      string
	HLSDir          string
	DatabaseDir     string
	StaticDir       string
	Port            string
	MetricsPort     string
	FFmpegPath      string
	FFprobePath     string
	ProbeTimeout    time.Duration
	StopTimeout     time.Duration
	LogStaticFiles  bool
	LogHealthChecks bool
	MetricsEnabled  bool

	// Derived paths
	DatabasePath string

	// HistoryEnabled is false when disabled by HISTORY_ENABLED or when the
	// database directory is unusable.
	HistoryEnabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()
	return loadConfig()
}

func loadConfig() (*Config, error) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	libraryDir := getEnv("LIBRARY_PATH", "./media")
	hlsDir := getEnv("HLS_DIR", "./hls")
	databaseDir := getEnv("DATABASE_DIR", "./data")
	staticDir := getEnv("STATIC_DIR", "./static")
	port := getEnv("PORT", "5000")
	metricsPort := getEnv("METRICS_PORT", "9090")
	ffmpegPath := getEnv("FFMPEG_PATH", "ffmpeg")
	ffprobePath := getEnv("FFPROBE_PATH", "ffprobe")
	probeTimeout := getEnvDuration("PROBE_TIMEOUT", DefaultProbeTimeout)
	stopTimeout := getEnvDuration("STOP_TIMEOUT", DefaultStopTimeout)
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	historyEnabled := getEnvBool("HISTORY_ENABLED", true)

	logging.Info("  LIBRARY_PATH:        %s", libraryDir)
	logging.Info("  HLS_DIR:             %s", hlsDir)
	logging.Info("  DATABASE_DIR:        %s", databaseDir)
	logging.Info("  STATIC_DIR:          %s", staticDir)
	logging.Info("  PORT:                %s", port)
	logging.Info("  METRICS_PORT:        %s", metricsPort)
	logging.Info("  METRICS_ENABLED:     %v", metricsEnabled)
	logging.Info("  HISTORY_ENABLED:     %v", historyEnabled)
	logging.Info("  FFMPEG_PATH:         %s", ffmpegPath)
	logging.Info("  FFPROBE_PATH:        %s", ffprobePath)
	logging.Info("  PROBE_TIMEOUT:       %v", probeTimeout)
	logging.Info("  STOP_TIMEOUT:        %v", stopTimeout)
	logging.Info("  LOG_STATIC_FILES:    %v", logStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	var err error
	if libraryDir, err = normalizePath(libraryDir); err != nil {
		return nil, fmt.Errorf("failed to resolve library directory path: %w", err)
	}
	logging.Info("  Library directory (absolute): %s", libraryDir)

	if hlsDir, err = normalizePath(hlsDir); err != nil {
		return nil, fmt.Errorf("failed to resolve HLS directory path: %w", err)
	}
	logging.Info("  HLS directory (absolute): %s", hlsDir)

	if databaseDir, err = normalizePath(databaseDir); err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	if staticDir, err = normalizePath(staticDir); err != nil {
		return nil, fmt.Errorf("failed to resolve static directory path: %w", err)
	}

	// Library problems are reported, not fatal; it may be mounted later.
	if err := ensureDirectory(libraryDir, "library"); err != nil {
		logging.Warn("  Library directory issue: %v", err)
	}

	if err := ensureDirectory(hlsDir, "HLS output"); err != nil {
		return nil, fmt.Errorf("HLS output directory error: %w", err)
	}
	if err := testWriteAccess(hlsDir); err != nil {
		return nil, fmt.Errorf("HLS output directory is not writable: %w", err)
	}
	logging.Info("  [OK] HLS output directory is writable")

	config := &Config{
		LibraryDir:      libraryDir,
		HLSDir:          hlsDir,
		DatabaseDir:     databaseDir,
		StaticDir:       staticDir,
		Port:            port,
		MetricsPort:     metricsPort,
		FFmpegPath:      ffmpegPath,
		FFprobePath:     ffprobePath,
		ProbeTimeout:    probeTimeout,
		StopTimeout:     stopTimeout,
		LogStaticFiles:  logStaticFiles,
		LogHealthChecks: logHealthChecks,
		MetricsEnabled:  metricsEnabled,
		DatabasePath:    filepath.ToSlash(filepath.Join(databaseDir, "history.db")),
	}

	if historyEnabled {
		config.HistoryEnabled = setupOptionalDir(databaseDir, "history")
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Streaming:   ENABLED (required)")
	logging.Info("    History:     %s", enabledString(config.HistoryEnabled))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// normalizePath makes p absolute and uses forward slashes, which ffmpeg
// accepts on every platform.
func normalizePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs history database initialization
func LogDatabaseInit(path string, duration time.Duration, err error) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HISTORY DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	if err != nil {
		logging.Warn("  History database unavailable: %v", err)
		logging.Warn("  Streams will not be recorded")
		return
	}
	logging.Info("  [OK] History database %s initialized in %v", path, duration)
}

// LogTranscoderInit checks that the ffmpeg and ffprobe binaries run.
func LogTranscoderInit(ffmpegPath, ffprobePath string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("TRANSCODER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	for _, bin := range []struct{ name, path string }{
		{"FFmpeg", ffmpegPath},
		{"FFprobe", ffprobePath},
	} {
		if err := checkBinary(bin.path); err != nil {
			logging.Warn("  %s check failed: %v", bin.name, err)
			logging.Warn("  Streams cannot start until %s is installed", bin.path)
		} else {
			logging.Info("  [OK] %s is available", bin.name)
		}
	}
}

// LogLibraryInit logs library scanner initialization
func LogLibraryInit(root string, folders int, err error) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("LIBRARY INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Library root: %s", root)
	if err != nil {
		logging.Warn("  Initial scan failed: %v", err)
		return
	}
	logging.Info("  [OK] %d folders with videos found", folders)
	logging.Info("  Watching for changes...")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file and segment logging: ON")
	} else {
		logging.Info("    Static file and segment logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Player:        http://0.0.0.0:%s", config.Port)
	logging.Info("    Playlist:      http://0.0.0.0:%s/hls/index.m3u8", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   ___         _ _   _
  | _ ) ___ __| | |_(_)_ __  ___
  | _ \/ -_) _' |  _| | '  \/ -_)
  |___/\___\__,_|\__|_|_|_|_\___|  streamer

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

// checkBinary runs "<bin> -version", which both ffmpeg and ffprobe support.
func checkBinary(bin string) error {
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("%s not found", bin)
	}
	logging.Debug("  %s path: %s", bin, path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", bin, err)
	}

	if line, _, _ := strings.Cut(string(output), "\n"); line != "" {
		logging.Debug("  %s version: %s", bin, strings.TrimSpace(line))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logging.Warn("  Invalid %s %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
