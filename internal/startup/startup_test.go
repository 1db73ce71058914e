package startup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("BEDTIME_TEST_SET", "custom")
	t.Setenv("BEDTIME_TEST_EMPTY", "")

	if got := getEnv("BEDTIME_TEST_SET", "default"); got != "custom" {
		t.Errorf("getEnv(set) = %q, want custom", got)
	}
	if got := getEnv("BEDTIME_TEST_EMPTY", "default"); got != "default" {
		t.Errorf("getEnv(empty) = %q, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{"unset uses default", "", true, true},
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"false", "false", true, false},
		{"invalid uses default", "maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BEDTIME_TEST_BOOL", tt.value)
			if got := getEnvBool("BEDTIME_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset uses default", "", 5 * time.Second},
		{"valid", "250ms", 250 * time.Millisecond},
		{"invalid uses default", "soon", 5 * time.Second},
		{"negative uses default", "-1s", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BEDTIME_TEST_DURATION", tt.value)
			if got := getEnvDuration("BEDTIME_TEST_DURATION", 5*time.Second); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func setConfigEnv(t *testing.T, root string) {
	t.Helper()
	t.Setenv("LIBRARY_PATH", filepath.Join(root, "media"))
	t.Setenv("HLS_DIR", filepath.Join(root, "hls"))
	t.Setenv("DATABASE_DIR", filepath.Join(root, "data"))
	t.Setenv("STATIC_DIR", filepath.Join(root, "static"))
	t.Setenv("PORT", "")
	t.Setenv("PROBE_TIMEOUT", "")
	t.Setenv("STOP_TIMEOUT", "2s")
	t.Setenv("HISTORY_ENABLED", "")
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	setConfigEnv(t, root)

	config, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if config.Port != "5000" {
		t.Errorf("Port = %q, want default 5000", config.Port)
	}
	if config.ProbeTimeout != DefaultProbeTimeout || config.StopTimeout != 2*time.Second {
		t.Errorf("timeouts = %v, %v", config.ProbeTimeout, config.StopTimeout)
	}
	if want := filepath.ToSlash(filepath.Join(root, "hls")); config.HLSDir != want {
		t.Errorf("HLSDir = %q, want %q", config.HLSDir, want)
	}
	if strings.Contains(config.LibraryDir, `\`) || !filepath.IsAbs(filepath.FromSlash(config.LibraryDir)) {
		t.Errorf("LibraryDir not normalized: %q", config.LibraryDir)
	}
	if !strings.HasSuffix(config.DatabasePath, "/data/history.db") {
		t.Errorf("DatabasePath = %q", config.DatabasePath)
	}
	if !config.HistoryEnabled {
		t.Error("HistoryEnabled = false with a writable database directory")
	}
	for _, dir := range []string{config.LibraryDir, config.HLSDir, config.DatabaseDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("directory %s not created: %v", dir, err)
		}
	}
}

func TestLoadConfigHistoryDisabled(t *testing.T) {
	setConfigEnv(t, t.TempDir())
	t.Setenv("HISTORY_ENABLED", "false")

	config, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if config.HistoryEnabled {
		t.Error("HistoryEnabled = true with HISTORY_ENABLED=false")
	}
}

func TestLoadConfigHLSDirIsFile(t *testing.T) {
	root := t.TempDir()
	setConfigEnv(t, root)
	file := filepath.Join(root, "hls")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(); err == nil {
		t.Error("loadConfig() succeeded with HLS_DIR pointing at a file")
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/start", "api/start"},
		{"/api/history", "api/history"},
		{"/hls/", "hls"},
		{"/healthz", "healthz"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/start", nil).Methods("POST").Name("start")
	router.PathPrefix("/hls/").Handler(nil)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	if routes[0] != (RouteInfo{Method: "POST", Path: "/api/start", Name: "start"}) {
		t.Errorf("routes[0] = %+v", routes[0])
	}
	if routes[1].Method != "*" || routes[1].Path != "/hls/" {
		t.Errorf("routes[1] = %+v", routes[1])
	}
}

func TestEnabledString(t *testing.T) {
	if enabledString(true) != "ENABLED" || enabledString(false) != "DISABLED" {
		t.Error("unexpected enabledString output")
	}
}
