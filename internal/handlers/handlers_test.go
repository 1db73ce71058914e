package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"bedtime-streamer/internal/database"
	"bedtime-streamer/internal/library"
	"bedtime-streamer/internal/presets"
	"bedtime-streamer/internal/probe"
	"bedtime-streamer/internal/stream"
	"bedtime-streamer/internal/supervisor"
)

type mockStream struct {
	startErr error
	stopErr  error
	started  []stream.Request
	stops    int
	status   stream.Status
}

func (m *mockStream) Start(_ context.Context, req stream.Request) (*stream.Session, error) {
	m.started = append(m.started, req)
	if m.startErr != nil {
		return nil, m.startErr
	}
	return &stream.Session{ID: uuid.New(), Path: req.Path}, nil
}

func (m *mockStream) Stop() error {
	m.stops++
	return m.stopErr
}

func (m *mockStream) Status() stream.Status {
	return m.status
}

type mockLibrary struct {
	root    string
	folders []library.Folder
	err     error
}

func (m *mockLibrary) Scan() ([]library.Folder, error) {
	return m.folders, m.err
}

func (m *mockLibrary) Contains(path string) bool {
	return strings.HasPrefix(path, m.root+"/")
}

type mockProber struct {
	meta *probe.Metadata
	err  error
}

func (m *mockProber) Probe(context.Context, string) (*probe.Metadata, error) {
	return m.meta, m.err
}

type mockHistory struct {
	sessions []database.Session
	err      error
	limit    int
}

func (m *mockHistory) Recent(_ context.Context, limit int) ([]database.Session, error) {
	m.limit = limit
	return m.sessions, m.err
}

type testEnv struct {
	h       *Handlers
	stream  *mockStream
	library *mockLibrary
	prober  *mockProber
	history *mockHistory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		stream:  &mockStream{},
		library: &mockLibrary{root: "/media"},
		prober:  &mockProber{meta: &probe.Metadata{VideoCodec: "h264", Resolution: "1280x720"}},
		history: &mockHistory{},
	}
	env.h = New(Config{
		Stream:  env.stream,
		Library: env.library,
		Prober:  env.prober,
		History: env.history,
		HLSDir:  t.TempDir(),
	})
	return env
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestStartStreamStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		startErr error
		wantCode int
		wantCall bool
	}{
		{"started", `{"path":"/media/Show/ep1.mkv"}`, nil, http.StatusOK, true},
		{"malformed body", `{"path":`, nil, http.StatusBadRequest, false},
		{"empty body", ``, nil, http.StatusBadRequest, false},
		{"missing path", `{"preset":"cpu_fast"}`, nil, http.StatusBadRequest, false},
		{"outside library", `{"path":"/etc/passwd"}`, nil, http.StatusBadRequest, false},
		{"subtitle outside library", `{"path":"/media/a.mkv","sub_path":"/tmp/x.srt"}`, nil, http.StatusBadRequest, false},
		{"unknown preset", `{"path":"/media/a.mkv","preset":"turbo"}`, fmt.Errorf("%w: %q", presets.ErrUnknownPreset, "turbo"), http.StatusBadRequest, true},
		{"probe failure", `{"path":"/media/a.mkv"}`, fmt.Errorf("%w: exit status 1", probe.ErrProbe), http.StatusUnprocessableEntity, true},
		{"launch failure", `{"path":"/media/a.mkv"}`, fmt.Errorf("%w: ffmpeg", supervisor.ErrLaunch), http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.stream.startErr = tt.startErr

			rec := httptest.NewRecorder()
			env.h.StartStream(rec, postJSON("/api/start", tt.body))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if got := len(env.stream.started) == 1; got != tt.wantCall {
				t.Errorf("Start called = %v, want %v", got, tt.wantCall)
			}
			if rec.Code == http.StatusOK {
				var resp map[string]string
				decodeBody(t, rec, &resp)
				if resp["status"] != "started" {
					t.Errorf("response = %v", resp)
				}
			} else {
				var resp map[string]string
				decodeBody(t, rec, &resp)
				if resp["error"] == "" {
					t.Errorf("error response missing message: %v", resp)
				}
			}
		})
	}
}

func TestStartStreamPassesRequest(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.h.StartStream(rec, postJSON("/api/start",
		`{"path":"/media/a.mkv","preset":"gpu_nvenc","sub_path":"/media/a.srt","force_sync":true}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := stream.Request{Path: "/media/a.mkv", Preset: "gpu_nvenc", SubtitlePath: "/media/a.srt", ForceSync: true}
	if env.stream.started[0] != want {
		t.Errorf("request = %+v, want %+v", env.stream.started[0], want)
	}
}

func TestStopStream(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		env.h.StopStream(rec, httptest.NewRequest(http.MethodPost, "/api/stop", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"stopped"`) {
			t.Errorf("stop #%d = %d %s", i+1, rec.Code, rec.Body.String())
		}
	}

	env.stream.stopErr = errors.New("kill failed")
	rec := httptest.NewRecorder()
	env.h.StopStream(rec, httptest.NewRequest(http.MethodPost, "/api/stop", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestProbe(t *testing.T) {
	t.Run("metadata", func(t *testing.T) {
		env := newTestEnv(t)
		idx := 0
		env.prober.meta = &probe.Metadata{HasInternalSubtitles: true, TextSubtitleIndex: &idx, VideoCodec: "hevc", Resolution: "3840x2160"}

		rec := httptest.NewRecorder()
		env.h.Probe(rec, postJSON("/api/probe", `{"path":"/media/a.mkv"}`))

		var got map[string]interface{}
		decodeBody(t, rec, &got)
		if got["codec"] != "hevc" || got["text_sub_index"] != float64(0) || got["pgs_sub_index"] != nil {
			t.Errorf("probe response = %v", got)
		}
	})

	t.Run("probe failure is null", func(t *testing.T) {
		env := newTestEnv(t)
		env.prober.err = probe.ErrProbe

		rec := httptest.NewRecorder()
		env.h.Probe(rec, postJSON("/api/probe", `{"path":"/media/missing.mkv"}`))

		if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "null" {
			t.Errorf("response = %d %q, want 200 null", rec.Code, rec.Body.String())
		}
	})

	t.Run("outside library", func(t *testing.T) {
		env := newTestEnv(t)
		rec := httptest.NewRecorder()
		env.h.Probe(rec, postJSON("/api/probe", `{"path":"/etc/shadow"}`))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestGetLibrary(t *testing.T) {
	env := newTestEnv(t)
	env.library.folders = []library.Folder{{
		Name:      "Show",
		LocalSubs: []library.Item{{Name: "ep1.srt", Path: "/media/Show/ep1.srt"}},
		Episodes:  []library.Item{{Name: "ep1.mkv", Path: "/media/Show/ep1.mkv"}},
	}}

	rec := httptest.NewRecorder()
	env.h.GetLibrary(rec, httptest.NewRequest(http.MethodGet, "/api/library", nil))

	var got []map[string]interface{}
	decodeBody(t, rec, &got)
	if len(got) != 1 || got[0]["folder_name"] != "Show" {
		t.Fatalf("library response = %v", got)
	}
	if _, ok := got[0]["local_subs"]; !ok {
		t.Error("local_subs missing from response")
	}

	env.library.err = errors.New("permission denied")
	rec = httptest.NewRecorder()
	env.h.GetLibrary(rec, httptest.NewRequest(http.MethodGet, "/api/library", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetPresets(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.h.GetPresets(rec, httptest.NewRequest(http.MethodGet, "/api/presets", nil))

	var got []string
	decodeBody(t, rec, &got)
	want := []string{"cpu_fast", "gpu_nvenc", "gpu_nvenc_high_quality"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("presets = %v, want %v", got, want)
	}
}

func TestGetStatus(t *testing.T) {
	env := newTestEnv(t)
	env.stream.status = stream.Status{Running: true, Session: &stream.Session{Path: "/media/a.mkv", Preset: "cpu_fast"}}

	rec := httptest.NewRecorder()
	env.h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var got stream.Status
	decodeBody(t, rec, &got)
	if !got.Running || got.Session == nil || got.Session.Path != "/media/a.mkv" {
		t.Errorf("status = %+v", got)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
	}{
		{"default limit", "", http.StatusOK, database.DefaultRecentLimit},
		{"explicit limit", "?limit=5", http.StatusOK, 5},
		{"capped limit", "?limit=100000", http.StatusOK, maxHistoryLimit},
		{"invalid limit", "?limit=abc", http.StatusBadRequest, 0},
		{"zero limit", "?limit=0", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.history.sessions = []database.Session{{ID: uuid.New(), SourcePath: "/media/a.mkv", StartedAt: time.Now()}}

			rec := httptest.NewRecorder()
			env.h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history"+tt.query, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if env.history.limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", env.history.limit, tt.wantLimit)
			}
		})
	}
}

func TestGetHistoryDisabled(t *testing.T) {
	h := New(Config{Stream: &mockStream{}, Library: &mockLibrary{}, Prober: &mockProber{}})
	rec := httptest.NewRecorder()
	h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHLSHandler(t *testing.T) {
	env := newTestEnv(t)
	files := map[string]string{
		"index.m3u8":  "#EXTM3U\n",
		"chunk_0.m4s": "segment",
		"init.mp4":    "init",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(env.h.hlsDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	handler := http.StripPrefix("/hls", env.h.HLSHandler())

	tests := []struct {
		path        string
		wantCode    int
		contentType string
		cache       string
	}{
		{"/hls/index.m3u8", http.StatusOK, "application/vnd.apple.mpegurl", "no-cache"},
		{"/hls/chunk_0.m4s", http.StatusOK, "video/iso.segment", "public, max-age=3600"},
		{"/hls/init.mp4", http.StatusOK, "video/mp4", "public, max-age=3600"},
		{"/hls/chunk_9.m4s", http.StatusNotFound, "", ""},
		{"/hls/", http.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if got := rec.Header().Get("Cache-Control"); got != tt.cache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.cache)
			}
		})
	}
}
