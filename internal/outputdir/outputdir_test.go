package outputdir

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestPrepareIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "hls")

	for i := 0; i < 2; i++ {
		if err := Prepare(dir); err != nil {
			t.Fatalf("Prepare() call %d: %v", i+1, err)
		}
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s: %v", dir, err)
	}
}

func TestPrepareFailsOnFile(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, "blocker")

	if err := Prepare(filepath.Join(base, "blocker", "hls")); err == nil {
		t.Fatal("expected error when a path component is a file")
	}
}

func TestCleanupRemovesOnlyArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"index.m3u8", "init.mp4", "chunk_0.m4s", "chunk_1.m4s", "CHUNK_2.M4S",
		"notes.txt", "poster.jpg", "index.m3u8.bak",
	)
	if err := os.Mkdir(filepath.Join(dir, "old.m4s"), 0o755); err != nil {
		t.Fatal(err)
	}

	removed, err := Cleanup(dir)
	if err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if removed != 5 {
		t.Errorf("removed = %d, want 5", removed)
	}

	want := []string{"index.m3u8.bak", "notes.txt", "old.m4s", "poster.jpg"}
	got := listDir(t, dir)
	if len(got) != len(want) {
		t.Fatalf("remaining = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("remaining = %v, want %v", got, want)
			break
		}
	}
}

func TestCleanupMissingDirectory(t *testing.T) {
	removed, err := Cleanup(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Cleanup() on missing dir error: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestCleanupEmptyDirectory(t *testing.T) {
	removed, err := Cleanup(t.TempDir())
	if err != nil || removed != 0 {
		t.Errorf("Cleanup() = %d, %v; want 0, nil", removed, err)
	}
}

func TestIsArtifact(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{InitSegment, true},
		{Playlist, true},
		{"chunk_12.m4s", true},
		{"movie.MP4", true},
		{"subs.srt", false},
		{"index", false},
	}
	for _, tt := range tests {
		if got := IsArtifact(tt.name); got != tt.want {
			t.Errorf("IsArtifact(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestOutputStats(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "init.mp4", "chunk_0.m4s", "chunk_1.m4s", "index.m3u8", "other.txt")

	stats, err := Dir(dir).OutputStats()
	if err != nil {
		t.Fatalf("OutputStats() error: %v", err)
	}
	if stats.Segments != 2 {
		t.Errorf("Segments = %d, want 2", stats.Segments)
	}
	if stats.SizeBytes != 16 {
		t.Errorf("SizeBytes = %d, want 16", stats.SizeBytes)
	}

	if _, err := Dir(filepath.Join(dir, "missing")).OutputStats(); err == nil {
		t.Error("expected error for missing directory")
	}
}
