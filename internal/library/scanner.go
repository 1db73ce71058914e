package library

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bedtime-streamer/internal/filesystem"
	"bedtime-streamer/internal/logging"
	"bedtime-streamer/internal/mediatypes"
	"bedtime-streamer/internal/metrics"
)

// Item is a file listed in a folder.
type Item struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Folder is one top-level directory of the library that contains videos.
type Folder struct {
	Name      string `json:"folder_name"`
	LocalSubs []Item `json:"local_subs"`
	Episodes  []Item `json:"episodes"`
}

// Library scans a library root and caches the listing.
type Library struct {
	root string

	mu     sync.RWMutex
	cached []Folder
	valid  bool
}

// New returns a Library rooted at root.
func New(root string) *Library {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Library{root: filepath.Clean(root)}
}

// Root returns the library root directory.
func (l *Library) Root() string {
	return l.root
}

// Scan returns the folders of the library, from cache when possible.
func (l *Library) Scan() ([]Folder, error) {
	l.mu.RLock()
	if l.valid {
		folders := l.cached
		l.mu.RUnlock()
		metrics.LibraryCacheHits.Inc()
		return folders, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.valid {
		metrics.LibraryCacheHits.Inc()
		return l.cached, nil
	}

	start := time.Now()
	folders, err := l.scan()
	metrics.LibraryScanDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LibraryScansTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LibraryScansTotal.WithLabelValues("success").Inc()
	logging.Debug("Library scan found %d folders in %v", len(folders), time.Since(start))

	l.cached = folders
	l.valid = true
	return folders, nil
}

// Invalidate drops the cached listing.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.valid = false
	l.cached = nil
	l.mu.Unlock()
}

func (l *Library) scan() ([]Folder, error) {
	entries, err := filesystem.ReadDirWithRetry(l.root, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to read library root: %w", err)
	}

	folders := []Folder{}
	for _, entry := range entries {
		if !entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		folder := l.scanFolder(filepath.Join(l.root, entry.Name()))
		if len(folder.Episodes) == 0 {
			continue
		}
		folder.Name = entry.Name()
		folders = append(folders, folder)
	}

	sort.Slice(folders, func(i, j int) bool {
		return strings.ToLower(folders[i].Name) < strings.ToLower(folders[j].Name)
	})
	return folders, nil
}

func (l *Library) scanFolder(dir string) Folder {
	folder := Folder{LocalSubs: []Item{}, Episodes: []Item{}}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("library walk error at %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		item := Item{Name: d.Name(), Path: filepath.ToSlash(path)}
		switch mediatypes.TypeOf(d.Name()) {
		case mediatypes.FileTypeVideo:
			folder.Episodes = append(folder.Episodes, item)
		case mediatypes.FileTypeSubtitle:
			folder.LocalSubs = append(folder.LocalSubs, item)
		}
		return nil
	})
	if err != nil {
		logging.Warn("failed to scan %s: %v", dir, err)
	}

	sort.SliceStable(folder.Episodes, func(i, j int) bool {
		return folder.Episodes[i].Name < folder.Episodes[j].Name
	})
	return folder
}

// Contains reports whether path lies inside the library root.
func (l *Library) Contains(path string) bool {
	if path == "" {
		return false
	}
	abs, err := filepath.Abs(filepath.FromSlash(path))
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(l.root, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
