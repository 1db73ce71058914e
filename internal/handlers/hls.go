package handlers

import (
	"net/http"
	"path"
	"strings"
)

var hlsContentTypes = map[string]string{
	".m3u8": "application/vnd.apple.mpegurl",
	".m4s":  "video/iso.segment",
	".mp4":  "video/mp4",
}

// HLSHandler serves the stream output directory. Mount it with
// http.StripPrefix. The playlist changes while ffmpeg runs and is never
// cached; segments are immutable once listed.
func (h *Handlers) HLSHandler() http.Handler {
	files := http.FileServer(http.Dir(h.hlsDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}

		ext := strings.ToLower(path.Ext(r.URL.Path))
		if ct, ok := hlsContentTypes[ext]; ok {
			w.Header().Set("Content-Type", ct)
		}
		if ext == ".m3u8" {
			w.Header().Set("Cache-Control", "no-cache")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")

		files.ServeHTTP(w, r)
	})
}
