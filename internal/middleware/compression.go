package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes before compression is applied
	MinSize int
	// CompressibleTypes lists media types worth compressing. Video segments
	// are already compressed and never listed.
	CompressibleTypes map[string]bool
}

// DefaultCompressionConfig compresses the API, the UI and HLS playlists.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		CompressibleTypes: map[string]bool{
			"application/json":              true,
			"application/vnd.apple.mpegurl": true,
			"application/x-mpegurl":         true,
			"text/html":                     true,
			"text/css":                      true,
			"text/plain":                    true,
			"text/javascript":               true,
			"application/javascript":        true,
			"image/svg+xml":                 true,
		},
	}
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	},
}

// gzipResponseWriter buffers up to MinSize bytes before deciding whether
// to compress.
type gzipResponseWriter struct {
	http.ResponseWriter
	config     CompressionConfig
	gz         *gzip.Writer
	buffer     []byte
	statusCode int
	decided    bool
}

func newGzipResponseWriter(w http.ResponseWriter, config CompressionConfig) *gzipResponseWriter {
	return &gzipResponseWriter{
		ResponseWriter: w,
		config:         config,
		statusCode:     http.StatusOK,
	}
}

func (g *gzipResponseWriter) WriteHeader(statusCode int) {
	if !g.decided {
		g.statusCode = statusCode
	}
}

func (g *gzipResponseWriter) Write(data []byte) (int, error) {
	if g.decided {
		if g.gz != nil {
			return g.gz.Write(data)
		}
		return g.ResponseWriter.Write(data)
	}

	g.buffer = append(g.buffer, data...)
	if len(g.buffer) >= g.config.MinSize {
		if err := g.decide(); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

func (g *gzipResponseWriter) compressible() bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(g.Header().Get("Content-Type"), ";")[0]))
	return g.config.CompressibleTypes[mediaType]
}

// decide writes the header and the buffered body, compressed or not.
func (g *gzipResponseWriter) decide() error {
	g.decided = true
	body := g.buffer
	g.buffer = nil

	h := g.Header()
	if len(body) >= g.config.MinSize && h.Get("Content-Encoding") == "" && g.compressible() {
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		g.gz = gzipWriterPool.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
		g.ResponseWriter.WriteHeader(g.statusCode)
		_, err := g.gz.Write(body)
		return err
	}

	g.ResponseWriter.WriteHeader(g.statusCode)
	if len(body) == 0 {
		return nil
	}
	_, err := g.ResponseWriter.Write(body)
	return err
}

// Close flushes any buffered body and returns the gzip writer to the pool.
func (g *gzipResponseWriter) Close() error {
	if !g.decided {
		if err := g.decide(); err != nil {
			return err
		}
	}
	if g.gz == nil {
		return nil
	}
	err := g.gz.Close()
	gzipWriterPool.Put(g.gz)
	g.gz = nil
	return err
}

func (g *gzipResponseWriter) Flush() {
	if !g.decided {
		_ = g.decide()
	}
	if g.gz != nil {
		_ = g.gz.Flush()
	}
	if flusher, ok := g.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Compression returns a middleware that gzips eligible responses.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Range requests must see the identity byte offsets.
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") || r.Header.Get("Range") != "" {
				next.ServeHTTP(w, r)
				return
			}

			gzw := newGzipResponseWriter(w, config)
			defer gzw.Close()

			next.ServeHTTP(gzw, r)
		})
	}
}
