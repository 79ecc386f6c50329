// Package middleware holds transport-level Gin middleware shared across
// routes.
package middleware

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	CompressionLevel int      // Gzip compression level (1-9)
	ContentTypes     []string // Content types to compress
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		CompressionLevel: 6,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
			"text/css",
			"text/csv",
			"application/javascript",
			"image/svg+xml",
		},
	}
}

// CompressionStats tracks compression effectiveness
type CompressionStats struct {
	CompressedResponses int64
	BytesOut            int64
}

// CompressionMiddleware provides gzip compression for HTTP responses
type CompressionMiddleware struct {
	config CompressionConfig
	stats  CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	cm := &CompressionMiddleware{config: config}
	cm.pool = sync.Pool{
		New: func() interface{} {
			gz, _ := gzip.NewWriterLevel(io.Discard, config.CompressionLevel)
			return gz
		},
	}
	return cm
}

func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.HasPrefix(contentType, ct) {
			return true
		}
	}
	return false
}

// gzipWriter decides on the first body write whether the response content
// type is compressible; uncompressible responses pass through untouched.
// The decision cannot happen in WriteHeader: gin records the status before
// the render has set Content-Type.
type gzipWriter struct {
	gin.ResponseWriter
	gz      *gzip.Writer
	cm      *CompressionMiddleware
	decided bool
	skip    bool
	written int64
}

func (w *gzipWriter) decide() {
	if w.decided {
		return
	}
	w.decided = true

	if w.cm.shouldCompress(w.Header().Get("Content-Type")) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		return
	}
	w.skip = true
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	w.decide()
	if w.skip {
		return w.ResponseWriter.Write(data)
	}
	w.written += int64(len(data))
	return w.gz.Write(data)
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Handler returns the Gin middleware
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gz := cm.pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)

		c.Header("Vary", "Accept-Encoding")

		wrapper := &gzipWriter{ResponseWriter: c.Writer, gz: gz, cm: cm}
		c.Writer = wrapper

		c.Next()

		if !wrapper.skip && wrapper.written > 0 {
			gz.Close()
			atomic.AddInt64(&cm.stats.CompressedResponses, 1)
			atomic.AddInt64(&cm.stats.BytesOut, wrapper.written)
		}
		cm.pool.Put(gz)
	}
}

// Stats returns compression statistics
func (cm *CompressionMiddleware) Stats() map[string]interface{} {
	return map[string]interface{}{
		"compressed_responses": atomic.LoadInt64(&cm.stats.CompressedResponses),
		"bytes_out":            atomic.LoadInt64(&cm.stats.BytesOut),
	}
}
