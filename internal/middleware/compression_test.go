package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func compressionRouter(cm *CompressionMiddleware) *gin.Engine {
	r := gin.New()
	r.Use(cm.Handler())
	r.GET("/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"payload": strings.Repeat("x", 2048)})
	})
	r.GET("/svg", func(c *gin.Context) {
		c.Data(http.StatusOK, "image/svg+xml", []byte("<svg>"+strings.Repeat("<circle/>", 200)+"</svg>"))
	})
	r.GET("/binary", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/octet-stream", []byte{0x00, 0x01, 0x02})
	})
	return r
}

func TestCompressionAppliedToJSON(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	r := compressionRouter(cm)

	req := httptest.NewRequest(http.MethodGet, "/json", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))

	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	decompressed, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Contains(t, string(decompressed), "payload")
}

func TestCompressionAppliedToSVG(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	r := compressionRouter(cm)

	req := httptest.NewRequest(http.MethodGet, "/svg", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestCompressionSkippedWithoutAcceptEncoding(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	r := compressionRouter(cm)

	req := httptest.NewRequest(http.MethodGet, "/json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Contains(t, w.Body.String(), "payload")
}

func TestCompressionSkippedForUncompressibleType(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	r := compressionRouter(cm)

	req := httptest.NewRequest(http.MethodGet, "/binary", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, w.Body.Bytes())
}

func TestCompressionStats(t *testing.T) {
	cm := NewCompressionMiddleware(DefaultCompressionConfig())
	r := compressionRouter(cm)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/json", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	stats := cm.Stats()
	assert.Equal(t, int64(3), stats["compressed_responses"])
	assert.Greater(t, stats["bytes_out"].(int64), int64(0))
}
