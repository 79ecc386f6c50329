package main

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/cache"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/chart"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/errors"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/export"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/frontend"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/middleware"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/monitoring"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/quadrant"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/security"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/session"
	"github.com/6grvph5rkk-byte/cross-impact-mapper/internal/types"
)

const sessionCookie = "cim_session"

// app bundles the long-lived server dependencies so the router setup can be
// shared with tests.
type app struct {
	sessions    *session.Manager
	artifacts   *cache.Cache
	metrics     *monitoring.Metrics
	logger      *monitoring.Logger
	security    *security.SecurityMiddleware
	compression *middleware.CompressionMiddleware
	chartCfg    chart.Config
	sessionTTL  time.Duration
}

// rowView is a table row as the API reports it: the raw cells plus the
// quadrant the row lands in, or null when the row doesn't classify.
type rowView struct {
	types.FactorRecord
	Quadrant *quadrant.Quadrant `json:"quadrant"`
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	logger := monitoring.NewLogger()

	port := getEnvOrDefault("PORT", "8080")
	sessionTTL := getDurationOrDefault("SESSION_TTL", 2*time.Hour)
	cacheTTL := getDurationOrDefault("CACHE_TTL", 15*time.Minute)

	a := &app{
		sessions:    session.NewManager(sessionTTL),
		artifacts:   cache.New(cacheTTL),
		metrics:     monitoring.NewMetrics(),
		logger:      logger,
		security:    security.NewSecurityMiddleware(security.DefaultSecurityConfig()),
		compression: middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig()),
		chartCfg:    chart.DefaultConfig(),
		sessionTTL:  sessionTTL,
	}

	memoryMonitor := monitoring.NewMemoryMonitor(5*time.Second, 50*1024*1024, logger)
	memoryMonitor.Start()

	r := setupRouter(a)

	r.GET("/memory", func(c *gin.Context) {
		c.JSON(http.StatusOK, memoryMonitor.GetStats())
	})

	if os.Getenv("ENABLE_PROFILING") == "true" {
		logger.SystemLogger("profiling_enabled", "mounting pprof endpoints")
		r.GET("/debug/pprof/*filepath", gin.WrapF(pprof.Index))
		r.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
		r.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
		r.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
		r.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.SystemLogger("startup", "listening on port "+port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.APIErrorLogger(err, "LISTEN", ":"+port, "", 0)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.SystemLogger("shutdown", "signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	memoryMonitor.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.APIErrorLogger(err, "SHUTDOWN", "", "", 0)
		os.Exit(1)
	}

	logger.SystemLogger("shutdown", "server exited")
}

// setupRouter wires the middleware chain and all routes
func setupRouter(a *app) *gin.Engine {
	r := gin.New()

	r.Use(a.compression.Handler())
	r.Use(monitoring.MonitoringMiddleware(a.metrics, a.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	r.Use(a.security.SecurityHeaders)
	r.Use(security.CSPMiddleware())
	r.Use(a.security.RequestTimeout)
	r.Use(a.security.ValidateContentType)
	r.Use(a.security.RateLimitByIP)

	corsOrigins := strings.Split(getEnvOrDefault("CORS_ORIGINS", "http://localhost:5173"), ",")
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"sessions":  a.sessions.Stats(),
			"metrics":   a.metrics.GetStats(),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.metrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.artifacts.Stats())
	})

	api := r.Group("/api")

	api.GET("/table", func(c *gin.Context) {
		store := a.resolveSession(c)
		c.JSON(http.StatusOK, a.tableResponse(store.Snapshot()))
	})

	api.POST("/table/rows", func(c *gin.Context) {
		store := a.resolveSession(c)

		var req types.AddRowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			a.respondError(c, errors.ToAppError(err))
			return
		}

		if err := a.security.ValidateName(req.Name); err != nil {
			a.respondError(c, errors.NewValidationError(err.Error()))
			return
		}

		index, err := store.AddRow(req.Name, req.Dependence, req.Influence)
		if err != nil {
			a.respondError(c, errors.NewValidationError(err.Error()))
			return
		}

		snap := store.Snapshot()
		a.metrics.IncrementRowEdit()
		a.logger.TableOpLogger(snap.ID, "add_row", len(snap.Rows), snap.Revision)

		c.JSON(http.StatusCreated, gin.H{
			"index":    index,
			"revision": snap.Revision,
		})
	})

	api.PUT("/table/rows/:index", func(c *gin.Context) {
		store := a.resolveSession(c)

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			a.respondError(c, errors.NewValidationError("row index must be an integer"))
			return
		}

		var req types.UpdateCellRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			a.respondError(c, errors.ToAppError(err))
			return
		}

		if req.Field == session.FieldName {
			if err := a.security.ValidateName(req.Value); err != nil {
				a.respondError(c, errors.NewValidationError(err.Error()))
				return
			}
		}

		if err := store.UpdateCell(index, req.Field, req.Value); err != nil {
			if req.Field != session.FieldName && req.Field != session.FieldDependence && req.Field != session.FieldInfluence {
				a.respondError(c, errors.NewValidationError(err.Error()))
			} else {
				a.respondError(c, errors.NewNotFoundError(err.Error()))
			}
			return
		}

		snap := store.Snapshot()
		a.metrics.IncrementRowEdit()
		a.logger.TableOpLogger(snap.ID, "update_cell", len(snap.Rows), snap.Revision)

		c.JSON(http.StatusOK, gin.H{"revision": snap.Revision})
	})

	api.DELETE("/table/rows/:index", func(c *gin.Context) {
		store := a.resolveSession(c)

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			a.respondError(c, errors.NewValidationError("row index must be an integer"))
			return
		}

		if err := store.DeleteRow(index); err != nil {
			a.respondError(c, errors.NewNotFoundError(err.Error()))
			return
		}

		snap := store.Snapshot()
		a.metrics.IncrementRowEdit()
		a.logger.TableOpLogger(snap.ID, "delete_row", len(snap.Rows), snap.Revision)

		c.JSON(http.StatusOK, gin.H{"revision": snap.Revision})
	})

	api.PUT("/thresholds", func(c *gin.Context) {
		store := a.resolveSession(c)

		var req types.ThresholdsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			a.respondError(c, errors.ToAppError(err))
			return
		}

		th := store.Snapshot().Thresholds
		if req.CenterX != nil {
			th.CenterX = *req.CenterX
		}
		if req.CenterY != nil {
			th.CenterY = *req.CenterY
		}

		if math.IsNaN(th.CenterX) || math.IsInf(th.CenterX, 0) ||
			math.IsNaN(th.CenterY) || math.IsInf(th.CenterY, 0) {
			a.respondError(c, errors.NewValidationError("axis centers must be finite numbers"))
			return
		}

		store.SetThresholds(th)

		snap := store.Snapshot()
		a.logger.TableOpLogger(snap.ID, "set_thresholds", len(snap.Rows), snap.Revision)

		c.JSON(http.StatusOK, gin.H{
			"thresholds": snap.Thresholds,
			"revision":   snap.Revision,
		})
	})

	api.PUT("/scenario", func(c *gin.Context) {
		store := a.resolveSession(c)

		var req types.ScenarioRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			a.respondError(c, errors.ToAppError(err))
			return
		}

		if err := a.security.ValidateName(req.Scenario); err != nil {
			a.respondError(c, errors.NewValidationError(err.Error()))
			return
		}

		store.SetScenario(req.Scenario)

		snap := store.Snapshot()
		c.JSON(http.StatusOK, gin.H{"revision": snap.Revision})
	})

	api.PUT("/reflection", func(c *gin.Context) {
		store := a.resolveSession(c)

		var req types.ReflectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			a.respondError(c, errors.ToAppError(err))
			return
		}

		if err := a.security.ValidateText(req.Reflection); err != nil {
			a.respondError(c, errors.NewValidationError(err.Error()))
			return
		}

		store.SetReflection(req.Reflection)

		snap := store.Snapshot()
		c.JSON(http.StatusOK, gin.H{"revision": snap.Revision})
	})

	api.GET("/chart.svg", func(c *gin.Context) {
		store := a.resolveSession(c)
		snap := store.Snapshot()

		records := quadrant.ClassifyRows(snap.Rows, snap.Thresholds)
		if len(records) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		key := cache.ArtifactKey("chart", snap.ID, snap.Revision)
		if item, ok := a.artifacts.Get(key); ok {
			a.metrics.IncrementCacheHit()
			a.logger.ChartLogger(snap.ID, len(records), len(item.Data), 0, true)
			c.Data(http.StatusOK, item.ContentType, item.Data)
			return
		}
		a.metrics.IncrementCacheMiss()

		start := time.Now()
		svg, err := chart.Render(a.chartCfg, records, snap.Thresholds)
		if err != nil {
			a.respondError(c, errors.NewInternalError("chart rendering failed", err))
			return
		}

		a.artifacts.Set(key, svg, "image/svg+xml")
		a.metrics.IncrementChartRender()
		a.logger.ChartLogger(snap.ID, len(records), len(svg), time.Since(start), false)

		c.Data(http.StatusOK, "image/svg+xml", svg)
	})

	api.GET("/export.csv", func(c *gin.Context) {
		store := a.resolveSession(c)
		snap := store.Snapshot()

		records := quadrant.ClassifyRows(snap.Rows, snap.Thresholds)
		if !export.CanExport(records, snap.Reflection) {
			c.Status(http.StatusNoContent)
			return
		}

		key := cache.ArtifactKey("csv", snap.ID, snap.Revision)
		item, ok := a.artifacts.Get(key)
		if ok {
			a.metrics.IncrementCacheHit()
		} else {
			a.metrics.IncrementCacheMiss()
			data := export.CSV(snap.Scenario, records)
			a.artifacts.Set(key, data, "text/csv; charset=utf-8")
			item = &cache.Item{Data: data, ContentType: "text/csv; charset=utf-8"}
		}

		a.metrics.IncrementExport("csv")
		a.logger.ExportLogger(snap.ID, "csv", len(records), len(item.Data), ok)

		c.Header("Content-Disposition", `attachment; filename="`+export.CSVFilename+`"`)
		c.Data(http.StatusOK, item.ContentType, item.Data)
	})

	api.GET("/export.txt", func(c *gin.Context) {
		store := a.resolveSession(c)
		snap := store.Snapshot()

		records := quadrant.ClassifyRows(snap.Rows, snap.Thresholds)
		if !export.CanExport(records, snap.Reflection) {
			c.Status(http.StatusNoContent)
			return
		}

		key := cache.ArtifactKey("txt", snap.ID, snap.Revision)
		item, ok := a.artifacts.Get(key)
		if ok {
			a.metrics.IncrementCacheHit()
		} else {
			a.metrics.IncrementCacheMiss()
			data := export.TextBundle(snap.Scenario, snap.Reflection, records)
			a.artifacts.Set(key, data, "text/plain; charset=utf-8")
			item = &cache.Item{Data: data, ContentType: "text/plain; charset=utf-8"}
		}

		a.metrics.IncrementExport("txt")
		a.logger.ExportLogger(snap.ID, "txt", len(records), len(item.Data), ok)

		c.Header("Content-Disposition", `attachment; filename="`+export.TextFilename+`"`)
		c.Data(http.StatusOK, item.ContentType, item.Data)
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	distFS, err := frontend.GetDistFS()
	if err == nil {
		indexTemplate, tErr := frontend.LoadIndexTemplate(distFS)
		if tErr == nil {
			r.NoRoute(frontend.NewSPAHandler(distFS, indexTemplate))
		} else {
			a.logger.APIErrorLogger(tErr, "INIT", "frontend", "", 0)
		}
	} else {
		a.logger.APIErrorLogger(err, "INIT", "frontend", "", 0)
	}

	return r
}

// resolveSession finds the caller's session from the cookie, creating a fresh
// one (and setting the cookie) when there isn't a live session.
func (a *app) resolveSession(c *gin.Context) *session.Store {
	id, _ := c.Cookie(sessionCookie)

	store := a.sessions.GetOrCreate(id)
	if store.ID() != id {
		a.metrics.IncrementSessionCreated()
		c.SetCookie(sessionCookie, store.ID(), int(a.sessionTTL.Seconds()), "/", "", false, true)
	}

	return store
}

// tableResponse builds the full table view: raw rows annotated with their
// quadrant, plus everything the client needs to stay in sync.
func (a *app) tableResponse(snap session.Snapshot) gin.H {
	rows := make([]rowView, len(snap.Rows))
	for i, row := range snap.Rows {
		rows[i] = rowView{FactorRecord: row}

		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		dep, okD := quadrant.ParseScore(row.Dependence)
		inf, okI := quadrant.ParseScore(row.Influence)
		if !okD || !okI {
			continue
		}

		q := quadrant.Classify(dep, inf, snap.Thresholds.CenterX, snap.Thresholds.CenterY)
		rows[i].Quadrant = &q
	}

	records := quadrant.ClassifyRows(snap.Rows, snap.Thresholds)

	counts := make(map[quadrant.Quadrant]int, len(quadrant.All))
	for _, rec := range records {
		counts[rec.Quadrant]++
	}

	return gin.H{
		"rows":       rows,
		"series":     chart.BuildSeries(records),
		"counts":     counts,
		"thresholds": snap.Thresholds,
		"scenario":   snap.Scenario,
		"reflection": snap.Reflection,
		"revision":   snap.Revision,
		"can_export": export.CanExport(records, snap.Reflection),
	}
}

func (a *app) respondError(c *gin.Context, appErr *errors.AppError) {
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, appErr)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
