package dashboard

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CryptoFlow/internal/collector"
	"CryptoFlow/internal/logger"
	"CryptoFlow/internal/metrics"
	"CryptoFlow/internal/model"
	"CryptoFlow/internal/recorder"
)

// Scanner runs a full market scan.
type Scanner interface {
	Scan(ctx context.Context) (*model.ScanSummary, error)
}

// ChartBuilder produces chart payloads. *collector.Collector satisfies it.
type ChartBuilder interface {
	Chart(ctx context.Context, symbol string, tf model.Timeframe, limit int, opts collector.ChartOptions) (*model.Chart, error)
}

// Server is the dashboard HTTP server.
type Server struct {
	Engine     *gin.Engine
	Sessions   *SessionStore
	Scanner    Scanner
	Charts     ChartBuilder
	Recorder   recorder.Recorder
	ChartLimit int
	SMALength  int

	scanning atomic.Bool
}

// NewServer wires the routes.
func NewServer(sc Scanner, charts ChartBuilder, rec recorder.Recorder, sessions *SessionStore) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Server{
		Engine:     gin.New(),
		Sessions:   sessions,
		Scanner:    sc,
		Charts:     charts,
		Recorder:   rec,
		ChartLimit: 500,
		SMALength:  50,
	}
	s.Engine.Use(gin.Recovery(), accessLog(), metrics.GinMiddleware())
	s.Engine.SetHTMLTemplate(template.Must(template.New("index").Parse(indexHTML)))
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.Engine
	r.GET("/", s.index)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/session", s.session)
	api.POST("/scan", s.scan)
	api.POST("/select", s.selectSymbol)
	api.POST("/settings", s.settings)
	api.GET("/chart", s.chart)
	api.GET("/alerts", s.alerts)
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "dashboard listen")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) index(c *gin.Context) {
	id := s.Sessions.Acquire(c)
	c.HTML(http.StatusOK, "index", gin.H{
		"View":      s.Sessions.View(id),
		"SMALength": s.SMALength,
	})
}

func (s *Server) session(c *gin.Context) {
	id := s.Sessions.Acquire(c)
	c.JSON(http.StatusOK, s.Sessions.View(id))
}

func (s *Server) scan(c *gin.Context) {
	id := s.Sessions.Acquire(c)
	if !s.scanning.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "a scan is already running"})
		return
	}
	defer s.scanning.Store(false)

	sum, err := s.Scanner.Scan(c.Request.Context())
	if err != nil {
		logger.Warn("dashboard scan: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	view := s.Sessions.Update(id, func(sess *Session) {
		sess.Results = sum.Results
		sess.LastScan = sum.Finished
	})
	c.JSON(http.StatusOK, gin.H{
		"results":  view.Results,
		"symbols":  sum.Symbols,
		"skipped":  sum.Skipped,
		"duration": sum.Duration().Seconds(),
	})
}

func (s *Server) selectSymbol(c *gin.Context) {
	id := s.Sessions.Acquire(c)
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sym, ok := NormalizeSymbol(req.Symbol)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol"})
		return
	}
	c.JSON(http.StatusOK, s.Sessions.Update(id, func(sess *Session) { sess.SelectedSymbol = sym }))
}

func (s *Server) settings(c *gin.Context) {
	id := s.Sessions.Acquire(c)
	var req Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var tf model.Timeframe
	if req.Timeframe != "" {
		var ok bool
		if tf, ok = model.ParseTimeframe(req.Timeframe); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported timeframe"})
			return
		}
	}
	c.JSON(http.StatusOK, s.Sessions.Update(id, func(sess *Session) {
		if tf != "" {
			sess.Timeframe = tf
		}
		if req.ShowSMA != nil {
			sess.ShowSMA = *req.ShowSMA
		}
		if req.ShowRSI != nil {
			sess.ShowRSI = *req.ShowRSI
		}
	}))
}

func (s *Server) chart(c *gin.Context) {
	id := s.Sessions.Acquire(c)
	v := s.Sessions.View(id)
	chart, err := s.Charts.Chart(c.Request.Context(), v.SelectedSymbol, v.Timeframe, s.ChartLimit,
		collector.ChartOptions{ShowSMA: v.ShowSMA, ShowRSI: v.ShowRSI})
	if err != nil {
		logger.Warn("dashboard chart %s %s: %v", v.SelectedSymbol, v.Timeframe, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (s *Server) alerts(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, 500)
	}
	alerts, err := s.Recorder.RecentAlerts(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if alerts == nil {
		alerts = []recorder.AlertEvent{}
	}
	c.JSON(http.StatusOK, alerts)
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
