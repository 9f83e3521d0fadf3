// Package server exposes the tracking session over HTTP: a liveness ping,
// the latest frame summary, Prometheus metrics and a websocket stream of
// event records.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/dudu/gazetrack/internal/events"
	"github.com/dudu/gazetrack/internal/logger"
	"github.com/dudu/gazetrack/internal/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Options configures the server
type Options struct {
	Addr        string
	Metrics     http.Handler
	Development bool
}

// SessionStatus is the body of GET /api/session
type SessionStatus struct {
	Session     string            `json:"session"`
	Frames      uint64            `json:"frames"`
	TotalBlinks int               `json:"totalBlinks"`
	Subscribers int               `json:"subscribers"`
	Latest      []events.Record   `json:"latest"`
	Settings    pipeline.Settings `json:"settings"`
}

// Server is the status API. It implements pipeline.Observer.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	hub    *Hub
	ids    *events.IDSource

	mu       sync.RWMutex
	session  string
	frames   uint64
	blinks   int
	latest   []events.Record
	settings func() pipeline.Settings
}

// New creates the server and its routes
func New(opts Options, settings func() pipeline.Settings) *Server {
	if !opts.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:   gin.New(),
		hub:      NewHub(),
		ids:      events.NewIDSource(),
		latest:   []events.Record{},
		settings: settings,
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.routes(opts.Metrics)

	s.http = &http.Server{
		Addr:    opts.Addr,
		Handler: s.engine,
	}
	return s
}

func (s *Server) routes(metrics http.Handler) {
	r := s.engine
	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/api/session", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Status())
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
	r.GET("/ws/results", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the error response
			return
		}
		s.hub.Serve(conn)
	})
}

// requestLogger logs each request through zap at debug level
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Log().Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Status returns a snapshot of the session
func (s *Server) Status() SessionStatus {
	s.mu.RLock()
	status := SessionStatus{
		Session:     s.session,
		Frames:      s.frames,
		TotalBlinks: s.blinks,
		Latest:      s.latest,
	}
	s.mu.RUnlock()

	status.Subscribers = s.hub.Len()
	if s.settings != nil {
		status.Settings = s.settings()
	}
	return status
}

// ObserveFrame stores the latest records and streams them to subscribers
func (s *Server) ObserveFrame(sessionID string, results []pipeline.FrameResult, timing pipeline.Timing) {
	records, err := events.FromResults(s.ids, sessionID, timing, results, time.Now())
	if err != nil {
		logger.Log().Warn("event id generation failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.session = sessionID
	s.frames = timing.Frame
	if len(records) > 0 {
		s.latest = records
		s.blinks = records[len(records)-1].TotalBlinks
	}
	s.mu.Unlock()

	for i := range records {
		msg, err := json.Marshal(&records[i])
		if err != nil {
			continue
		}
		s.hub.Broadcast(msg)
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
