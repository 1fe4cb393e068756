package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/config"
	"github.com/jmehdipour/wa-assistant/internal/http/middleware"
	"github.com/jmehdipour/wa-assistant/internal/logger"
	"github.com/jmehdipour/wa-assistant/internal/metrics"
	"github.com/jmehdipour/wa-assistant/internal/service/messenger"
	"github.com/jmehdipour/wa-assistant/internal/store"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	e *echo.Echo

	// background broadcasts started by requests; cancelled and awaited on Shutdown
	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
}

func NewServer(cfg config.Config, st *store.Store, msg *messenger.Service, rds *redis.Client) *Server {
	s := &Server{}
	s.bgCtx, s.bgCancel = context.WithCancel(context.Background())

	// echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(cfg.HTTP.APIKeys)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "waa:rl:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.GET("/contacts", listContactsHandler(st))
	v1.POST("/contacts", addContactHandler(st))
	v1.POST("/messages/send", sendHandler(msg, s.goBackground))
	v1.GET("/stats", statsHandler(msg))
	v1.GET("/logs", listLogsHandler(st))

	s.e = e
	return s
}

// goBackground runs fn detached from the request with the server's lifetime context.
func (s *Server) goBackground(fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn(s.bgCtx)
	}()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }

func (s *Server) Start(addr string) error {
	logger.Log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.e.Shutdown(ctx)
	s.bgCancel()

	done := make(chan struct{})
	go func() {
		s.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return err
}
