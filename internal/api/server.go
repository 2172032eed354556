// Package api serves the transliteration codec and quest engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/kudlit/internal/backend"
	"github.com/verte-zerg/kudlit/internal/rewards"
)

const shutdownTimeout = 5 * time.Second

// Server hosts the HTTP API.
type Server struct {
	addr       string
	logger     *slog.Logger
	httpServer *http.Server
}

// Options configures the router.
type Options struct {
	Rewards      *rewards.Service
	Backend      *backend.Client
	Logger       *slog.Logger
	AllowOrigins []string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &handlers{rewards: opts.Rewards, backend: opts.Backend, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), corsMiddleware(opts.AllowOrigins))

	r.POST("/api/transliterate/", h.transliterate)
	r.GET("/api/leaderboard", h.leaderboard)

	users := r.Group("/api/users/:uid")
	{
		users.GET("", h.profile)
		users.PUT("/name", h.setName)
		users.POST("/login", h.login)
		users.POST("/activities", h.activity)
		users.GET("/quests", h.quests)
		users.POST("/quests/:quest/claim", h.claim)
	}
	return r
}

// NewServer returns a Server listening on addr.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		addr:   addr,
		logger: logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(opts),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.logger.Info("api listening", "addr", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
