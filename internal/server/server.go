package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scanview/frontend/internal/config"
	"github.com/scanview/frontend/internal/handler"
	"github.com/scanview/frontend/internal/service"
	"github.com/scanview/frontend/web"
)

// Server is the scan dashboard front end.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
	dashboard  *service.Dashboard
	hub        *handler.Hub
	logger     *slog.Logger
}

// New wires the dashboard, websocket hub and routes. The scanner is the
// remote scan service client.
func New(cfg *config.Config, scanner service.Scanner, logger *slog.Logger) (*Server, error) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := web.Parse()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	dashboard := service.NewDashboard(scanner, cfg.Pages.IdleTTL, logger)
	hub := handler.NewHub(cfg.Origins(), logger)
	dashboard.OnHistory(hub.PublishHistory)
	// An open tab keeps its page alive through its websocket pings.
	hub.OnAlive(func(pageID string) { dashboard.Touch(pageID) })

	s := &Server{
		router:    router,
		config:    cfg,
		dashboard: dashboard,
		hub:       hub,
		logger:    logger.With("area", "server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Dashboard() *service.Dashboard { return s.dashboard }

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
	s.router.Use(securityHeaders())
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.Origins(),
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

func (s *Server) setupRoutes() {
	h := handler.NewDashboardHandler(s.dashboard, s.hub, s.logger)

	s.router.GET("/ping", handler.Ping)
	s.router.GET("/healthz", handler.Healthz)

	s.router.GET("/", h.Index)
	s.router.POST("/scan", h.Scan)
	s.router.GET("/pages/:id", h.Show)
	s.router.GET("/ws", h.Subscribe)

	api := s.router.Group("/api")
	{
		api.GET("", handler.Info)
		api.POST("/pages", h.OpenPage)
		api.GET("/pages/:id", h.GetPage)
		api.DELETE("/pages/:id", h.ClosePage)
		api.POST("/pages/:id/scan", h.ScanPage)
		api.GET("/pages/:id/history", h.PageHistory)
	}
}

// securityHeaders sets the response hardening headers. Inline styles and
// the page's small inline script are allowed.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self' ws: wss:")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// requestLogger logs one line per page or API request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if path == "/ping" || path == "/healthz" || path == "/ws" || path == "/favicon.ico" {
			return
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"client", c.ClientIP(),
			"latency", time.Since(start).Round(time.Microsecond),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", strings.TrimSpace(c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("request", attrs...)
			return
		}
		s.logger.Info("request", attrs...)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)
	if s.config.Pages.IdleTTL > 0 {
		go s.dashboard.RunReaper(ctx, s.config.Pages.ReapInterval)
	}

	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr(), err)
	}

	// A page post waits for the whole scan, so writes get the scan timeout
	// plus headroom.
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.ScanService.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("starting server", "addr", ln.Addr().String(), "scan_service", s.config.ScanService.URL)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
