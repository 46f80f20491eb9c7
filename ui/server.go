// Package ui exposes the dashboard and the admin upload path over HTTP as JSON.
package ui

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"leadboard/app"
	"leadboard/internal/auth"
	"leadboard/internal/config"
	"leadboard/ui/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server wires the HTTP routes to the services
type Server struct {
	router    *gin.Engine
	dashboard *app.DashboardService
	admin     *app.AdminService
	gate      *auth.Gate
	throttle  *auth.LoginThrottle
	cfg       config.ServerConfig
	now       func() time.Time
}

// Deps are the collaborators a Server needs
type Deps struct {
	Dashboard *app.DashboardService
	Admin     *app.AdminService
	Gate      *auth.Gate
	Throttle  *auth.LoginThrottle
	Config    config.ServerConfig
}

// NewServer creates the server and registers every route
func NewServer(deps Deps) *Server {
	s := &Server{
		router:    gin.New(),
		dashboard: deps.Dashboard,
		admin:     deps.Admin,
		gate:      deps.Gate,
		throttle:  deps.Throttle,
		cfg:       deps.Config,
		now:       time.Now,
	}
	if s.throttle == nil {
		s.throttle = auth.NewLoginThrottle(5)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	if len(s.cfg.CORSOrigins) > 0 {
		corsCfg := cors.Config{
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}
		if len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*" {
			corsCfg.AllowAllOrigins = true
		} else {
			corsCfg.AllowOrigins = s.cfg.CORSOrigins
		}
		s.router.Use(cors.New(corsCfg))
		log.Printf("[Server] CORS enabled for %v", s.cfg.CORSOrigins)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/options", s.handleOptions)
	api.GET("/export", s.handleExport)

	admin := api.Group("/admin")
	admin.POST("/login", middleware.Throttle(s.throttle), s.handleLogin)

	gated := admin.Group("", middleware.RequireSession(s.gate))
	maxUpload := int64(s.cfg.MaxUploadMB) << 20
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	gated.POST("/preview", middleware.LimitBody(maxUpload), s.handlePreview)
	gated.POST("/dataset", middleware.LimitBody(maxUpload), s.handleReplace)
	gated.GET("/overview", s.handleOverview)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("[Server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
