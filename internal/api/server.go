package api

import (
	"fmt"
	"net/http"

	"showpro/internal/config"
	"showpro/internal/handlers"
	"showpro/internal/infra"
	"showpro/internal/metrics"
	"showpro/internal/middleware"
	"showpro/internal/service"
	"showpro/internal/validation"

	"github.com/gin-gonic/gin"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	infra    *infra.Infra
	services *service.Services
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)
	validation.ConfigureGin()

	conns, err := infra.Connect(cfg)
	if err != nil {
		return nil, err
	}

	services, err := conns.Services(cfg)
	if err != nil {
		conns.Close()
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(metrics.Middleware())
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	server := &Server{
		router:   router,
		config:   cfg,
		infra:    conns,
		services: services,
	}

	server.setupRoutes()

	return server, nil
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	// Все API роуты требуют bearer токен
	api := s.router.Group("/api")
	api.Use(middleware.Auth(s.config.Auth, s.services.Roles))
	h.Register(api, handlers.CatalogsFrom(s.services.Directory))

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", metrics.Handler())
}

// healthCheck обрабатывает health check запросы. Кеш и поиск необязательны
// и на общий статус не влияют.
func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	db := s.infra.DB.HealthCheck(ctx)

	status := http.StatusOK
	if db.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   db.Status,
		"service":  "showpro-api",
		"version":  "1.0.0",
		"database": db,
		"cache":    componentStatus(s.infra.Redis != nil, func() error { return s.infra.Redis.Ping(ctx) }),
		"search":   componentStatus(s.infra.ES != nil, func() error { return s.infra.ES.HealthCheck(ctx) }),
	})
}

func componentStatus(enabled bool, check func() error) string {
	if !enabled {
		return "disabled"
	}
	if err := check(); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	return s.infra.Close()
}
