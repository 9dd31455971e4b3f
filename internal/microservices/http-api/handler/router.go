package handler

import (
	"log/slog"
	"net/http"

	"elibrary/internal/microservices/http-api/middleware"
	"elibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// RouterDeps bundles what NewRouter wires together.
type RouterDeps struct {
	AuthService service.AuthService
	BookService service.BookService
	Logger      *slog.Logger
	CORSOrigins []string
	// Ping reports store health for /check-conn; nil means always healthy.
	Ping func() error
}

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORSMiddleware(deps.CORSOrigins))

	r.GET("/check-conn", func(c *gin.Context) {
		if deps.Ping != nil {
			if err := deps.Ping(); err != nil {
				deps.Logger.Error("health_check_failed", "error", err.Error())
				respondError(c, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
	})

	guard := middleware.AuthMiddleware(deps.AuthService, deps.Logger)

	api := r.Group("/api")
	api.GET("/genres", ListGenres)

	NewAuthHandler(deps.AuthService, deps.Logger).RegisterRoutes(api.Group("/auth"), guard)
	NewBookHandler(deps.BookService, deps.Logger).RegisterRoutes(api.Group("/books"), guard)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return r
}
