package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aeroapi.backend/internal/interfaces/http/handlers"
	"aeroapi.backend/internal/interfaces/http/middleware"
	"aeroapi.backend/pkg/jwt"
	"aeroapi.backend/pkg/metrics"
)

type routeDeps struct {
	validateKeyHandler *handlers.ValidateKeyHandler
	setRankHandler     *handlers.SetRankHandler
	authHandler        *handlers.AuthHandler
	userHandler        *handlers.UserHandler
	adminHandler       *handlers.AdminHandler

	jwtService    *jwt.JWTService
	gate          middleware.Authorizer
	statuses      middleware.StatusReader
	limiter       middleware.Limiter
	idempotency   middleware.IdempotencyStore
	proxySecret   string
	metrics       *metrics.Registry
	allowedOrigin []string
}

func newRouter(d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	if d.metrics != nil {
		r.Use(d.metrics.GinMiddleware())
	}

	applyCORSMiddleware(r, d.allowedOrigin)
	registerHealthRoute(r)
	if d.metrics != nil {
		r.GET("/metrics", gin.WrapH(d.metrics.Handler()))
	}
	registerAPIRoutes(r, d)
	return r
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	api := r.Group("/api")
	{
		// Public key validation for external services
		api.GET("/validate-key/:apiKey", middleware.Throttle(d.limiter), d.validateKeyHandler.ValidateKey)

		// Privileged action behind the API key gate
		api.POST("/setrank", middleware.ApiKeyGate(d.gate), middleware.Idempotency(d.idempotency), d.setRankHandler.SetRank)

		// Session absorb from the identity proxy
		api.POST("/auth/identity", middleware.TrustedProxy(d.proxySecret), d.authHandler.Identity)

		user := api.Group("/user")
		user.Use(middleware.AuthMiddleware(d.jwtService))
		{
			user.GET("/status", d.userHandler.Status)

			keys := user.Group("/keys")
			keys.Use(middleware.OwnerInGoodStanding(d.statuses))
			{
				keys.GET("", d.userHandler.ListKeys)
				keys.POST("/generate", d.userHandler.GenerateKey)
				keys.DELETE("/:id", d.userHandler.DeleteKey)
			}
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(d.jwtService), middleware.RequireAdmin())
		{
			admin.GET("/users", d.adminHandler.ListUsers)
			admin.GET("/moderation-history/:userId", d.adminHandler.ModerationHistory)
			admin.POST("/moderate", middleware.Idempotency(d.idempotency), d.adminHandler.Moderate)
			admin.POST("/unmoderate", d.adminHandler.Unmoderate)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// applyCORSMiddleware reflects allowed origins. An empty list allows any origin.
func applyCORSMiddleware(r *gin.Engine, allowed []string) {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = struct{}{}
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowedSet[origin]; ok || len(allowedSet) == 0 {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Vary", "Origin")
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", strings.Join([]string{
			"Content-Type",
			middleware.AuthorizationHeader,
			middleware.ApiKeyHeader,
			middleware.RequestIDHeader,
			middleware.IdempotencyHeader,
		}, ", "))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
