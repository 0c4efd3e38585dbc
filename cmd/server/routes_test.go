package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aeroapi.backend/internal/domain/entities"
	"aeroapi.backend/internal/infrastructure/filestore"
	"aeroapi.backend/internal/interfaces/http/handlers"
	"aeroapi.backend/internal/interfaces/http/middleware"
	"aeroapi.backend/internal/usecases"
	"aeroapi.backend/pkg/jwt"
	"aeroapi.backend/pkg/metrics"
	"aeroapi.backend/pkg/redis"
)

type routerRig struct {
	router     *gin.Engine
	store      *filestore.Store
	jwtService *jwt.JWTService
	moderation *usecases.ModerationUsecase
}

func newRouterRig(t *testing.T, idempotency middleware.IdempotencyStore) *routerRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := filestore.Open(filepath.Join(t.TempDir(), "store.json"), "")
	require.NoError(t, err)

	jwtService := jwt.NewJWTService("secret", time.Hour)
	moderation := usecases.NewModerationUsecase(store, store, nil)
	keys := usecases.NewApiKeyUsecase(store, store)
	gate := usecases.NewAuthorizationUsecase(keys, moderation, store, nil)
	users := usecases.NewUserUsecase(store, moderation, jwtService, nil)

	r := newRouter(routeDeps{
		validateKeyHandler: handlers.NewValidateKeyHandler(gate),
		setRankHandler:     handlers.NewSetRankHandler(nil),
		authHandler:        handlers.NewAuthHandler(users),
		userHandler:        handlers.NewUserHandler(keys, moderation),
		adminHandler:       handlers.NewAdminHandler(users, moderation),
		jwtService:         jwtService,
		gate:               gate,
		statuses:           moderation,
		idempotency:        idempotency,
		proxySecret:        "proxy",
		metrics:            metrics.NewRegistry(),
		allowedOrigin:      []string{"http://localhost:3000"},
	})
	return &routerRig{router: r, store: store, jwtService: jwtService, moderation: moderation}
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newRouterRig(t, nil).router
}

func TestNewRouter_RegistersRoutes(t *testing.T) {
	r := testRouter(t)

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"GET /api/validate-key/:apiKey",
		"POST /api/setrank",
		"POST /api/auth/identity",
		"GET /api/user/status",
		"GET /api/user/keys",
		"POST /api/user/keys/generate",
		"DELETE /api/user/keys/:id",
		"GET /api/admin/users",
		"GET /api/admin/moderation-history/:userId",
		"POST /api/admin/moderate",
		"POST /api/admin/unmoderate",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestNewRouter_Guards(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		method string
		path   string
		header map[string]string
		want   int
	}{
		{http.MethodGet, "/api/user/status", nil, http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/users", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/auth/identity", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/setrank", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/setrank", map[string]string{middleware.ApiKeyHeader: "AeroAPI-nope"}, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		for k, v := range tc.header {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.method+" "+tc.path)
	}
}

func TestApplyCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	applyCORSMiddleware(r, []string{"http://localhost:3000"})
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), middleware.ApiKeyHeader)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestApplyCORSMiddleware_AnyOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	applyCORSMiddleware(r, nil)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://dash.aero.test")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "https://dash.aero.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRegisterHealthRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerHealthRoute(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNewRouter_ModerateHonoursIdempotencyKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	rig := newRouterRig(t, redis.NewIdempotency(client, "test:idempotency", time.Minute, time.Hour))

	ctx := context.Background()
	admin, err := rig.store.UpsertUser(ctx, &entities.UpsertUserInput{ExternalID: "900", Name: "ops", IsAdmin: true})
	require.NoError(t, err)
	subject, err := rig.store.UpsertUser(ctx, &entities.UpsertUserInput{ExternalID: "42", Name: "pilot"})
	require.NoError(t, err)
	token, err := rig.jwtService.GenerateAccessToken(admin.ID, admin.ExternalID, string(entities.UserRoleAdmin))
	require.NoError(t, err)

	moderate := func() *httptest.ResponseRecorder {
		body := `{"userId":"` + subject.ID.String() + `","actionType":"disable","reason":"abuse"}`
		req := httptest.NewRequest(http.MethodPost, "/api/admin/moderate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+token)
		req.Header.Set(middleware.IdempotencyHeader, "moderate-42")
		w := httptest.NewRecorder()
		rig.router.ServeHTTP(w, req)
		return w
	}

	first := moderate()
	require.Equal(t, http.StatusCreated, first.Code)
	retry := moderate()
	assert.Equal(t, http.StatusCreated, retry.Code)
	assert.Equal(t, "true", retry.Header().Get(middleware.IdempotencyReplayHeader))
	assert.JSONEq(t, first.Body.String(), retry.Body.String())

	history, err := rig.moderation.History(ctx, subject.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
