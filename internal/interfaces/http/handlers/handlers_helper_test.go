package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"aeroapi.backend/internal/domain/entities"
	"aeroapi.backend/internal/infrastructure/filestore"
	"aeroapi.backend/internal/interfaces/http/middleware"
	"aeroapi.backend/internal/usecases"
	"aeroapi.backend/pkg/jwt"
)

const (
	testProxySecret = "proxy-secret"
	testAdminID     = "900"
)

type stubRankExecutor struct {
	calls  int
	caller *entities.User
	err    error
}

func (s *stubRankExecutor) SetRank(_ context.Context, caller *entities.User, input *entities.SetRankInput) (*entities.SetRankResult, error) {
	s.calls++
	s.caller = caller
	if s.err != nil {
		return nil, s.err
	}
	return &entities.SetRankResult{TargetUserID: 7, Username: input.TargetUsername, RankID: input.RankID}, nil
}

type testEnv struct {
	t          *testing.T
	router     *gin.Engine
	store      *filestore.Store
	users      *usecases.UserUsecase
	keys       *usecases.ApiKeyUsecase
	moderation *usecases.ModerationUsecase
	gate       *usecases.AuthorizationUsecase
}

func newTestEnv(t *testing.T, executor RankExecutor) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := filestore.Open(filepath.Join(t.TempDir(), "store.json"), "")
	require.NoError(t, err)

	jwtService := jwt.NewJWTService("test-secret", time.Hour)
	moderation := usecases.NewModerationUsecase(store, store, nil)
	keys := usecases.NewApiKeyUsecase(store, store)
	gate := usecases.NewAuthorizationUsecase(keys, moderation, store, nil)
	users := usecases.NewUserUsecase(store, moderation, jwtService, []string{testAdminID})
	t.Cleanup(gate.Wait)

	validateHandler := NewValidateKeyHandler(gate)
	setRankHandler := NewSetRankHandler(executor)
	authHandler := NewAuthHandler(users)
	userHandler := NewUserHandler(keys, moderation)
	adminHandler := NewAdminHandler(users, moderation)

	r := gin.New()
	r.GET("/health", Health)
	api := r.Group("/api")
	api.GET("/validate-key/:apiKey", validateHandler.ValidateKey)
	api.POST("/setrank", middleware.ApiKeyGate(gate), setRankHandler.SetRank)
	api.POST("/auth/identity", middleware.TrustedProxy(testProxySecret), authHandler.Identity)

	user := api.Group("/user", middleware.AuthMiddleware(jwtService))
	user.GET("/status", userHandler.Status)
	keysGroup := user.Group("/keys", middleware.OwnerInGoodStanding(moderation))
	keysGroup.GET("", userHandler.ListKeys)
	keysGroup.POST("/generate", userHandler.GenerateKey)
	keysGroup.DELETE("/:id", userHandler.DeleteKey)

	admin := api.Group("/admin", middleware.AuthMiddleware(jwtService), middleware.RequireAdmin())
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/moderation-history/:userId", adminHandler.ModerationHistory)
	admin.POST("/moderate", adminHandler.Moderate)
	admin.POST("/unmoderate", adminHandler.Unmoderate)

	return &testEnv{
		t:          t,
		router:     r,
		store:      store,
		users:      users,
		keys:       keys,
		moderation: moderation,
		gate:       gate,
	}
}

// login absorbs an identity and returns its session
func (e *testEnv) login(externalID, name string) *entities.SessionResponse {
	e.t.Helper()
	session, err := e.users.Login(context.Background(), &entities.UpsertUserInput{ExternalID: externalID, Name: name})
	require.NoError(e.t, err)
	return session
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+token) }
}

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (e *testEnv) do(method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
