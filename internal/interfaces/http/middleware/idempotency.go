package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "aeroapi.backend/internal/domain/errors"
	"aeroapi.backend/internal/interfaces/http/response"
	"aeroapi.backend/pkg/logger"
	"aeroapi.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from a stored result
	IdempotencyReplayHeader = "X-Idempotency-Replayed"
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"

	maxIdempotencyKeyLength = 128
)

// IdempotencyStore keeps responses to keyed requests
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (bool, *redis.IdempotencyRecord, error)
	Complete(ctx context.Context, key string, record *redis.IdempotencyRecord) error
	Release(ctx context.Context, key string) error
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a caller retries a request
// with the same Idempotency-Key. Keys are scoped to the caller and route.
// Requests without the header, or before a caller is known, pass through.
// A nil store or a failing backend lets requests through.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if store == nil || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			response.ErrorWithError(c, http.StatusBadRequest, domainerrors.CodeBadRequest,
				fmt.Sprintf("%s must be at most %d characters", IdempotencyHeader, maxIdempotencyKeyLength))
			c.Abort()
			return
		}

		caller := idempotencyCaller(c)
		if caller == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		storageKey := fmt.Sprintf("%s:%s:%s", caller, c.FullPath(), key)

		reserved, record, err := store.Reserve(ctx, storageKey)
		if err != nil {
			logger.Warn(ctx, "Idempotency store unavailable, processing request", zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			if record == nil || !record.Done {
				response.ErrorWithError(c, http.StatusConflict, CodeIdempotencyConflict, "Request already in progress")
				c.Abort()
				return
			}
			c.Header(IdempotencyReplayHeader, "true")
			c.Data(record.Status, record.ContentType, record.Body)
			c.Abort()
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			err = store.Complete(ctx, storageKey, &redis.IdempotencyRecord{
				Done:        true,
				Status:      status,
				ContentType: c.Writer.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			})
		} else {
			err = store.Release(ctx, storageKey)
		}
		if err != nil {
			logger.Warn(ctx, "Failed to record idempotent response", zap.Error(err))
		}
	}
}

func idempotencyCaller(c *gin.Context) string {
	if id, ok := GetUserID(c); ok {
		return id.String()
	}
	if d, ok := GetDecision(c); ok && d.User != nil {
		return d.User.ID.String()
	}
	return ""
}
