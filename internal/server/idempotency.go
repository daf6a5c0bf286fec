package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyTTL = 24 * time.Hour

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func idempotencyKeyFromHeader(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}

// idempotency replays the cached response for a repeated mutating request
// carrying the same Idempotency-Key. Disabled when redis is not configured;
// the engine's own existence checks still make generation safe to repeat.
func (s *Server) idempotency() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rdb == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		key := idempotencyKeyFromHeader(c)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "idem:" + c.GetHeader("X-Teacher-ID") + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached cachedResponse
			if json.Unmarshal(raw, &cached) == nil {
				c.Data(cached.Status, "application/json", cached.Body)
				c.Abort()
				return
			}
		} else if err != redis.Nil {
			s.log.Warn("idempotency cache read failed", zap.Error(err))
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		raw, err := json.Marshal(cachedResponse{Status: status, Body: w.buf.Bytes()})
		if err != nil {
			return
		}
		if err := s.rdb.Set(ctx, cacheKey, raw, idempotencyTTL).Err(); err != nil {
			s.log.Warn("idempotency cache write failed", zap.Error(err))
		}
	}
}
