package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/classbill/classbill/internal/tenantcontext"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// tenantAuth resolves the owning tenant for every request. The teacher id is
// mandatory; a matching admin token additionally grants cross-tenant reads.
// Requests without a resolvable scope never reach a handler.
func (s *Server) tenantAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		superadmin := false
		if token := strings.TrimSpace(c.GetHeader("X-Admin-Token")); token != "" {
			if s.cfg.Auth.AdminToken == "" || token != s.cfg.Auth.AdminToken {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_admin_token"})
				return
			}
			superadmin = true
			ctx = tenantcontext.WithSuperadmin(ctx)
		}

		if raw := strings.TrimSpace(c.GetHeader("X-Teacher-ID")); raw != "" {
			id, err := snowflake.ParseString(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_teacher_id"})
				return
			}
			ctx = tenantcontext.WithTenantID(ctx, id)
		} else if !superadmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_teacher_id"})
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
