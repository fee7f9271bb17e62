package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bizops/internal/pkg/response"
	"bizops/internal/tenant"
)

// RequestLogger writes one line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := append(requestFields(c), zap.Duration("latency", time.Since(start)))
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// ErrorLogger logs errors attached with c.Error and recovers from panics.
func ErrorLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				log.Error("panic",
					append(requestFields(c),
						zap.Duration("latency", time.Since(start)),
						zap.Error(err),
						zap.ByteString("stack", debug.Stack()),
					)...,
				)
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")
				return
			}

			for _, ginErr := range c.Errors {
				fields := append(requestFields(c),
					zap.Duration("latency", time.Since(start)),
					zap.String("type", fmt.Sprintf("%v", ginErr.Type)),
					zap.Error(ginErr.Err),
				)
				if ginErr.Meta != nil {
					fields = append(fields, zap.Any("meta", ginErr.Meta))
				}
				log.Error("request_error", fields...)
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context) []zap.Field {
	fields := []zap.Field{
		zap.Int("status", c.Writer.Status()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", requestID(c)),
	}
	if scope, ok := tenant.FromGin(c); ok {
		fields = append(fields,
			zap.String("org_id", scope.OrgID.String()),
			zap.String("user_id", scope.UserID.String()),
		)
	}
	return fields
}

func requestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
