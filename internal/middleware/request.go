package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID 为每个请求分配 ID，已带 X-Request-ID 时沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(requestIDKey, requestID)
		c.Next()
	}
}

// GetRequestID 读取当前请求 ID
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RequestLogger 记录请求耗时；生成请求可能持续数分钟
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		switch {
		case status >= 500:
			klog.Errorf("[http] %s %s status=%d latency=%v request_id=%s", c.Request.Method, c.Request.URL.Path, status, latency, GetRequestID(c))
		case status >= 400:
			klog.Warningf("[http] %s %s status=%d latency=%v request_id=%s", c.Request.Method, c.Request.URL.Path, status, latency, GetRequestID(c))
		default:
			klog.V(6).Infof("[http] %s %s status=%d latency=%v request_id=%s", c.Request.Method, c.Request.URL.Path, status, latency, GetRequestID(c))
		}
	}
}
