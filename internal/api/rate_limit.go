package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/auth"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware 限流中间件
// 已认证请求按用户限流,其余按客户端 IP
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	var limiters sync.Map

	limiterFor := func(key string) *rate.Limiter {
		if l, ok := limiters.Load(key); ok {
			return l.(*rate.Limiter)
		}
		l, _ := limiters.LoadOrStore(key, rate.NewLimiter(rate.Limit(rps), burst))
		return l.(*rate.Limiter)
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID := c.GetString(auth.ContextUserID); userID != "" {
			key = "user:" + userID
		}

		if !limiterFor(key).Allow() {
			writeError(c, ErrorResponse{
				Code:    http.StatusTooManyRequests,
				Message: "too many requests",
			})
			return
		}
		c.Next()
	}
}
