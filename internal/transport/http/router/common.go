package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gin-account-service/internal/core/server"
	mdw "gin-account-service/internal/transport/http/middleware"
)

// Pinger 健康检查依赖（DB、缓存）
type Pinger func(ctx context.Context) error

type Options struct {
	Name         string
	Mode         string
	MaxBodyBytes int64
	Timeout      time.Duration
	Health       map[string]Pinger
}

func (o *Options) defaults() {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 16 << 20
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
}

func newEngine(l *zap.Logger, o Options) *gin.Engine {
	o.defaults()
	r := server.NewRouter(l, server.Options{Name: o.Name, Mode: o.Mode},
		mdw.RequestID(),
		mdw.Recovery(l),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", health(o.Health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// health 任一依赖不可用返回 503
func health(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status := gin.H{}
		code := http.StatusOK
		for name, ping := range deps {
			if err := ping(ctx); err != nil {
				status[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		c.JSON(code, gin.H{"ok": code == http.StatusOK, "deps": status})
	}
}
