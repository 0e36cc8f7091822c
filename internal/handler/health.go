package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/manglemix/pony-express/pkg/log"
	"github.com/manglemix/pony-express/pkg/response"
)

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports "ok" when every check answers within a second.
func Health(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		status := make(map[string]string, len(checks)+1)
		healthy := true
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				l := log.Ctx(ctx)
				l.Warn().Err(err).Str("check", name).Msg("health check failed")
				status[name] = "down"
				healthy = false
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			status["status"] = "degraded"
			response.ServiceUnavailable(c, status)
			return
		}
		status["status"] = "ok"
		response.Success(c, status)
	}
}
