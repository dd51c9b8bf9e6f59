// Package signal exposes the two HTTP surfaces of the relay: the long-lived
// event stream each role subscribes to, and the one-shot endpoint that
// forwards a signaling payload to the subscriber's peer.
package signal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/phonebridge/internal/app"
	"github.com/dkeye/phonebridge/internal/config"
	"github.com/dkeye/phonebridge/internal/domain"
)

type Controller struct {
	Registry *app.Registry

	maxSignalBytes int64
}

func NewController(reg *app.Registry, cfg *config.Config) *Controller {
	return &Controller{
		Registry:       reg,
		maxSignalBytes: cfg.MaxSignalBytes,
	}
}

// sessionParams pulls the identifying query parameters every relay call
// carries. Either one missing or malformed aborts with 400 before any state
// is touched.
func sessionParams(c *gin.Context) (domain.SessionID, domain.Role, bool) {
	id := c.Query("id")
	role, err := domain.ParseRole(c.Query("role"))
	if id == "" || err != nil {
		c.String(http.StatusBadRequest, "missing id or role")
		return "", "", false
	}
	return domain.SessionID(id), role, true
}
