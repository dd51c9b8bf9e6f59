package signal

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/phonebridge/internal/app"
	"github.com/dkeye/phonebridge/internal/domain"
)

// HandleSignal forwards one signaling payload to the caller's peer. The
// payload is validated as JSON and nothing more; delivery is fire-and-forget
// and the peers own end-to-end reliability.
func (ctl *Controller) HandleSignal(c *gin.Context) {
	sid, role, ok := sessionParams(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, ctl.maxSignalBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.String(http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		c.String(http.StatusBadRequest, "read body: %v", err)
		return
	}

	var msg domain.SignalMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		c.String(http.StatusBadRequest, "invalid payload: %v", err)
		return
	}

	err = ctl.Registry.Relay(sid, role, msg)
	switch {
	case errors.Is(err, app.ErrSessionNotFound):
		c.String(http.StatusNotFound, "session not found")
	case errors.Is(err, app.ErrPeerNotFound):
		c.String(http.StatusNotFound, "peer not found")
	case err != nil:
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("relay failed")
		c.String(http.StatusInternalServerError, "relay failed")
	default:
		c.String(http.StatusOK, "ok")
	}
}
