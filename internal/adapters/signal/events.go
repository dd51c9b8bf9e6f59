package signal

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/phonebridge/internal/app"
	"github.com/dkeye/phonebridge/internal/domain"
)

// HandleEvents subscribes the caller to its session's event stream. The
// response stays open until the client goes away, the server shuts down, or
// a newer subscription for the same role displaces this one; every frame is
// one JSON object in one SSE message, delivered in relay order.
//
// ctx is the server's root context so shutdown ends every open stream.
func (ctl *Controller) HandleEvents(ctx context.Context, c *gin.Context) {
	sid, role, ok := sessionParams(c)
	if !ok {
		return
	}

	// Register before the headers go out: once the client sees the stream
	// open, its slot is already routable.
	slot := app.NewSlot()
	peer := ctl.Registry.Register(sid, role, slot)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("role", string(role)).Msg("stream opened")

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	// Both sides learn the pairing completed, whichever arrived second.
	if peer != nil {
		if err := peer.TrySend(domain.EventPeerJoined); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("peer-joined notify failed")
		}
		_ = slot.TrySend(domain.EventPeerJoined)
	}

	// The identity guard makes this a no-op if a reconnect already replaced
	// the slot, whatever order the two close paths fire in.
	defer func() {
		ctl.Registry.Unregister(sid, role, slot)
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("role", string(role)).Msg("stream closed")
	}()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-ctx.Done():
			slot.Close()
			return
		case <-clientGone:
			slot.Close()
			return
		case msg, ok := <-slot.Recv():
			if !ok {
				// Displaced by a reconnect; superseded frame already went out.
				return
			}
			if err := sse.Encode(c.Writer, sse.Event{Data: string(msg)}); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("role", string(role)).Msg("stream write failed")
				slot.Close()
				return
			}
			c.Writer.Flush()
		}
	}
}
