package http

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/phonebridge/internal/adapters/assets"
	"github.com/dkeye/phonebridge/internal/adapters/signal"
	"github.com/dkeye/phonebridge/internal/config"
)

// corsMiddleware opens the API to the phone, which calls cross-origin from
// the sender page.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, sig *signal.Controller, ast *assets.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/events", func(c *gin.Context) {
		sig.HandleEvents(ctx, c)
	})
	r.POST("/signal", sig.HandleSignal)
	r.POST("/save-image", ast.HandleSave)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// The phone opens the bare scanned URL; everything unrouted gets the
	// sender page.
	senderPage := filepath.Join(cfg.SenderPath, "index.html")
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Status(http.StatusNotFound)
			return
		}
		c.Header("Cache-Control", "no-cache")
		c.File(senderPage)
	})

	log.Info().Str("module", "adapters.http").Str("sender", senderPage).Msg("router setup")
	return r
}
