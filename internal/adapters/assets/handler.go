package assets

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/phonebridge/internal/config"
)

type SaveRequest struct {
	Filename  string `json:"filename"`
	Type      string `json:"type"`
	Data      string `json:"data"`
	GraphPath string `json:"graphPath"`
}

type SaveResponse struct {
	SavedName string `json:"savedName"`
}

type Controller struct {
	Store *Store

	maxImageBytes int64
}

func NewController(store *Store, cfg *config.Config) *Controller {
	return &Controller{Store: store, maxImageBytes: cfg.MaxImageBytes}
}

// HandleSave is the plugin-facing persistence endpoint. Failures come back
// as {"error": ...} so the plugin can surface them in its modal.
func (ctl *Controller) HandleSave(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctl.maxImageBytes)

	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	savedName, err := ctl.Store.Save(req.Filename, req.Data, req.GraphPath)
	if err != nil {
		log.Error().Err(err).Str("module", "assets").Msg("save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SaveResponse{SavedName: savedName})
}
