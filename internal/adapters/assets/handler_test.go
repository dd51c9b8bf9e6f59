package assets

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/phonebridge/internal/config"
)

func newSaveRouter(graphPath string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctl := NewController(NewStore(graphPath), &config.Config{MaxImageBytes: 1 << 20})
	r.POST("/save-image", ctl.HandleSave)
	return r
}

func TestHandleSave(t *testing.T) {
	root := t.TempDir()
	r := newSaveRouter(root)

	body, err := json.Marshal(SaveRequest{
		Filename: "shot.jpg",
		Type:     "image/jpeg",
		Data:     base64.StdEncoding.EncodeToString([]byte("jpeg bytes")),
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/save-image", strings.NewReader(string(body)))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.SavedName, "shot.jpg")

	got, err := os.ReadFile(filepath.Join(root, "assets", resp.SavedName))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), got)
}

func TestHandleSaveNoGraphConfigured(t *testing.T) {
	r := newSaveRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/save-image",
		strings.NewReader(`{"filename":"shot.jpg","data":"aGk="}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "no graph path")
}

func TestHandleSaveMalformedBody(t *testing.T) {
	r := newSaveRouter(t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/save-image", strings.NewReader("{nope"))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
