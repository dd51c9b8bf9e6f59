// Package assets persists images received over the data channel into the
// note graph's asset directory.
package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrNoGraphPath = errors.New("no graph path configured")

// Anything outside this set is replaced before the name touches the
// filesystem.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Store writes images under <graph>/assets. The graph root comes from
// config and may be overridden per request (the plugin knows which graph is
// open).
type Store struct {
	graphPath string
}

func NewStore(graphPath string) *Store {
	return &Store{graphPath: graphPath}
}

// SafeName sanitizes the client-supplied filename and prepends a uniqueness
// token, so retried uploads of the same shot never clobber each other.
func SafeName(filename string) string {
	name := unsafeChars.ReplaceAllString(filename, "_")
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("phone-bridge_%s_%s", uuid.NewString()[:8], name)
}

// Save decodes the base64 payload and writes it into the asset directory of
// graphPath (or the configured default when empty). Returns the stored
// filename.
func (s *Store) Save(filename, data, graphPath string) (string, error) {
	root := graphPath
	if root == "" {
		root = s.graphPath
	}
	if root == "" {
		return "", ErrNoGraphPath
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode image data: %w", err)
	}

	dir := filepath.Join(root, "assets")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}

	safeName := SafeName(filename)
	path := filepath.Join(dir, safeName)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	log.Info().Str("module", "assets").Str("path", path).Int("bytes", len(raw)).Msg("saved image")
	return safeName, nil
}
