package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/phonebridge/internal/adapters/assets"
	router "github.com/dkeye/phonebridge/internal/adapters/http"
	sig "github.com/dkeye/phonebridge/internal/adapters/signal"
	"github.com/dkeye/phonebridge/internal/app"
	"github.com/dkeye/phonebridge/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	reg := app.NewRegistry()
	sigCtl := sig.NewController(reg, cfg)
	astCtl := assets.NewController(assets.NewStore(cfg.GraphPath), cfg)

	r := router.SetupRouter(ctx, cfg, sigCtl, astCtl)

	var certFile, keyFile string
	if cfg.TLS {
		certFile = filepath.Join(cfg.SSLDir, "cert.pem")
		keyFile = filepath.Join(cfg.SSLDir, "key.pem")
		if _, err := os.Stat(certFile); err != nil {
			log.Error().Str("dir", cfg.SSLDir).Msg("SSL certs not found; generate with:")
			log.Fatal().Msg(`  openssl req -x509 -newkey rsa:2048 -keyout .ssl/key.pem -out .ssl/cert.pem -days 365 -nodes -subj "/CN=phone-bridge"`)
		}
	}

	// Public listener for the phone, loopback listener for the plugin. Both
	// serve the same routes; the split exists so the plugin can talk plain
	// HTTP on localhost while the phone gets the secure context its camera
	// APIs require.
	public := &http.Server{Addr: fmt.Sprintf("0.0.0.0:%d", cfg.Port), Handler: r}
	local := &http.Server{Addr: fmt.Sprintf("127.0.0.1:%d", cfg.LocalPort), Handler: r}

	go func() {
		var err error
		if cfg.TLS {
			log.Info().Str("addr", public.Addr).Msg("phone bridge listening (https)")
			err = public.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Info().Str("addr", public.Addr).Msg("phone bridge listening (http)")
			err = public.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("public server error")
		}
	}()

	go func() {
		log.Info().Str("addr", local.Addr).Msg("plugin endpoint listening")
		if err := local.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("local server error")
		}
	}()

	logNetworkAddrs(cfg)

	if cfg.GraphPath == "" {
		log.Warn().Msg("no graph path configured, image saving disabled")
	} else {
		log.Info().Str("graph", cfg.GraphPath).Msg("saving images to graph")
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := public.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("public server forced to shutdown")
	}
	if err := local.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("local server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// logNetworkAddrs prints the LAN URLs the phone can reach, for users typing
// the address by hand instead of scanning.
func logNetworkAddrs(cfg *config.Config) {
	scheme := "http"
	if cfg.TLS {
		scheme = "https"
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() || ipNet.IP.To4() == nil {
			continue
		}
		log.Info().Str("url", fmt.Sprintf("%s://%s:%d", scheme, ipNet.IP, cfg.Port)).Msg("reachable at")
	}
}
