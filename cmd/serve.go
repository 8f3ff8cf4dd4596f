// The serve command runs the HTTP gateway: cache sweeper start → listen →
// on signal, drain HTTP → stop the sweeper within the configured bound.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/reportgate/config"
	"github.com/gaurav-prasanna/reportgate/core"
	"github.com/gaurav-prasanna/reportgate/core/cache"
	"github.com/gaurav-prasanna/reportgate/core/normalize"
	"github.com/gaurav-prasanna/reportgate/core/render"
	"github.com/gaurav-prasanna/reportgate/logger"
	"github.com/gaurav-prasanna/reportgate/server"
)

var (
	flagHost string
	flagPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the report gateway HTTP server",
	Long: `Serve starts the HTTP gateway used by the report designer.

Examples:
  reportgate serve
  reportgate serve --port 9000 --config reportgate.yaml
  REPORTGATE_CACHE_TTL=30m reportgate serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&flagHost, "host", "", "Listen host (overrides server.host)")
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "Listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	overrides := make(map[string]any)
	if cmd.Flags().Changed("host") {
		overrides["server.host"] = flagHost
	}
	if cmd.Flags().Changed("port") {
		overrides["server.port"] = flagPort
	}
	cfg, err := loadConfig(cmd, overrides)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, log)
}

// serve runs the gateway until ctx is done.
func serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cacheMetrics, err := cache.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("registering cache metrics: %w", err)
	}
	httpMetrics, err := server.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("registering http metrics: %w", err)
	}

	artifacts := cache.New(
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithSweepInterval(cfg.Cache.SweepInterval),
		cache.WithLogger(log.With("component", "cache")),
		cache.WithMetrics(cacheMetrics),
	)
	if err := artifacts.Start(ctx); err != nil {
		return err
	}

	gw := newGateway(cfg, log)
	srv := server.New(normalize.New(log.With("component", "normalize")), gw, artifacts,
		server.WithAPIPrefix(cfg.Server.APIPrefix),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithLogger(log.With("component", "http")),
		server.WithMetrics(httpMetrics, reg),
	)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", httpServer.Addr, "prefix", cfg.Server.APIPrefix)
		errCh <- httpServer.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), cfg.Cache.StopTimeout)
	defer cancelStop()
	if err := artifacts.Stop(stopCtx); err != nil {
		log.Warn("cache sweeper did not stop in time", "error", err)
	}

	log.Info("stopped")
	return serveErr
}

// newGateway picks the remote engine when configured, else the built-in ones.
func newGateway(cfg *config.Config, log logger.Logger) core.Gateway {
	if cfg.Render.RemoteURL != "" {
		log.Info("using remote render engine", "url", cfg.Render.RemoteURL)
		return render.NewRemoteGateway(cfg.Render.RemoteURL, cfg.Render.RemoteTimeout)
	}
	return render.NewLocalGateway()
}
