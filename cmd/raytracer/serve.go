package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/df07/go-sphere-tracer/internal/config"
	"github.com/df07/go-sphere-tracer/internal/logger"
	"github.com/df07/go-sphere-tracer/web/server"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return server.NewServer(serverConfig(cfg), logger.Log).Start(ctx)
		},
	}
	serveCmd.Flags().IntP("port", "p", 8080, "port to serve on")
	serveCmd.Flags().String("scenes-dir", "scenes", "directory listed by /api/scenes")
	return serveCmd
}

func serverConfig(cfg *config.Config) server.Config {
	return server.Config{
		Port:       cfg.Server.Port,
		MaxWidth:   cfg.Server.MaxWidth,
		MaxSamples: cfg.Server.MaxSamples,
		MaxDepth:   cfg.Server.MaxDepth,
		MaxRenders: cfg.Server.MaxRenders,
		ScenesDir:  cfg.Scene.Dir,
	}
}
