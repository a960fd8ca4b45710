package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/df07/go-sphere-tracer/internal/config"
	"github.com/df07/go-sphere-tracer/internal/logger"
)

const version = "1.0.0"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "raytracer",
		Short: "Monte Carlo path tracer for sphere scenes",
		Long: `raytracer renders scenes made of spheres with diffuse, metal and glass
materials through a thin-lens camera. Images are written as PPM, PNG or BMP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default: ./"+config.FileName+" or the user config directory)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-file", "", "also write JSON logs to this file (rotated)")

	rootCmd.AddCommand(newRenderCmd(), newScenesCmd(), newServeCmd(), newConfigCmd())
	return rootCmd
}

// setup loads the config file, applies explicitly set flags, validates the
// result and initializes the global logger from it.
func setup(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("path", configPath), zap.String("scene", cfg.Scene.Name))
	return cfg, nil
}

// applyFlags copies every flag the user set on the command line into cfg.
// Flags that are not defined on the command are ignored.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	var err error
	setString := func(name string, dst *string) {
		if err == nil && changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	setInt := func(name string, dst *int) {
		if err == nil && changed(name) {
			*dst, err = flags.GetInt(name)
		}
	}
	setInt64 := func(name string, dst *int64) {
		if err == nil && changed(name) {
			*dst, err = flags.GetInt64(name)
		}
	}
	setFloat := func(name string, dst *float64) {
		if err == nil && changed(name) {
			*dst, err = flags.GetFloat64(name)
		}
	}

	setString("scene", &cfg.Scene.Name)
	setString("scenes-dir", &cfg.Scene.Dir)
	setInt("width", &cfg.Image.Width)
	setFloat("aspect", &cfg.Image.AspectRatio)
	setInt("samples", &cfg.Image.SamplesPerPixel)
	setInt("depth", &cfg.Image.MaxDepth)
	setString("output", &cfg.Image.Output)
	setInt64("seed", &cfg.Render.Seed)
	setInt("workers", &cfg.Render.Workers)
	setInt("tile-size", &cfg.Render.TileSize)
	setString("log-level", &cfg.Logging.Level)
	setString("log-file", &cfg.Logging.LogFile)
	setInt("port", &cfg.Server.Port)

	return err
}
