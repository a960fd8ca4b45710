package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/df07/go-sphere-tracer/internal/config"
	"github.com/df07/go-sphere-tracer/internal/logger"
	"github.com/df07/go-sphere-tracer/pkg/imageio"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

func newRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to an image file",
		Long: `Render a built-in scene or a YAML scene file. The output format follows the
file extension: .ppm (default), .png or .bmp.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if err := runRender(ctx, cfg, logger.Log); err != nil {
				logger.Error("render failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	flags := renderCmd.Flags()
	flags.StringP("scene", "s", "default", "built-in scene name or path to a .yaml scene file")
	flags.String("scenes-dir", "scenes", "directory searched for scene files given by name")
	flags.IntP("width", "w", 400, "image width in pixels")
	flags.Float64("aspect", 0, "image aspect ratio (0 = the scene camera's)")
	flags.IntP("samples", "n", 100, "samples per pixel")
	flags.IntP("depth", "d", 50, "maximum bounce depth")
	flags.Int64("seed", 42, "random seed for scene generation and sampling")
	flags.Int("workers", 0, "render goroutines (0 = one per CPU)")
	flags.Int("tile-size", 32, "tile edge length in pixels")
	flags.StringP("output", "o", "image.ppm", "output image path (.ppm, .png or .bmp)")

	return renderCmd
}

// runRender renders the configured scene and writes it to the configured output.
func runRender(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// Fail on a bad extension before spending time rendering
	if _, err := imageio.FormatFromPath(cfg.Image.Output); err != nil {
		return err
	}

	sceneObj, err := scene.Create(resolveSceneName(cfg.Scene), cfg.Render.Seed)
	if err != nil {
		return err
	}

	cameraConfig := cfg.ApplyCamera(sceneObj.CameraConfig)
	if err := cameraConfig.Validate(); err != nil {
		return fmt.Errorf("invalid camera: %w", err)
	}
	sceneObj.SetCameraConfig(cameraConfig)

	width, height := cfg.ImageSize(cameraConfig.AspectRatio)
	log.Info("rendering scene",
		zap.String("scene", sceneObj.Name),
		zap.Int("spheres", sceneObj.GetPrimitiveCount()),
		zap.Int("width", width),
		zap.Int("height", height))

	raytracer := renderer.NewRaytracer(sceneObj, width, height)
	raytracer.SetSamplingConfig(cfg.Sampling())
	raytracer.SetParallelConfig(cfg.Parallel())
	raytracer.SetLogger(log)

	img, stats, err := raytracer.RenderPassContext(ctx)
	if err != nil {
		return fmt.Errorf("render interrupted: %w", err)
	}

	if err := imageio.Save(cfg.Image.Output, img); err != nil {
		return fmt.Errorf("failed to write image %s: %w", cfg.Image.Output, err)
	}

	log.Info("image saved",
		zap.String("path", cfg.Image.Output),
		zap.Duration("duration", stats.Duration),
		zap.Int("samples", stats.TotalSamples))
	return nil
}

// resolveSceneName looks up scene files given by bare name in the scenes directory
// when they do not exist relative to the working directory.
func resolveSceneName(sc config.SceneConfig) string {
	if !loaders.IsSceneFile(sc.Name) || sc.Dir == "" || filepath.IsAbs(sc.Name) {
		return sc.Name
	}
	if _, err := os.Stat(sc.Name); err == nil {
		return sc.Name
	}
	candidate := filepath.Join(sc.Dir, sc.Name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return sc.Name
}
