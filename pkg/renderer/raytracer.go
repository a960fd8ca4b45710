package renderer

import (
	"context"
	"image"
	"image/color"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
)

// ShadowAcneEpsilon is the minimum ray parameter accepted for a hit.
// It skips self-intersections at the previous hit point.
const ShadowAcneEpsilon = 0.001

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// ParallelConfig controls how a pass is split across goroutines
type ParallelConfig struct {
	TileSize   int   // Size of each square tile in pixels
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed; a fixed seed gives identical images
}

// DefaultParallelConfig returns sensible default values
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		TileSize:   32,
		NumWorkers: 0,
		Seed:       42,
	}
}

// Scene is the read-only view of a scene needed for rendering
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
	GetBackgroundColors() (topColor, bottomColor core.Vec3)
}

// Raytracer handles the rendering process
type Raytracer struct {
	scene    Scene
	width    int
	height   int
	config   SamplingConfig
	parallel ParallelConfig
	logger   *zap.Logger
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, width, height int) *Raytracer {
	return &Raytracer{
		scene:    scene,
		width:    width,
		height:   height,
		config:   DefaultSamplingConfig(),
		parallel: DefaultParallelConfig(),
		logger:   zap.NewNop(),
	}
}

// SetSamplingConfig updates the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config SamplingConfig) {
	rt.config = config
}

// SetParallelConfig updates the tiling and worker configuration
func (rt *Raytracer) SetParallelConfig(config ParallelConfig) {
	rt.parallel = config
}

// SetLogger sets the logger used for render progress; nil disables logging
func (rt *Raytracer) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rt.logger = logger
}

// backgroundGradient returns the sky color for a ray that escaped the scene
func (rt *Raytracer) backgroundGradient(r core.Ray) core.Vec3 {
	topColor, bottomColor := rt.scene.GetBackgroundColors()

	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Lerp(topColor, t)
}

// RayColor estimates the radiance arriving along r by following scattered rays.
// depth counts bounces taken so far; paths deeper than MaxDepth contribute black.
func (rt *Raytracer) RayColor(r core.Ray, depth int, sampler core.Sampler) core.Vec3 {
	if depth > rt.config.MaxDepth {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	hit, isHit := rt.scene.GetWorld().Hit(r, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return rt.backgroundGradient(r)
	}

	if hit.Material == nil {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	scatter, didScatter := hit.Material.Scatter(r, *hit, sampler)
	if !didScatter {
		return core.Vec3{X: 0, Y: 0, Z: 0} // Material absorbed the ray
	}

	return scatter.Attenuation.MultiplyVec(rt.RayColor(scatter.Scattered, depth+1, sampler))
}

// samplePixel takes the configured number of jittered samples for image pixel (x, y).
// Row y=0 is the top of the image, which maps to t near 1 on the camera.
func (rt *Raytracer) samplePixel(camera *Camera, x, y int, ps *PixelStats, sampler core.Sampler) {
	j := rt.height - 1 - y
	sDenom := float64(max(rt.width-1, 1))
	tDenom := float64(max(rt.height-1, 1))

	for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
		s := (float64(x) + sampler.Get1D()) / sDenom
		t := (float64(j) + sampler.Get1D()) / tDenom

		ray := camera.GetRay(s, t, sampler)
		ps.AddSample(rt.RayColor(ray, 0, sampler))
	}
}

// RenderBounds renders pixels within the specified bounds into the shared pixel stats
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler) RenderStats {
	camera := rt.scene.GetCamera()
	stats := RenderStats{}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ps := &pixelStats[y][x]
			before := ps.SampleCount
			rt.samplePixel(camera, x, y, ps, sampler)
			stats.TotalPixels++
			stats.TotalSamples += ps.SampleCount - before
		}
	}

	return stats
}

// tileSampler returns a fresh sampler owned by one tile
func (rt *Raytracer) tileSampler(tile *Tile) core.Sampler {
	return core.NewSeededSampler(tile.Seed(rt.parallel.Seed))
}

// ColorToRGBA converts an accumulated color sum to 8-bit channels: divide by the
// sample count, apply gamma 2 (square root), clamp to [0, 0.999] and scale by 256.
func ColorToRGBA(colorSum core.Vec3, samples int) color.RGBA {
	scale := 1.0
	if samples > 0 {
		scale = 1.0 / float64(samples)
	}
	return color.RGBA{
		R: toneMapChannel(colorSum.X * scale),
		G: toneMapChannel(colorSum.Y * scale),
		B: toneMapChannel(colorSum.Z * scale),
		A: 255,
	}
}

func toneMapChannel(c float64) uint8 {
	if math.IsNaN(c) || c <= 0 {
		return 0
	}
	c = math.Min(math.Sqrt(c), 0.999)
	return uint8(256 * c)
}

// RenderPass renders the whole image in parallel tiles and returns it with statistics
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	img, stats, _ := rt.RenderPassContext(context.Background())
	return img, stats
}

// RenderPassContext is RenderPass with cancellation. Tiles not yet started when
// ctx is done are skipped and ctx.Err() is returned with a nil image.
func (rt *Raytracer) RenderPassContext(ctx context.Context) (*image.RGBA, RenderStats, error) {
	startTime := time.Now()

	pixelStats := make([][]PixelStats, rt.height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, rt.width)
	}

	tiles := NewTileGrid(rt.width, rt.height, rt.parallel.TileSize)
	pool := NewWorkerPool(rt, len(tiles), rt.parallel.NumWorkers)

	rt.logger.Info("render started",
		zap.Int("width", rt.width),
		zap.Int("height", rt.height),
		zap.Int("samplesPerPixel", rt.config.SamplesPerPixel),
		zap.Int("maxDepth", rt.config.MaxDepth),
		zap.Int("tiles", len(tiles)),
		zap.Int("workers", pool.GetNumWorkers()))

	pool.Start(ctx)
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i, PixelStats: pixelStats})
	}

	stats := RenderStats{Workers: pool.GetNumWorkers()}
	var renderErr error
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Err != nil {
			renderErr = result.Err
			continue
		}
		stats.Merge(result.Stats)
	}
	pool.Stop()

	stats.Duration = time.Since(startTime)
	stats.finalize()

	if renderErr != nil {
		rt.logger.Warn("render cancelled",
			zap.Error(renderErr),
			zap.Int("tilesRendered", stats.TilesRendered),
			zap.Int("tiles", len(tiles)))
		return nil, stats, renderErr
	}

	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	for y := 0; y < rt.height; y++ {
		for x := 0; x < rt.width; x++ {
			ps := &pixelStats[y][x]
			img.SetRGBA(x, y, ColorToRGBA(ps.ColorAccum, ps.SampleCount))
		}
	}

	rt.logger.Info("render completed",
		zap.Duration("duration", stats.Duration),
		zap.Int("pixels", stats.TotalPixels),
		zap.Int("samples", stats.TotalSamples),
		zap.Float64("averageSamples", stats.AverageSamples))

	return img, stats, nil
}
