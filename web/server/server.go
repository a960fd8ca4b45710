package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-sphere-tracer/pkg/imageio"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

// Config holds the listen port and the per-request limits
type Config struct {
	Port       int
	MaxWidth   int
	MaxSamples int
	MaxDepth   int
	MaxRenders int    // Renders allowed to run at once; further requests wait
	ScenesDir  string // Directory listed by /api/scenes alongside the built-ins
}

// DefaultConfig returns the limits used when none are configured
func DefaultConfig() Config {
	return Config{
		Port:       8080,
		MaxWidth:   1920,
		MaxSamples: 1000,
		MaxDepth:   100,
		MaxRenders: 2,
		ScenesDir:  "scenes",
	}
}

const (
	minWidth       = 1
	defaultWidth   = 400
	defaultSamples = 10
	defaultDepth   = 50
	defaultSeed    = 42
	shutdownGrace  = 5 * time.Second
)

// Server handles web requests for the raytracer
type Server struct {
	config  Config
	logger  *zap.Logger
	renders chan struct{} // One token per running render
}

// NewServer creates a new web server. A nil logger discards all output.
func NewServer(config Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		config:  config,
		logger:  logger,
		renders: make(chan struct{}, max(config.MaxRenders, 1)),
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string         `json:"scene"`   // Scene ID from /api/scenes
	Width   int            `json:"width"`   // Image width; height follows the camera aspect
	Samples int            `json:"samples"` // Samples per pixel
	Depth   int            `json:"depth"`   // Maximum bounce depth
	Seed    int64          `json:"seed"`
	Format  imageio.Format `json:"format"`
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", "http://localhost"+srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and any YAML scenes in the scenes directory
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.config.ScenesDir)
	if err != nil {
		s.logger.Warn("failed to list scene files", zap.String("dir", s.config.ScenesDir), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list scenes")
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleRender renders one image and returns it encoded in the requested format
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	sceneObj, err := s.createScene(req.Scene, req.Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Each render uses every CPU, so wait for a slot rather than oversubscribe
	select {
	case s.renders <- struct{}{}:
		defer func() { <-s.renders }()
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "render cancelled")
		return
	}

	width, height := imageSize(req.Width, sceneObj.CameraConfig.AspectRatio)
	raytracer := renderer.NewRaytracer(sceneObj, width, height)
	raytracer.SetSamplingConfig(renderer.SamplingConfig{SamplesPerPixel: req.Samples, MaxDepth: req.Depth})
	raytracer.SetParallelConfig(renderer.ParallelConfig{
		TileSize:   renderer.DefaultParallelConfig().TileSize,
		NumWorkers: 0, // Auto-detect
		Seed:       req.Seed,
	})
	raytracer.SetLogger(s.logger.With(zap.String("scene", req.Scene)))

	// Use request context to stop rendering when the client disconnects
	img, stats, err := raytracer.RenderPassContext(r.Context())
	if err != nil {
		s.logger.Info("render aborted", zap.String("scene", req.Scene), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "render cancelled")
		return
	}

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, req.Format); err != nil {
		s.logger.Error("failed to encode image", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to encode image")
		return
	}

	w.Header().Set("Content-Type", req.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Render-Width", strconv.Itoa(width))
	w.Header().Set("X-Render-Height", strconv.Itoa(height))
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Debug("failed to write response", zap.Error(err))
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", min(defaultWidth, s.config.MaxWidth), minWidth, s.config.MaxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", min(defaultSamples, s.config.MaxSamples), 1, s.config.MaxSamples); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", min(defaultDepth, s.config.MaxDepth), 0, s.config.MaxDepth); err != nil {
		return nil, err
	}
	if req.Seed, err = parseInt64Param(query, "seed", defaultSeed); err != nil {
		return nil, err
	}

	format := query.Get("format")
	if format == "" {
		format = string(imageio.FormatPNG)
	}
	if req.Format, err = imageio.ParseFormat(format); err != nil {
		return nil, err
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseInt64Param parses an unbounded 64-bit integer parameter
func parseInt64Param(values url.Values, key string, defaultValue int64) (int64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene creates a built-in scene or a scene file listed by /api/scenes.
// File scenes are addressed by file name and resolved only inside ScenesDir.
func (s *Server) createScene(name string, seed int64) (*scene.Scene, error) {
	sceneObj, err := scene.CreateFromDir(s.config.ScenesDir, name, seed)
	if err == nil || !loaders.IsSceneFile(name) || errors.Is(err, scene.ErrSceneFileName) {
		return sceneObj, err
	}
	// Load errors carry server paths, so the client only gets the scene ID
	s.logger.Warn("failed to load scene file", zap.String("scene", name), zap.Error(err))
	return nil, fmt.Errorf("failed to load scene file %q", name)
}

// imageSize derives the height from the camera aspect ratio
func imageSize(width int, aspectRatio float64) (int, int) {
	if aspectRatio <= 0 {
		return width, width
	}
	return width, max(int(float64(width)/aspectRatio), 1)
}

// handleSceneConfig returns the default render settings for a scene with the server limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName, defaultSeed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	config := sceneObj.SamplingConfig
	camera := sceneObj.CameraConfig
	response := map[string]interface{}{
		"scene":      sceneName,
		"primitives": sceneObj.GetPrimitiveCount(),
		"camera": map[string]interface{}{
			"lookFrom":      [3]float64{camera.Center.X, camera.Center.Y, camera.Center.Z},
			"lookAt":        [3]float64{camera.LookAt.X, camera.LookAt.Y, camera.LookAt.Z},
			"vfov":          camera.VFov,
			"aspectRatio":   camera.AspectRatio,
			"aperture":      camera.Aperture,
			"focusDistance": camera.FocusDistance,
		},
		"defaults": map[string]interface{}{
			"width":           min(defaultWidth, s.config.MaxWidth),
			"samplesPerPixel": min(config.SamplesPerPixel, s.config.MaxSamples),
			"maxDepth":        min(config.MaxDepth, s.config.MaxDepth),
		},
		"limits": map[string]interface{}{
			"width": map[string]int{
				"min": minWidth,
				"max": s.config.MaxWidth,
			},
			"samples": map[string]int{
				"min": 1,
				"max": s.config.MaxSamples,
			},
			"depth": map[string]int{
				"min": 0,
				"max": s.config.MaxDepth,
			},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
