package scene

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/loaders"
)

// ErrUnknownScene is returned by Create for names that are neither built in nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// ErrSceneFileName is returned by CreateFromDir for scene file IDs that are not bare file names
var ErrSceneFileName = errors.New("scene file ID must be a file name in the scenes directory")

// Grid size used for the built-in sphere-grid scene
const defaultGridSize = 10

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Unique identifier, accepted by CreateFromDir
	Name        string `json:"name"`               // Scene name
	DisplayName string `json:"displayName"`        // UI display name
	Description string `json:"description"`        // Optional description
	Group       string `json:"group"`              // Grouping category
	Type        string `json:"type"`               // "builtin" or "file"
	FilePath    string `json:"-"`                  // Path to the YAML file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete scene listing
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const builtinGroup = "Built-in Scenes"

var builtinScenes = []SceneInfo{
	{
		ID:          "default",
		Name:        "Random Spheres",
		DisplayName: "Random Spheres",
		Description: "Field of small random spheres around glass, diffuse and metal spheres",
		Group:       builtinGroup,
		Type:        "builtin",
	},
	{
		ID:          "three-spheres",
		Name:        "Three Spheres",
		DisplayName: "Three Spheres",
		Description: "Hollow glass, diffuse and gold spheres on a ground sphere",
		Group:       builtinGroup,
		Type:        "builtin",
	},
	{
		ID:          "sphere-grid",
		Name:        "Sphere Grid",
		DisplayName: "Sphere Grid",
		Description: "10x10 grid of rainbow-colored metallic spheres",
		Group:       builtinGroup,
		Type:        "builtin",
	},
	{
		ID:          "empty",
		Name:        "Empty",
		DisplayName: "Empty",
		Description: "Sky gradient only",
		Group:       builtinGroup,
		Type:        "builtin",
	},
}

// BuiltinScenes returns the metadata of every built-in scene
func BuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, len(builtinScenes))
	copy(scenes, builtinScenes)
	return scenes
}

// Names returns the IDs of the built-in scenes
func Names() []string {
	names := make([]string, len(builtinScenes))
	for i, info := range builtinScenes {
		names[i] = info.ID
	}
	return names
}

// Create builds a scene by name. Names ending in .yaml or .yml are loaded from
// disk; the seed only affects randomly generated scenes.
func Create(name string, seed int64) (*Scene, error) {
	switch name {
	case "default", "":
		return NewDefaultScene(seed), nil
	case "three-spheres":
		return NewThreeSpheresScene(), nil
	case "sphere-grid":
		return NewSphereGridScene(defaultGridSize), nil
	case "empty":
		return NewEmptyScene(), nil
	}

	if loaders.IsSceneFile(name) {
		return NewYAMLScene(name)
	}

	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}

// CreateFromDir builds a built-in scene, or the scene file whose ID (its base
// file name) is name from dir. Paths are never followed out of dir.
func CreateFromDir(dir, name string, seed int64) (*Scene, error) {
	if !loaders.IsSceneFile(name) {
		return Create(name, seed)
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrSceneFileName, name)
	}
	return NewYAMLScene(filepath.Join(dir, name))
}

// ListSceneFiles scans dir for YAML scene files. A missing directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		sceneInfo, err := ParseSceneFileMetadata(filePath)
		if err != nil {
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneFileMetadata extracts metadata from header comments of a scene file:
//
//	# Scene: Glass Pair
//	# Description: Two spheres sharing one glass material
//	# Group: Examples
func ParseSceneFileMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	sceneInfo := SceneInfo{
		ID:          filename,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Scene Files",
		Type:        "file",
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return sceneInfo, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Stop parsing at first non-comment line
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		switch {
		case strings.HasPrefix(content, "Scene:"):
			sceneInfo.Name = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Description:"):
			sceneInfo.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		case strings.HasPrefix(content, "Group:"):
			sceneInfo.Group = strings.TrimSpace(strings.TrimPrefix(content, "Group:"))
		}
	}
	sceneInfo.DisplayName = sceneInfo.Name

	return sceneInfo, scanner.Err()
}

// ListAllScenes returns built-in scenes and the scene files in dir, grouped by category
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	fileScenes, err := ListSceneFiles(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	allScenes := append(BuiltinScenes(), fileScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtinGroup,
		Scenes: groupMap[builtinGroup],
	})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-pair" -> "Glass Pair"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
