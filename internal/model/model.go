package model

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/forgelight/modelforge/internal/assets"
	"github.com/forgelight/modelforge/internal/logger"
	"github.com/forgelight/modelforge/pkg/gltfscene"
	"github.com/forgelight/modelforge/pkg/math"
	"github.com/forgelight/modelforge/pkg/scene"
)

// Model owns the flattened meshes of one imported scene plus the bone
// registry shared by all of them. A model is populated by a single Load (or
// LoadScene) call and is immutable afterwards.
type Model struct {
	Meshes []Mesh

	// GlobalInverseTransform is the inverse of the scene root's transform,
	// captured once per import.
	GlobalInverseTransform math.Mat4

	boneDataMap map[string]BoneData
	boneCount   int

	path      string
	directory string
	name      string
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		GlobalInverseTransform: math.Identity(),
		boneDataMap:            make(map[string]BoneData),
	}
}

// NewModelFromMeshes creates a model from an explicit mesh list.
func NewModelFromMeshes(meshes []Mesh) *Model {
	m := NewModel()
	m.Meshes = meshes
	return m
}

// Load parses the scene file at path and flattens it into the model.
// On failure the model is left exactly as it was: no partial mesh list is
// retained. mgr may be nil, in which case material textures stay unresolved.
func (m *Model) Load(mgr *assets.Manager, path string) error {
	sc, err := gltfscene.Load(path)
	if err != nil {
		logger.Error("failed to load model",
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("loading model %s: %w", path, err)
	}
	return m.LoadScene(mgr, sc, path)
}

// LoadScene flattens an already parsed scene into the model. path is the
// scene's source location; texture references resolve relative to its
// directory.
func (m *Model) LoadScene(mgr *assets.Manager, sc *scene.Scene, path string) error {
	if sc == nil || sc.RootNode == nil {
		return fmt.Errorf("loading model %s: scene has no root node", path)
	}

	st := m.newImportState(sc, mgr, filepath.Dir(path))
	st.processNode(sc.RootNode)
	st.finalize(m)

	m.path = path
	m.directory = filepath.Dir(path)
	m.name = filepath.Base(path)

	logger.Debug("model loaded",
		zap.String("path", path),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("bones", m.boneCount))
	return nil
}

// BoneData returns the registry entry for a bone name.
func (m *Model) BoneData(name string) (BoneData, bool) {
	data, ok := m.boneDataMap[name]
	return data, ok
}

// BoneCount returns the number of distinct bones across all meshes.
func (m *Model) BoneCount() int {
	return m.boneCount
}

// Bones returns a copy of the bone registry.
func (m *Model) Bones() map[string]BoneData {
	out := make(map[string]BoneData, len(m.boneDataMap))
	for name, data := range m.boneDataMap {
		out[name] = data
	}
	return out
}

// Name returns the model's file name.
func (m *Model) Name() string { return m.name }

// Path returns the model's source path.
func (m *Model) Path() string { return m.path }

// Directory returns the directory textures resolve against.
func (m *Model) Directory() string { return m.directory }
