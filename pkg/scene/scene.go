// Package scene defines the parsed scene-graph representation consumed by
// the model flattening pipeline. Importers (see pkg/gltfscene) produce these
// structures; the pipeline itself never touches a file format.
package scene

import (
	"fmt"

	"github.com/forgelight/modelforge/pkg/math"
)

// TextureKind identifies a semantic texture channel on a material.
type TextureKind int

const (
	TextureAlbedo TextureKind = iota
	TextureNormal
	TextureAmbientOcclusion
	TextureDisplacement

	textureKindCount
)

// String returns a human-readable channel name.
func (k TextureKind) String() string {
	switch k {
	case TextureAlbedo:
		return "albedo"
	case TextureNormal:
		return "normal"
	case TextureAmbientOcclusion:
		return "ambient_occlusion"
	case TextureDisplacement:
		return "displacement"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// VertexWeight ties one vertex to the influence a single bone has over it.
type VertexWeight struct {
	VertexID uint32
	Weight   float32
}

// Bone is a skeletal joint referenced by a mesh. OffsetMatrix is the inverse
// bind pose, already converted to the engine's column-major convention by
// the importer.
type Bone struct {
	Name         string
	OffsetMatrix math.Mat4
	Weights      []VertexWeight
}

// RawMesh is one mesh as delivered by an importer: per-vertex attribute
// arrays plus pre-triangulated faces. TexCoords is nil when the source
// supplies no UV channel; all other attribute arrays are expected to be
// present and vertex-count long.
type RawMesh struct {
	Name       string
	Positions  []math.Vec3
	TexCoords  []math.Vec2
	Normals    []math.Vec3
	Tangents   []math.Vec3
	Bitangents []math.Vec3
	Faces      [][3]uint32
	Bones      []Bone
	MaterialID int // index into Scene.Materials, -1 when none
}

// VertexCount returns the number of vertices in the mesh.
func (m *RawMesh) VertexCount() int {
	return len(m.Positions)
}

// TextureRef is an unresolved texture reference. Path is relative to the
// model's source directory.
type TextureRef struct {
	Path string
}

// Material holds the texture references an importer found for each channel.
// A channel may carry any number of references; consumers decide how many
// they support.
type Material struct {
	Name     string
	channels [textureKindCount][]TextureRef
}

// AddTexture appends a texture reference to a channel.
func (m *Material) AddTexture(kind TextureKind, ref TextureRef) {
	m.channels[kind] = append(m.channels[kind], ref)
}

// TextureCount returns the number of textures bound to a channel.
func (m *Material) TextureCount(kind TextureKind) int {
	return len(m.channels[kind])
}

// Texture returns the i-th texture reference of a channel.
func (m *Material) Texture(kind TextureKind, i int) (TextureRef, bool) {
	if i < 0 || i >= len(m.channels[kind]) {
		return TextureRef{}, false
	}
	return m.channels[kind][i], true
}

// Node is one element of the scene hierarchy. Transform is the node's local
// transform in the engine's matrix convention. MeshIDs index into
// Scene.Meshes.
type Node struct {
	Name      string
	Transform math.Mat4
	MeshIDs   []int
	Children  []*Node
}

// Scene is a complete parsed scene graph.
type Scene struct {
	Name      string
	RootNode  *Node
	Meshes    []*RawMesh
	Materials []*Material
}
