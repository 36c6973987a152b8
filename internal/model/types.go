// Package model flattens parsed scene graphs into render-ready meshes:
// contiguous per-vertex attribute buffers, linear index lists, and a bounded
// per-vertex set of skeletal bone influences.
package model

import (
	"github.com/forgelight/modelforge/pkg/math"
)

// MaxBoneInfluences is the number of bone influence slots per vertex.
const MaxBoneInfluences = 4

// sentinelBoneID marks an empty influence slot.
const sentinelBoneID = -1

// BoneData identifies a bone within a model. IDs are dense, 0-based, and
// assigned in first-encounter order across all meshes of the model.
type BoneData struct {
	ID              int
	InverseBindPose math.Mat4
}

// VertexBoneData holds up to MaxBoneInfluences (bone ID, weight) pairs for
// one vertex. Empty slots carry the sentinel ID -1 and zero weight.
//
// Weights are stored exactly as the importer delivered them; they are not
// normalized to sum to 1. Skinning code must either normalize at evaluation
// time or require pre-normalized input.
type VertexBoneData struct {
	BoneIDs [MaxBoneInfluences]int32
	Weights [MaxBoneInfluences]float32
}

func (v *VertexBoneData) reset() {
	for i := range v.BoneIDs {
		v.BoneIDs[i] = sentinelBoneID
		v.Weights[i] = 0
	}
}

// Count returns the number of populated influence slots.
func (v *VertexBoneData) Count() int {
	n := 0
	for _, id := range v.BoneIDs {
		if id != sentinelBoneID {
			n++
		}
	}
	return n
}

// Mesh is one flattened mesh: parallel attribute slices (one entry per
// vertex), a linear index list (3 entries per triangle), optional per-vertex
// bone influences, and the resolved material.
type Mesh struct {
	Name string

	Positions  []math.Vec3
	TexCoords  []math.Vec2
	Normals    []math.Vec3
	Tangents   []math.Vec3
	Bitangents []math.Vec3
	Indices    []uint32

	// BoneWeights is nil when the source mesh had no bones.
	BoneWeights []VertexBoneData

	Material Material
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
