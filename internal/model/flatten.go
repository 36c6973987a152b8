package model

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/forgelight/modelforge/internal/assets"
	"github.com/forgelight/modelforge/internal/logger"
	"github.com/forgelight/modelforge/pkg/math"
	"github.com/forgelight/modelforge/pkg/scene"
)

// importState owns every piece of mutable state for one import call: the
// accumulated mesh list, the bone registry, and the global inverse
// transform. Nothing is installed into the model until finalize, so a failed
// or aborted import leaves the model untouched. Separate imports never share
// an importState, which is what makes concurrent imports of different models
// safe without locking.
type importState struct {
	scene     *scene.Scene
	assets    *assets.Manager
	directory string

	meshes      []Mesh
	boneDataMap map[string]BoneData
	boneCount   int

	globalInverse    math.Mat4
	globalInverseSet bool
}

func (m *Model) newImportState(sc *scene.Scene, mgr *assets.Manager, directory string) *importState {
	st := &importState{
		scene:       sc,
		assets:      mgr,
		directory:   directory,
		boneDataMap: make(map[string]BoneData, len(m.boneDataMap)),
		boneCount:   m.boneCount,
	}
	for name, data := range m.boneDataMap {
		st.boneDataMap[name] = data
	}
	return st
}

func (st *importState) finalize(m *Model) {
	m.Meshes = append(m.Meshes, st.meshes...)
	m.boneDataMap = st.boneDataMap
	m.boneCount = st.boneCount
	if st.globalInverseSet {
		m.GlobalInverseTransform = st.globalInverse
	}
}

// processNode visits a node's meshes in array order, then recurses into its
// children in array order. Purely structural; all attribute work happens per
// mesh.
func (st *importState) processNode(node *scene.Node) {
	if node == nil {
		return
	}
	for _, meshID := range node.MeshIDs {
		if meshID < 0 || meshID >= len(st.scene.Meshes) {
			continue
		}
		st.processMesh(st.scene.Meshes[meshID])
	}
	for _, child := range node.Children {
		st.processNode(child)
	}
}

// processMesh flattens one raw mesh and appends it to the import's mesh
// list.
func (st *importState) processMesh(raw *scene.RawMesh) {
	var mesh Mesh
	mesh.Name = raw.Name

	st.extractAttributes(raw, &mesh)
	mesh.BoneWeights = st.aggregateBoneInfluences(raw)
	mesh.Indices = buildIndexList(raw)
	st.resolveMaterial(raw, &mesh)

	st.meshes = append(st.meshes, mesh)
}

// extractAttributes copies the per-vertex attributes into parallel slices,
// one entry per source vertex. UV defaults to (0,0) when the source has no
// texture-coordinate channel. The scene root's inverse transform is captured
// on the first mesh processed.
func (st *importState) extractAttributes(raw *scene.RawMesh, mesh *Mesh) {
	n := raw.VertexCount()

	mesh.Positions = make([]math.Vec3, 0, n)
	mesh.TexCoords = make([]math.Vec2, 0, n)
	mesh.Normals = make([]math.Vec3, 0, n)
	mesh.Tangents = make([]math.Vec3, 0, n)
	mesh.Bitangents = make([]math.Vec3, 0, n)

	for i := 0; i < n; i++ {
		var uv math.Vec2
		if raw.TexCoords != nil && i < len(raw.TexCoords) {
			uv = raw.TexCoords[i]
		}

		mesh.Positions = append(mesh.Positions, raw.Positions[i])
		mesh.TexCoords = append(mesh.TexCoords, uv)
		mesh.Normals = append(mesh.Normals, raw.Normals[i])
		mesh.Tangents = append(mesh.Tangents, raw.Tangents[i])
		mesh.Bitangents = append(mesh.Bitangents, raw.Bitangents[i])
	}

	if !st.globalInverseSet {
		st.globalInverse = st.scene.RootNode.Transform.Inverse()
		st.globalInverseSet = true
	}
}

// aggregateBoneInfluences assigns stable bone IDs and merges each bone's
// (vertex, weight) list into the per-vertex influence slots. Returns nil
// when the mesh has no bones.
func (st *importState) aggregateBoneInfluences(raw *scene.RawMesh) []VertexBoneData {
	if len(raw.Bones) == 0 {
		return nil
	}

	vertexCount := raw.VertexCount()
	weights := make([]VertexBoneData, vertexCount)
	for i := range weights {
		weights[i].reset()
	}

	for _, bone := range raw.Bones {
		data, seen := st.boneDataMap[bone.Name]
		if !seen {
			data = BoneData{
				ID:              st.boneCount,
				InverseBindPose: bone.OffsetMatrix,
			}
			st.boneDataMap[bone.Name] = data
			st.boneCount++
		}
		// A re-sighted bone keeps its first captured inverse bind pose,
		// even if this mesh supplies a different matrix.

		for _, w := range bone.Weights {
			if int(w.VertexID) >= vertexCount {
				panic(fmt.Sprintf(
					"model: bone %q weight references vertex %d, mesh has only %d vertices",
					bone.Name, w.VertexID, vertexCount))
			}
			placeBoneInfluence(&weights[w.VertexID], w.VertexID, int32(data.ID), w.Weight)
		}
	}

	return weights
}

// placeBoneInfluence puts (boneID, weight) into the first empty slot of the
// vertex. When every slot is taken, the slot holding the lowest weight (the
// lowest index wins among equal minima) is replaced if the new weight is
// strictly greater; otherwise the new influence is dropped.
//
// This greedy merge keeps the strongest influences seen so far but is only
// an approximation of a true top-K selection: it is exact when weights
// arrive in non-decreasing order, while interleaved arrival can retain a
// suboptimal set.
func placeBoneInfluence(v *VertexBoneData, vertexID uint32, boneID int32, weight float32) {
	for i := range v.BoneIDs {
		if v.BoneIDs[i] == sentinelBoneID {
			v.BoneIDs[i] = boneID
			v.Weights[i] = weight
			return
		}
	}

	lowest := 0
	for i := 1; i < MaxBoneInfluences; i++ {
		if v.Weights[i] < v.Weights[lowest] {
			lowest = i
		}
	}

	if weight > v.Weights[lowest] {
		logger.Warn("vertex bone capacity hit, replacing weakest influence",
			zap.Uint32("vertex", vertexID),
			zap.Int32("evictedBone", v.BoneIDs[lowest]),
			zap.Float32("evictedWeight", v.Weights[lowest]),
			zap.Int32("bone", boneID),
			zap.Float32("weight", weight))
		v.BoneIDs[lowest] = boneID
		v.Weights[lowest] = weight
		return
	}

	logger.Warn("vertex bone capacity hit, dropping least significant influence",
		zap.Uint32("vertex", vertexID),
		zap.Int32("bone", boneID),
		zap.Float32("weight", weight))
}

// buildIndexList flattens the face list into one linear index sequence, each
// face's indices in their given order. Faces arrive pre-triangulated from
// the importer.
func buildIndexList(raw *scene.RawMesh) []uint32 {
	indices := make([]uint32, 0, len(raw.Faces)*3)
	for _, face := range raw.Faces {
		indices = append(indices, face[0], face[1], face[2])
	}
	return indices
}

// resolveMaterial requests async texture loads for every channel the mesh's
// material binds. Only colour data is flagged sRGB; non-colour data must not
// be gamma corrected by the renderer.
func (st *importState) resolveMaterial(raw *scene.RawMesh, mesh *Mesh) {
	if raw.MaterialID < 0 || raw.MaterialID >= len(st.scene.Materials) {
		return
	}
	mat := st.scene.Materials[raw.MaterialID]

	mesh.Material.SetAlbedoMap(st.resolveTexture(mat, scene.TextureAlbedo, true))
	mesh.Material.SetNormalMap(st.resolveTexture(mat, scene.TextureNormal, false))
	mesh.Material.SetAmbientOcclusionMap(st.resolveTexture(mat, scene.TextureAmbientOcclusion, false))
	mesh.Material.SetDisplacementMap(st.resolveTexture(mat, scene.TextureDisplacement, false))
}

// resolveTexture resolves one texture channel to an async handle, or nil
// when the channel is absent. Channels with more than one bound texture use
// only the first; the standard shaders have no notion of blending several
// textures of the same kind.
func (st *importState) resolveTexture(mat *scene.Material, kind scene.TextureKind, srgb bool) *assets.Texture {
	count := mat.TextureCount(kind)
	if count > 1 {
		logger.Warn("material binds more than one texture to a channel, using the first",
			zap.String("material", mat.Name),
			zap.Stringer("channel", kind),
			zap.Int("count", count))
	}
	if count == 0 || st.assets == nil {
		return nil
	}

	ref, _ := mat.Texture(kind, 0)
	// Textures are assumed to live relative to the model's directory.
	path := filepath.Join(st.directory, ref.Path)
	return st.assets.LoadTextureAsync(path, assets.TextureSettings{SRGB: srgb})
}
