// Package gltfscene converts glTF 2.0 documents into the engine scene-graph
// representation defined by pkg/scene.
package gltfscene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/forgelight/modelforge/pkg/math"
	"github.com/forgelight/modelforge/pkg/scene"
)

// Conversion errors.
var (
	ErrNoScene    = errors.New("gltf document has no scene")
	ErrEmptyScene = errors.New("gltf scene has no nodes")
)

// Loader converts glTF documents to scenes.
type Loader struct {
	// FlipUV flips the V texture coordinate. glTF uses a top-left UV
	// origin while the engine samples from the bottom left.
	FlipUV bool
}

// NewLoader returns a Loader with default options.
func NewLoader() *Loader {
	return &Loader{FlipUV: true}
}

// Load reads a .gltf/.glb file with default options.
func Load(path string) (*scene.Scene, error) {
	return NewLoader().Load(path)
}

// Load reads and converts a .gltf/.glb file.
func (l *Loader) Load(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	sc, err := l.FromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	return sc, nil
}

// FromDocument converts an already parsed glTF document.
func (l *Loader) FromDocument(doc *gltf.Document, name string) (*scene.Scene, error) {
	if len(doc.Scenes) == 0 {
		return nil, ErrNoScene
	}
	gsc := doc.Scenes[0]
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		gsc = doc.Scenes[*doc.Scene]
	}
	if len(gsc.Nodes) == 0 {
		return nil, ErrEmptyScene
	}

	c := &converter{
		doc:   doc,
		flipV: l.FlipUV,
		sc:    &scene.Scene{Name: name},
		cache: make(map[[2]int][]int),
	}

	c.convertMaterials()

	roots := make([]*scene.Node, 0, len(gsc.Nodes))
	for _, idx := range gsc.Nodes {
		node, err := c.convertNode(idx)
		if err != nil {
			return nil, err
		}
		roots = append(roots, node)
	}

	// glTF scenes may have several root nodes; the engine expects exactly
	// one, so extra roots are parented under a synthetic identity root.
	if len(roots) == 1 {
		c.sc.RootNode = roots[0]
	} else {
		c.sc.RootNode = &scene.Node{
			Name:      "root",
			Transform: math.Identity(),
			Children:  roots,
		}
	}

	return c.sc, nil
}

type converter struct {
	doc   *gltf.Document
	flipV bool
	sc    *scene.Scene

	// cache maps (mesh index, skin index) to the scene mesh IDs produced
	// for that pairing, so instanced meshes convert once.
	cache map[[2]int][]int
}

func (c *converter) convertNode(idx int) (*scene.Node, error) {
	if idx < 0 || idx >= len(c.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	gn := c.doc.Nodes[idx]

	node := &scene.Node{
		Name:      gn.Name,
		Transform: nodeTransform(gn),
	}

	if gn.Mesh != nil {
		skinIdx := -1
		if gn.Skin != nil {
			skinIdx = *gn.Skin
		}
		ids, err := c.meshInstances(*gn.Mesh, skinIdx)
		if err != nil {
			return nil, err
		}
		node.MeshIDs = ids
	}

	for _, child := range gn.Children {
		cn, err := c.convertNode(child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, cn)
	}

	return node, nil
}

// nodeTransform builds the local transform from the node's matrix, or from
// its TRS properties when no matrix is set. glTF matrices are column-major,
// same as the engine convention, so elements copy straight across.
func nodeTransform(n *gltf.Node) math.Mat4 {
	identity := [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	if gm := n.MatrixOrDefault(); gm != identity {
		return mat4FromFloats(gm)
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()

	rot := math.Quat{
		X: float32(r[0]),
		Y: float32(r[1]),
		Z: float32(r[2]),
		W: float32(r[3]),
	}

	return math.Translate(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul(rot.ToMat4()).
		Mul(math.Scale(float32(s[0]), float32(s[1]), float32(s[2])))
}

func mat4FromFloats(m [16]float64) math.Mat4 {
	var out math.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

func (c *converter) meshInstances(meshIdx, skinIdx int) ([]int, error) {
	if meshIdx < 0 || meshIdx >= len(c.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	key := [2]int{meshIdx, skinIdx}
	if ids, ok := c.cache[key]; ok {
		return ids, nil
	}

	gm := c.doc.Meshes[meshIdx]
	var ids []int
	for pi, prim := range gm.Primitives {
		// Lines and points have no place in a triangle mesh.
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		raw, err := c.convertPrimitive(gm, pi, prim, skinIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
		}
		if raw == nil {
			continue
		}
		ids = append(ids, len(c.sc.Meshes))
		c.sc.Meshes = append(c.sc.Meshes, raw)
	}
	c.cache[key] = ids
	return ids, nil
}

func (c *converter) convertPrimitive(gm *gltf.Mesh, pi int, prim *gltf.Primitive, skinIdx int) (*scene.RawMesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := modeler.ReadPosition(c.doc, c.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	raw := &scene.RawMesh{
		Name:       fmt.Sprintf("%s/%d", gm.Name, pi),
		MaterialID: -1,
	}

	raw.Positions = make([]math.Vec3, len(positions))
	for i, p := range positions {
		raw.Positions[i] = math.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}

	raw.Normals = make([]math.Vec3, len(positions))
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(c.doc, c.doc.Accessors[normIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		for i := range normals {
			if i >= len(raw.Normals) {
				break
			}
			raw.Normals[i] = math.Vec3{X: normals[i][0], Y: normals[i][1], Z: normals[i][2]}
		}
	}

	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(c.doc, c.doc.Accessors[uvIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read texture coords: %w", err)
		}
		raw.TexCoords = make([]math.Vec2, len(positions))
		for i := range uvs {
			if i >= len(raw.TexCoords) {
				break
			}
			v := uvs[i][1]
			if c.flipV {
				v = 1 - v
			}
			raw.TexCoords[i] = math.Vec2{X: uvs[i][0], Y: v}
		}
	}

	raw.Tangents = make([]math.Vec3, len(positions))
	raw.Bitangents = make([]math.Vec3, len(positions))
	if tanIdx, ok := prim.Attributes[gltf.TANGENT]; ok {
		tangents, err := modeler.ReadTangent(c.doc, c.doc.Accessors[tanIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read tangents: %w", err)
		}
		for i := range tangents {
			if i >= len(raw.Tangents) {
				break
			}
			tan := math.Vec3{X: tangents[i][0], Y: tangents[i][1], Z: tangents[i][2]}
			raw.Tangents[i] = tan
			// The tangent's w component carries the handedness of the
			// bitangent.
			raw.Bitangents[i] = raw.Normals[i].Cross(tan).Scale(tangents[i][3])
		}
	}

	if err := c.convertFaces(prim, raw, len(positions)); err != nil {
		return nil, err
	}

	if prim.Material != nil && *prim.Material < len(c.sc.Materials) {
		raw.MaterialID = *prim.Material
	}

	if skinIdx >= 0 {
		if err := c.convertSkin(prim, raw, skinIdx); err != nil {
			return nil, err
		}
	}

	return raw, nil
}

func (c *converter) convertFaces(prim *gltf.Primitive, raw *scene.RawMesh, vertexCount int) error {
	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(c.doc, c.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
		raw.Faces = make([][3]uint32, 0, len(indices)/3)
		for i := 0; i+2 < len(indices); i += 3 {
			raw.Faces = append(raw.Faces, [3]uint32{indices[i], indices[i+1], indices[i+2]})
		}
		return nil
	}

	// Non-indexed geometry: sequential triangles.
	raw.Faces = make([][3]uint32, 0, vertexCount/3)
	for i := 0; i+2 < vertexCount; i += 3 {
		raw.Faces = append(raw.Faces, [3]uint32{uint32(i), uint32(i + 1), uint32(i + 2)})
	}
	return nil
}

// convertSkin inverts the per-vertex JOINTS_0/WEIGHTS_0 attributes into
// per-bone (vertex, weight) lists, in skin joint order. Joints that do not
// influence any vertex of this primitive are omitted.
func (c *converter) convertSkin(prim *gltf.Primitive, raw *scene.RawMesh, skinIdx int) error {
	if skinIdx >= len(c.doc.Skins) {
		return fmt.Errorf("skin index %d out of range", skinIdx)
	}
	jointsIdx, ok := prim.Attributes[gltf.JOINTS_0]
	if !ok {
		return nil
	}
	weightsIdx, ok := prim.Attributes[gltf.WEIGHTS_0]
	if !ok {
		return nil
	}

	joints, err := modeler.ReadJoints(c.doc, c.doc.Accessors[jointsIdx], nil)
	if err != nil {
		return fmt.Errorf("read joints: %w", err)
	}
	weights, err := modeler.ReadWeights(c.doc, c.doc.Accessors[weightsIdx], nil)
	if err != nil {
		return fmt.Errorf("read weights: %w", err)
	}

	skin := c.doc.Skins[skinIdx]
	offsets, err := c.inverseBindMatrices(skin)
	if err != nil {
		return err
	}

	bones := make([]scene.Bone, len(skin.Joints))
	for ji, nodeIdx := range skin.Joints {
		name := ""
		if nodeIdx >= 0 && nodeIdx < len(c.doc.Nodes) {
			name = c.doc.Nodes[nodeIdx].Name
		}
		if name == "" {
			name = fmt.Sprintf("joint_%d", ji)
		}
		bones[ji] = scene.Bone{Name: name, OffsetMatrix: offsets[ji]}
	}

	for vi := range joints {
		if vi >= len(weights) {
			break
		}
		for k := 0; k < 4; k++ {
			w := weights[vi][k]
			if w <= 0 {
				continue
			}
			j := int(joints[vi][k])
			if j >= len(bones) {
				return fmt.Errorf("vertex %d references joint %d beyond skin with %d joints", vi, j, len(bones))
			}
			bones[j].Weights = append(bones[j].Weights, scene.VertexWeight{
				VertexID: uint32(vi),
				Weight:   w,
			})
		}
	}

	for _, b := range bones {
		if len(b.Weights) > 0 {
			raw.Bones = append(raw.Bones, b)
		}
	}
	return nil
}

// inverseBindMatrices reads the skin's inverse bind matrices, defaulting to
// identity when the accessor is absent (permitted by the glTF spec).
func (c *converter) inverseBindMatrices(skin *gltf.Skin) ([]math.Mat4, error) {
	out := make([]math.Mat4, len(skin.Joints))
	for i := range out {
		out[i] = math.Identity()
	}
	if skin.InverseBindMatrices == nil {
		return out, nil
	}

	data, err := modeler.ReadAccessor(c.doc, c.doc.Accessors[*skin.InverseBindMatrices], nil)
	if err != nil {
		return nil, fmt.Errorf("read inverse bind matrices: %w", err)
	}
	mats, ok := data.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("inverse bind matrices accessor has unexpected type %T", data)
	}

	for i := range out {
		if i >= len(mats) {
			break
		}
		// Accessor elements are column-major, matching the engine layout.
		var m math.Mat4
		for col := 0; col < 4; col++ {
			for row := 0; row < 4; row++ {
				m[col*4+row] = mats[i][col][row]
			}
		}
		out[i] = m
	}
	return out, nil
}

// convertMaterials maps the glTF texture channels the engine understands.
// glTF has no displacement channel, so that slot always stays empty.
func (c *converter) convertMaterials() {
	for _, gmat := range c.doc.Materials {
		mat := &scene.Material{Name: gmat.Name}
		if pbr := gmat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			c.addTexture(mat, scene.TextureAlbedo, int(pbr.BaseColorTexture.Index))
		}
		if nt := gmat.NormalTexture; nt != nil && nt.Index != nil {
			c.addTexture(mat, scene.TextureNormal, int(*nt.Index))
		}
		if ot := gmat.OcclusionTexture; ot != nil && ot.Index != nil {
			c.addTexture(mat, scene.TextureAmbientOcclusion, int(*ot.Index))
		}
		c.sc.Materials = append(c.sc.Materials, mat)
	}
}

func (c *converter) addTexture(mat *scene.Material, kind scene.TextureKind, texIdx int) {
	if texIdx < 0 || texIdx >= len(c.doc.Textures) {
		return
	}
	tex := c.doc.Textures[texIdx]
	if tex.Source == nil || *tex.Source >= len(c.doc.Images) {
		return
	}
	img := c.doc.Images[*tex.Source]
	// Buffer-view-backed and data-URI images have no path to resolve.
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return
	}
	mat.AddTexture(kind, scene.TextureRef{Path: img.URI})
}
