package model

// RenderPass selects whether material state is bound before drawing.
type RenderPass int

const (
	// MaterialRequired binds each mesh's material before it is drawn.
	MaterialRequired RenderPass = iota
	// NoMaterialRequired skips material binding, for passes such as shadow
	// or depth pre-pass that only need geometry.
	NoMaterialRequired
)

// MeshDrawer consumes flattened meshes. Implemented by the rendering
// backend; this package never touches the GPU itself.
type MeshDrawer interface {
	// BindMaterial installs the mesh's material state. Textures handed
	// over may still be loading.
	BindMaterial(*Material)
	// DrawMesh submits one mesh's buffers for drawing.
	DrawMesh(*Mesh)
}

// Draw submits every mesh to the drawer in import order, binding material
// information only when the pass needs it.
func (m *Model) Draw(d MeshDrawer, pass RenderPass) {
	for i := range m.Meshes {
		if pass == MaterialRequired {
			d.BindMaterial(&m.Meshes[i].Material)
		}
		d.DrawMesh(&m.Meshes[i])
	}
}
