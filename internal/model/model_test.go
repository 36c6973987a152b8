package model

import (
	"path/filepath"
	"testing"

	"github.com/forgelight/modelforge/internal/assets"
	"github.com/forgelight/modelforge/pkg/scene"
)

type recordingDrawer struct {
	materials []*Material
	meshes    []*Mesh
}

func (d *recordingDrawer) BindMaterial(m *Material) { d.materials = append(d.materials, m) }
func (d *recordingDrawer) DrawMesh(m *Mesh)         { d.meshes = append(d.meshes, m) }

func TestDrawBindsMaterialWhenRequired(t *testing.T) {
	m := NewModelFromMeshes([]Mesh{{Name: "a"}, {Name: "b"}})

	var d recordingDrawer
	m.Draw(&d, MaterialRequired)

	if len(d.meshes) != 2 {
		t.Fatalf("drawn meshes = %d, want 2", len(d.meshes))
	}
	if len(d.materials) != 2 {
		t.Fatalf("material binds = %d, want 2", len(d.materials))
	}
	for i := range d.meshes {
		if d.meshes[i] != &m.Meshes[i] {
			t.Errorf("mesh %d drawn out of order", i)
		}
		if d.materials[i] != &m.Meshes[i].Material {
			t.Errorf("mesh %d bound the wrong material", i)
		}
	}
}

func TestDrawSkipsMaterialWhenNotRequired(t *testing.T) {
	m := NewModelFromMeshes([]Mesh{{Name: "a"}, {Name: "b"}})

	var d recordingDrawer
	m.Draw(&d, NoMaterialRequired)

	if len(d.meshes) != 2 {
		t.Fatalf("drawn meshes = %d, want 2", len(d.meshes))
	}
	if len(d.materials) != 0 {
		t.Errorf("material binds = %d, want 0", len(d.materials))
	}
}

func TestMaterialResolution(t *testing.T) {
	mat := &scene.Material{Name: "skin"}
	mat.AddTexture(scene.TextureAlbedo, scene.TextureRef{Path: "skin_albedo.png"})
	mat.AddTexture(scene.TextureAlbedo, scene.TextureRef{Path: "skin_albedo_2.png"})
	mat.AddTexture(scene.TextureNormal, scene.TextureRef{Path: "skin_normal.png"})

	mesh := makeMesh("a", 3)
	mesh.MaterialID = 0
	sc := singleNodeScene(mesh)
	sc.Materials = []*scene.Material{mat}

	mgr := assets.NewManager()
	defer mgr.Wait()

	m := NewModel()
	if err := m.LoadScene(mgr, sc, filepath.Join("testdata", "char.gltf")); err != nil {
		t.Fatalf("LoadScene failed: %v", err)
	}

	got := m.Meshes[0].Material
	albedo := got.AlbedoMap()
	if albedo == nil {
		t.Fatal("albedo channel not resolved")
	}
	// Multiple bindings on one channel resolve to the first, relative to the
	// model's directory.
	if want := filepath.Join("testdata", "skin_albedo.png"); albedo.Path != want {
		t.Errorf("albedo path = %q, want %q", albedo.Path, want)
	}
	if !albedo.Settings.SRGB {
		t.Error("albedo must be flagged sRGB")
	}

	normal := got.NormalMap()
	if normal == nil {
		t.Fatal("normal channel not resolved")
	}
	if normal.Settings.SRGB {
		t.Error("normal map must not be flagged sRGB")
	}

	if got.AmbientOcclusionMap() != nil || got.DisplacementMap() != nil {
		t.Error("absent channels must resolve to nil")
	}
	if n := len(got.Textures()); n != 2 {
		t.Errorf("Textures() returned %d handles, want 2", n)
	}
}

func TestMaterialUnresolvedWithoutManager(t *testing.T) {
	mat := &scene.Material{Name: "skin"}
	mat.AddTexture(scene.TextureAlbedo, scene.TextureRef{Path: "skin_albedo.png"})

	mesh := makeMesh("a", 3)
	mesh.MaterialID = 0
	sc := singleNodeScene(mesh)
	sc.Materials = []*scene.Material{mat}

	m := loadScene(t, sc)
	if m.Meshes[0].Material.AlbedoMap() != nil {
		t.Error("without an asset manager no texture handle should be created")
	}
}

func TestModelNaming(t *testing.T) {
	m := loadScene(t, singleNodeScene(makeMesh("a", 1)))

	if m.Name() != "test.gltf" {
		t.Errorf("Name = %q, want %q", m.Name(), "test.gltf")
	}
	if m.Path() != "testdata/test.gltf" {
		t.Errorf("Path = %q, want %q", m.Path(), "testdata/test.gltf")
	}
	if m.Directory() != "testdata" {
		t.Errorf("Directory = %q, want %q", m.Directory(), "testdata")
	}
}

func TestVertexBoneDataCount(t *testing.T) {
	var v VertexBoneData
	v.reset()
	if v.Count() != 0 {
		t.Errorf("Count after reset = %d, want 0", v.Count())
	}
	for i := 0; i < MaxBoneInfluences; i++ {
		if v.BoneIDs[i] != sentinelBoneID {
			t.Errorf("slot %d = %d after reset, want sentinel", i, v.BoneIDs[i])
		}
	}

	v.BoneIDs[0] = 3
	v.Weights[0] = 0.5
	if v.Count() != 1 {
		t.Errorf("Count = %d, want 1", v.Count())
	}
}
