// modeltool is a CLI utility for inspecting model files through the import
// pipeline: flattened meshes, bone registries, and material textures.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/forgelight/modelforge/internal/assets"
	"github.com/forgelight/modelforge/internal/config"
	"github.com/forgelight/modelforge/internal/logger"
	"github.com/forgelight/modelforge/internal/model"
	"github.com/forgelight/modelforge/pkg/gltfscene"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	rest := args[1:]

	switch command {
	case "info":
		cmdInfo(cfg, rest)
	case "meshes", "ls":
		cmdMeshes(cfg, rest)
	case "bones":
		cmdBones(cfg, rest)
	case "textures", "tex":
		cmdTextures(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modeltool - model import pipeline utility

Usage:
  modeltool [options] <command> <file>

Commands:
  info <file>       Show model summary (meshes, bones, materials)
  meshes <file>     List flattened meshes
  bones <file>      List the bone registry in ID order
  textures <file>   Resolve and check material textures

Options (before the command):
  --config <path>      Config file to use
  --debug              Enable debug logging
  --log-file <path>    Write logs to this file
  --texture-dir <dir>  Extra texture search directory
  --no-flip-uv         Keep the importer's native UV origin

Examples:
  modeltool info character.glb
  modeltool --texture-dir ./textures textures character.gltf`)
}

// loadModel runs the full import pipeline for path.
func loadModel(cfg *config.Config, path string) (*model.Model, *assets.Manager) {
	loader := gltfscene.NewLoader()
	loader.FlipUV = cfg.Import.FlipUV

	sc, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mgr := assets.NewManager(cfg.Textures.SearchDirs...)
	m := model.NewModel()
	if err := m.LoadScene(mgr, sc, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return m, mgr
}

func requireFile(args []string, usage string) string {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	return args[0]
}

func cmdInfo(cfg *config.Config, args []string) {
	path := requireFile(args, "Usage: modeltool info <file>")
	m, _ := loadModel(cfg, path)

	var vertices, triangles, skinned int
	for i := range m.Meshes {
		vertices += m.Meshes[i].VertexCount()
		triangles += m.Meshes[i].TriangleCount()
		if m.Meshes[i].BoneWeights != nil {
			skinned++
		}
	}

	fmt.Printf("Model:     %s\n", m.Name())
	fmt.Printf("Meshes:    %d (%d skinned)\n", len(m.Meshes), skinned)
	fmt.Printf("Vertices:  %d\n", vertices)
	fmt.Printf("Triangles: %d\n", triangles)
	fmt.Printf("Bones:     %d\n", m.BoneCount())
}

func cmdMeshes(cfg *config.Config, args []string) {
	path := requireFile(args, "Usage: modeltool meshes <file>")
	m, _ := loadModel(cfg, path)

	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		skin := ""
		if mesh.BoneWeights != nil {
			skin = " skinned"
		}
		fmt.Printf("%3d  %-32s %7d verts %7d tris%s\n",
			i, mesh.Name, mesh.VertexCount(), mesh.TriangleCount(), skin)
	}
	fmt.Fprintf(os.Stderr, "\n(%d meshes)\n", len(m.Meshes))
}

func cmdBones(cfg *config.Config, args []string) {
	path := requireFile(args, "Usage: modeltool bones <file>")
	m, _ := loadModel(cfg, path)

	type entry struct {
		name string
		id   int
	}
	var bones []entry
	for name, data := range m.Bones() {
		bones = append(bones, entry{name, data.ID})
	}
	sort.Slice(bones, func(i, j int) bool { return bones[i].id < bones[j].id })

	for _, b := range bones {
		fmt.Printf("%3d  %s\n", b.id, b.name)
	}
	if len(bones) == 0 {
		fmt.Fprintln(os.Stderr, "No bones")
	}
}

func cmdTextures(cfg *config.Config, args []string) {
	path := requireFile(args, "Usage: modeltool textures <file>")
	m, mgr := loadModel(cfg, path)

	// Dedupe handles: meshes sharing a material share texture handles.
	seen := make(map[*assets.Texture]bool)
	var handles []*assets.Texture
	for i := range m.Meshes {
		for _, t := range m.Meshes[i].Material.Textures() {
			if seen[t] {
				continue
			}
			seen[t] = true
			handles = append(handles, t)
		}
	}

	mgr.Wait()

	for _, t := range handles {
		space := "linear"
		if t.Settings.SRGB {
			space = "sRGB"
		}
		if err := t.Err(); err != nil {
			fmt.Printf("FAIL %-6s %s (%v)\n", space, t.Path, err)
			continue
		}
		bounds := t.Image().Bounds()
		fmt.Printf("ok   %-6s %s (%dx%d)\n", space, t.Path, bounds.Dx(), bounds.Dy())
	}

	if len(handles) == 0 {
		fmt.Fprintln(os.Stderr, "No textures")
	}
	hits, misses := mgr.Stats()
	fmt.Fprintf(os.Stderr, "\n(%d textures, cache: %d hits / %d misses)\n",
		len(handles), hits, misses)
}
