package model

import (
	"github.com/forgelight/modelforge/internal/assets"
)

// Material holds the resolved texture handles of one mesh. A nil handle
// means the channel is absent. Handles may still be loading; consumers must
// tolerate a not-yet-ready texture.
type Material struct {
	albedo           *assets.Texture
	normal           *assets.Texture
	ambientOcclusion *assets.Texture
	displacement     *assets.Texture
}

// SetAlbedoMap sets the albedo (base colour) texture.
func (m *Material) SetAlbedoMap(t *assets.Texture) { m.albedo = t }

// SetNormalMap sets the tangent-space normal texture.
func (m *Material) SetNormalMap(t *assets.Texture) { m.normal = t }

// SetAmbientOcclusionMap sets the ambient occlusion texture.
func (m *Material) SetAmbientOcclusionMap(t *assets.Texture) { m.ambientOcclusion = t }

// SetDisplacementMap sets the displacement texture.
func (m *Material) SetDisplacementMap(t *assets.Texture) { m.displacement = t }

// AlbedoMap returns the albedo texture handle, or nil.
func (m *Material) AlbedoMap() *assets.Texture { return m.albedo }

// NormalMap returns the normal texture handle, or nil.
func (m *Material) NormalMap() *assets.Texture { return m.normal }

// AmbientOcclusionMap returns the ambient occlusion texture handle, or nil.
func (m *Material) AmbientOcclusionMap() *assets.Texture { return m.ambientOcclusion }

// DisplacementMap returns the displacement texture handle, or nil.
func (m *Material) DisplacementMap() *assets.Texture { return m.displacement }

// Textures returns all non-nil texture handles.
func (m *Material) Textures() []*assets.Texture {
	var out []*assets.Texture
	for _, t := range []*assets.Texture{m.albedo, m.normal, m.ambientOcclusion, m.displacement} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}
