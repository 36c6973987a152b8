// Package assets handles asynchronous texture loading and caching for model
// imports.
package assets

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/forgelight/modelforge/internal/logger"
	"github.com/forgelight/modelforge/internal/texture"
)

// TextureSettings describes how a texture's data is to be interpreted.
type TextureSettings struct {
	// SRGB marks colour data that the renderer should gamma correct.
	// Non-colour data (normals, AO, displacement) must not be corrected.
	SRGB bool
}

// Texture is a fire-and-forget handle to an asynchronously loading texture.
// The handle is usable immediately; the backing image fills in on its own
// timeline and consumers must tolerate a not-yet-ready texture.
type Texture struct {
	Path     string
	Settings TextureSettings

	done chan struct{}
	img  image.Image
	err  error
}

// Ready reports whether the load has completed (successfully or not).
func (t *Texture) Ready() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Image returns the decoded image, or nil while loading or after a failed
// load.
func (t *Texture) Image() image.Image {
	if !t.Ready() {
		return nil
	}
	return t.img
}

// Err returns the load error, or nil while loading or after a successful
// load.
func (t *Texture) Err() error {
	if !t.Ready() {
		return nil
	}
	return t.err
}

// Wait blocks until the load completes. Intended for tools and tests;
// rendering code should poll Ready instead.
func (t *Texture) Wait() {
	<-t.done
}

// Manager loads textures in the background and caches the handles.
type Manager struct {
	searchDirs []string
	cache      *Cache
	mu         sync.Mutex
	wg         sync.WaitGroup
}

// NewManager creates a texture manager. searchDirs are extra directories
// tried, in order, when a path does not resolve as given.
func NewManager(searchDirs ...string) *Manager {
	return &Manager{
		searchDirs: searchDirs,
		cache:      NewCache(),
	}
}

// LoadTextureAsync returns a handle for the texture at path, starting a
// background load on first request. Subsequent requests for the same path
// and settings share one handle. Load failures are logged, never returned:
// the handle simply stays empty.
func (m *Manager) LoadTextureAsync(path string, settings TextureSettings) *Texture {
	key := cacheKey(path, settings)

	m.mu.Lock()
	if t, ok := m.cache.Get(key); ok {
		m.mu.Unlock()
		return t
	}
	t := &Texture{
		Path:     path,
		Settings: settings,
		done:     make(chan struct{}),
	}
	m.cache.Set(key, t)
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer close(t.done)

		img, err := m.decode(path)
		if err != nil {
			t.err = err
			logger.Warn("texture load failed",
				zap.String("path", path),
				zap.Error(err))
			return
		}
		t.img = img
	}()

	return t
}

// Wait blocks until every outstanding texture load has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// decode resolves the path against the search directories and decodes the
// first file that exists.
func (m *Manager) decode(path string) (image.Image, error) {
	candidates := make([]string, 0, len(m.searchDirs)+1)
	candidates = append(candidates, path)
	base := filepath.Base(path)
	for _, dir := range m.searchDirs {
		candidates = append(candidates, filepath.Join(dir, base))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		return texture.Decode(candidate)
	}
	return nil, fmt.Errorf("texture not found: %s", path)
}

func cacheKey(path string, settings TextureSettings) string {
	if settings.SRGB {
		return path + "|srgb"
	}
	return path + "|linear"
}

// Cache is an in-memory cache of texture handles.
type Cache struct {
	data map[string]*Texture
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*Texture),
	}
}

// Get retrieves a handle from the cache.
func (c *Cache) Get(key string) (*Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return t, ok
}

// Set stores a handle in the cache.
func (c *Cache) Set(key string, t *Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = t
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*Texture)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
