package material

import (
	"container/list"

	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultCacheCapacity is the number of resident textures kept by a TextureCache
// created with a non-positive capacity.
const DefaultCacheCapacity = 256

// GPUTexture is a GPU-resident copy of a material's base-color texture.
type GPUTexture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Width   uint32
	Height  uint32

	// Opaque is true when every texel has full alpha, which allows back-face culling.
	Opaque bool
}

// Release frees the view and the texture. Nil fields are skipped.
func (t *GPUTexture) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// OpaquePixels reports whether every alpha byte of tightly packed RGBA8 pixels is 255.
func OpaquePixels(pixels []byte) bool {
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] != 255 {
			return false
		}
	}
	return true
}

type cacheEntry struct {
	handle  Handle
	texture *GPUTexture
	element *list.Element
}

// TextureCache maps material handles to resident GPU textures with least recently
// used eviction. Evicted textures are released, unless an eviction callback is set,
// in which case the callback owns them.
//
// The cache belongs to the frame goroutine and is not safe for concurrent use.
type TextureCache struct {
	capacity int
	entries  map[Handle]*cacheEntry
	lru      *list.List // front = most recently used
	onEvict  func(Handle, *GPUTexture)

	hits, misses, evictions uint64
}

// CacheStats contains counters for monitoring a TextureCache.
type CacheStats struct {
	Entries   int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewTextureCache creates an empty cache.
//
// Parameters:
//   - capacity: maximum resident textures; non-positive selects DefaultCacheCapacity
//   - options: variadic list of TextureCacheOption functions
//
// Returns:
//   - *TextureCache: the cache
func NewTextureCache(capacity int, options ...TextureCacheOption) *TextureCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	c := &TextureCache{
		capacity: capacity,
		entries:  make(map[Handle]*cacheEntry),
		lru:      list.New(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Get returns the resident texture for h and marks it most recently used.
//
// Parameters:
//   - h: the material handle
//
// Returns:
//   - *GPUTexture: the texture, or nil
//   - bool: false on a miss
func (c *TextureCache) Get(h Handle) (*GPUTexture, bool) {
	e, ok := c.entries[h]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.lru.MoveToFront(e.element)
	return e.texture, true
}

// Put stores tex under h as the most recently used entry. A texture already
// stored under h is released first. When the cache is full the least recently
// used entry is evicted.
//
// Parameters:
//   - h: the material handle
//   - tex: the resident texture; the cache takes ownership
func (c *TextureCache) Put(h Handle, tex *GPUTexture) {
	if e, ok := c.entries[h]; ok {
		if e.texture != tex {
			e.texture.Release()
		}
		e.texture = tex
		c.lru.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.evict(oldest.Value.(*cacheEntry))
	}

	e := &cacheEntry{handle: h, texture: tex}
	e.element = c.lru.PushFront(e)
	c.entries[h] = e
}

// Evict forgets the texture stored under h and releases it or hands it to the
// eviction callback.
//
// Parameters:
//   - h: the material handle
//
// Returns:
//   - bool: false if nothing was stored under h
func (c *TextureCache) Evict(h Handle) bool {
	e, ok := c.entries[h]
	if !ok {
		return false
	}
	c.evict(e)
	return true
}

func (c *TextureCache) evict(e *cacheEntry) {
	c.lru.Remove(e.element)
	delete(c.entries, e.handle)
	c.evictions++
	if c.onEvict != nil {
		c.onEvict(e.handle, e.texture)
		return
	}
	e.texture.Release()
}

// Len returns the number of resident textures.
func (c *TextureCache) Len() int {
	return len(c.entries)
}

// Stats returns the cache counters.
func (c *TextureCache) Stats() CacheStats {
	return CacheStats{
		Entries:   len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Release releases every resident texture and empties the cache.
// The eviction callback is not invoked.
func (c *TextureCache) Release() {
	for _, e := range c.entries {
		e.texture.Release()
	}
	clear(c.entries)
	c.lru.Init()
}
