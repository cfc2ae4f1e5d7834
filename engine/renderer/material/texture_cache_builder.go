package material

// TextureCacheOption is a function that configures a TextureCache during construction.
type TextureCacheOption func(*TextureCache)

// WithEvictCallback is an option builder that registers fn to take evicted
// textures. The cache does not release a texture it hands to fn.
//
// Parameters:
//   - fn: receives the handle and texture being evicted and must release the texture
//
// Returns:
//   - TextureCacheOption: a function that applies the callback option to a cache
func WithEvictCallback(fn func(Handle, *GPUTexture)) TextureCacheOption {
	return func(c *TextureCache) {
		c.onEvict = fn
	}
}
