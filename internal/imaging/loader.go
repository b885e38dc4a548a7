package imaging

import (
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
)

// ImageCache provides thread-safe caching of decoded pages so that repeated
// tool calls against the same scan do not hit the disk again.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until Evict or Clear is called. A server
// cleaning many pages should evict each page once its crops are done.
//
// # Mutability
//
// Cached images are shared. The cleanup pipeline never paints on them:
// callers crop a WorkingCopy before modifying pixels.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	pg, err := cache.Load("/scans/page-012.png")
//	if err != nil {
//	    return err
//	}
//	bubble, err := imaging.CropRegion(pg, image.Rect(120, 80, 420, 220))
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache, ready for concurrent use.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded page at path, reading it from disk on the first
// call.
//
// Parameters:
//   - path: File path of the page. PNG, JPEG, BMP and GIF are supported.
//
// Returns:
//   - image.Image: The decoded page. Its concrete type follows the file's
//     color model (*image.RGBA, *image.NRGBA, *image.YCbCr, ...) and its
//     bounds need not start at the origin for every decoder.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The cache key is the path string as given; different spellings of the
// same file are cached separately.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a supported image format
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Save writes a cleaned page, crop or mask to disk.
//
// Parameters:
//   - path: Destination file. A .jpg or .jpeg extension selects JPEG at
//     quality 95; anything else is written as PNG, which keeps mask alpha.
//   - img: The image to encode.
//
// # Errors
//
//   - Returns error if the file cannot be created, e.g. a missing directory
//   - Returns error if encoding fails
func Save(path string, img image.Image) error {
	enc := imgio.PNGEncoder()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		enc = imgio.JPEGEncoder(95)
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict drops the image cached under path, if any.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a page image, as reported by the
// image_load tool.
type ImageInfo struct {
	// Width and Height are the page size in pixels. Region coordinates
	// passed to the cleanup tools must fit inside them.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", "bmp" or "unknown", taken from the
	// file extension rather than the file contents.
	Format string `json:"format"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads a page through the cache and reports its metadata.
//
// Parameters:
//   - cache: The cache to load through; the page stays cached afterwards so
//     later cleanup calls on the same path skip decoding.
//   - path: File path of the page.
//
// Returns:
//   - *ImageInfo: Size, format and file size of the page.
//   - error: Non-nil if the page cannot be loaded.
//
// # Errors
//
//   - Returns error if the file cannot be read or decoded (see Load)
//   - Returns error if the file cannot be stat'ed after decoding
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
