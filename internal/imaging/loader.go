package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Source is a decoded composite image together with its single-channel
// intensity derivative.
//
// Both images share the same bounds, always anchored at (0,0). A Source is
// never modified after construction; every pipeline stage works on copies
// or on buffers it owns.
type Source struct {
	// Path is the file the image was read from. Empty for in-memory sources.
	Path string

	// Format is the codec name reported by image.Decode ("jpeg", "png", ...).
	Format string

	// Color is the full-resolution, multi-channel image. Sub-images are
	// cropped from here.
	Color image.Image

	// Gray is the luminance channel using ITU-R BT.601 weights
	// (0.299*R + 0.587*G + 0.114*B).
	Gray *image.Gray
}

// Bounds returns the source rectangle, which is the same for Color and Gray.
func (s *Source) Bounds() image.Rectangle {
	return s.Gray.Bounds()
}

// NewSource wraps an already decoded image. Images whose bounds do not start
// at the origin are copied so that all coordinates are 0-based.
func NewSource(img image.Image) *Source {
	if img.Bounds().Min != (image.Point{}) {
		img = imaging.Clone(img)
	}
	return &Source{
		Color: img,
		Gray:  ToGray(img),
	}
}

// ToGray derives the 8-bit luminance image of img. The alpha channel is
// ignored.
func ToGray(img image.Image) *image.Gray {
	// imaging.Grayscale returns NRGBA with R == G == B.
	g := imaging.Grayscale(img)
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

// LoadSource reads and decodes the file at path and derives its grayscale
// channel.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the contents are not a supported raster format
//     (JPEG, PNG, GIF, BMP, TIFF, WebP)
func LoadSource(path string) (*Source, error) {
	img, format, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	src := NewSource(img)
	src.Path = path
	src.Format = format
	return src, nil
}

func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// ImageCache provides thread-safe caching of loaded sources to avoid redundant
// disk reads and grayscale conversions.
//
// The cache stores decoded Sources keyed by their file path. Once an image is
// loaded, subsequent Load() calls for the same path return the cached copy
// without disk I/O. Cached sources are never mutated by the pipeline, so
// sharing them between requests is safe.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// Scanned pages are large; long-running servers should evict after use.
type ImageCache struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		sources: make(map[string]*Source),
	}
}

// Load retrieves a source from the cache or loads it from disk if not cached.
//
// The source is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) will result in separate cache entries.
func (c *ImageCache) Load(path string) (*Source, error) {
	c.mu.RLock()
	if src, ok := c.sources[path]; ok {
		c.mu.RUnlock()
		return src, nil
	}
	c.mu.RUnlock()

	src, err := LoadSource(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sources[path] = src
	c.mu.Unlock()

	return src, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.sources = make(map[string]*Source)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.sources, path)
	c.mu.Unlock()
}

// Len reports how many sources are cached.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that recognised the file: "png", "jpeg", "gif",
	// "bmp", "tiff" or "webp".
	Format string `json:"format"`

	// Extension is the lowercase file extension without the dot.
	Extension string `json:"extension"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	src, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch src.Color.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := src.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        src.Format,
		Extension:     strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}
