package imaging

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// ImageCache keeps decoded frames keyed by file path so repeated requests for
// the same still image skip disk reads. An entry is decoded again when the
// file's modification time or size changes, so a camera snapshot that is
// overwritten in place is never served stale.
//
// ImageCache is safe for concurrent use. Cached frames stay in memory until
// Evict or Clear.
//
//	cache := imaging.NewImageCache()
//	frame, err := cache.Load("/captures/gate-1.jpg")
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedFrame
}

type cachedFrame struct {
	img     image.Image
	modTime time.Time
	size    int64
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedFrame),
	}
}

// Load returns the frame at path, decoding it on first use or when the file
// changed since it was cached.
//
// JPEG frames are rotated according to their EXIF orientation so phone
// photos of plates come out upright. The cache key is the path string as
// given.
func (c *ImageCache) Load(path string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	c.mu.RLock()
	cached, ok := c.images[path]
	c.mu.RUnlock()
	if ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cached.img, nil
	}

	img, err := LoadFrame(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = cachedFrame{img: img, modTime: info.ModTime(), size: info.Size()}
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached frames.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all frames from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedFrame)
	c.mu.Unlock()
}

// Evict removes the frame loaded from path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// LoadFrame decodes one still image without caching.
func LoadFrame(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return img, nil
}

// DecodeFrame decodes one still image from r, e.g. an uploaded frame.
func DecodeFrame(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// IsFrameFile reports whether path has an extension LoadFrame can decode.
func IsFrameFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
