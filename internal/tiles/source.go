// Package tiles fetches and caches slippy-map raster tiles.
package tiles

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// Size is the edge length of a slippy-map tile in pixels.
const Size = 256

const defaultCacheSize = 512

// Key identifies one tile of one source.
type Key struct {
	Z, X, Y int
}

// Source fetches tiles for a single {z}/{x}/{y} URL template and keeps
// a bounded in-memory cache of decoded tiles. Safe for concurrent use;
// the cache itself is the only shared state.
type Source struct {
	template string
	client   *http.Client
	cache    *lru.Cache[Key, image.Image]
	log      zerolog.Logger
}

// NewSource creates a tile source for the given URL template. The
// template must contain {z}, {x}, and {y} placeholders.
func NewSource(template string, log zerolog.Logger) (*Source, error) {
	for _, ph := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(template, ph) {
			return nil, fmt.Errorf("tile template missing %s placeholder", ph)
		}
	}
	cache, err := lru.New[Key, image.Image](defaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Source{
		template: template,
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		log:      log,
	}, nil
}

// URL resolves the template for one tile.
func (s *Source) URL(k Key) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(k.Z),
		"{x}", strconv.Itoa(k.X),
		"{y}", strconv.Itoa(k.Y),
	)
	return r.Replace(s.template)
}

// Get returns the tile image, served from cache when possible. On any
// fetch or decode failure a placeholder tile is returned and cached so
// a dead tile server is not re-hit on every redraw.
func (s *Source) Get(k Key) image.Image {
	if img, ok := s.cache.Get(k); ok {
		return img
	}

	img, err := s.fetch(k)
	if err != nil {
		s.log.Debug().Err(err).Int("z", k.Z).Int("x", k.X).Int("y", k.Y).Msg("tile fetch failed")
		img = Placeholder()
	}
	s.cache.Add(k, img)
	return img
}

// Cached returns the tile only if it is already in the cache. Render
// loops use this to avoid blocking on the network mid-frame.
func (s *Source) Cached(k Key) (image.Image, bool) {
	return s.cache.Get(k)
}

// Prefetch loads a tile into the cache in the background and reports
// completion on the returned channel.
func (s *Source) Prefetch(k Key) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Get(k)
	}()
	return done
}

// Purge empties the cache.
func (s *Source) Purge() {
	s.cache.Purge()
}

// Len returns the number of cached tiles.
func (s *Source) Len() int {
	return s.cache.Len()
}

func (s *Source) fetch(k Key) (image.Image, error) {
	resp, err := s.client.Get(s.URL(k))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("tile server returned %s", resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	return img, nil
}

// Placeholder returns the flat tile drawn while a real tile is missing.
func Placeholder() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	bg := color.RGBA{R: 225, G: 227, B: 230, A: 255}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	// Faint one pixel border so tile seams stay visible.
	border := color.RGBA{R: 205, G: 207, B: 210, A: 255}
	for x := 0; x < Size; x++ {
		img.SetRGBA(x, 0, border)
		img.SetRGBA(x, Size-1, border)
	}
	for y := 0; y < Size; y++ {
		img.SetRGBA(0, y, border)
		img.SetRGBA(Size-1, y, border)
	}
	return img
}
