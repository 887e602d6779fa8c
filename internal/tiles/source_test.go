package tiles

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoedit/internal/logger"
)

func tilePNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSourceRequiresPlaceholders(t *testing.T) {
	_, err := NewSource("https://tile.test/static.png", logger.Nop())
	require.Error(t, err)

	_, err = NewSource("https://tile.test/{z}/{x}/{y}.png", logger.Nop())
	assert.NoError(t, err)
}

func TestSourceURL(t *testing.T) {
	s, err := NewSource("https://tile.test/{z}/{x}/{y}.png", logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "https://tile.test/12/2048/1361.png", s.URL(Key{Z: 12, X: 2048, Y: 1361}))
}

func TestGetFetchesOnceThenServesFromCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(tilePNG(t, color.RGBA{R: 10, G: 120, B: 10, A: 255}))
	}))
	defer srv.Close()

	s, err := NewSource(srv.URL+"/{z}/{x}/{y}.png", logger.Nop())
	require.NoError(t, err)

	k := Key{Z: 3, X: 1, Y: 2}
	first := s.Get(k)
	second := s.Get(k)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, first, second)
	assert.Equal(t, Size, first.Bounds().Dx())

	cached, ok := s.Cached(k)
	require.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestGetReturnsPlaceholderOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := NewSource(srv.URL+"/{z}/{x}/{y}.png", logger.Nop())
	require.NoError(t, err)

	img := s.Get(Key{Z: 1, X: 0, Y: 0})
	require.NotNil(t, img)
	assert.Equal(t, Size, img.Bounds().Dx())

	// The failure is cached too: the server is not re-hit.
	_, ok := s.Cached(Key{Z: 1, X: 0, Y: 0})
	assert.True(t, ok)
}

func TestGetReturnsPlaceholderOnBadImageData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a png"))
	}))
	defer srv.Close()

	s, err := NewSource(srv.URL+"/{z}/{x}/{y}.png", logger.Nop())
	require.NoError(t, err)

	img := s.Get(Key{Z: 1, X: 0, Y: 0})
	require.NotNil(t, img)
	assert.Equal(t, Size, img.Bounds().Dy())
}

func TestPrefetchPopulatesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(tilePNG(t, color.RGBA{R: 200, G: 200, B: 250, A: 255}))
	}))
	defer srv.Close()

	s, err := NewSource(srv.URL+"/{z}/{x}/{y}.png", logger.Nop())
	require.NoError(t, err)

	k := Key{Z: 5, X: 9, Y: 11}
	_, ok := s.Cached(k)
	require.False(t, ok)

	<-s.Prefetch(k)
	_, ok = s.Cached(k)
	assert.True(t, ok)
}

func TestPurge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(tilePNG(t, color.RGBA{A: 255}))
	}))
	defer srv.Close()

	s, err := NewSource(srv.URL+"/{z}/{x}/{y}.png", logger.Nop())
	require.NoError(t, err)

	s.Get(Key{Z: 1, X: 0, Y: 0})
	s.Get(Key{Z: 1, X: 1, Y: 0})
	require.Equal(t, 2, s.Len())

	s.Purge()
	assert.Zero(t, s.Len())
}
