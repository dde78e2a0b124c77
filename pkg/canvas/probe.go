package canvas

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/openboard/pkg/cache"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/observability"
)

// ImageExtensions lists the file extensions recognized as images, lower
// case and without the dot.
var ImageExtensions = []string{"png", "jpg", "jpeg", "tif", "tiff", "xcf", "psd", "bmp", "gif", "webp"}

// IsImageFile reports whether path has a recognized image extension.
func IsImageFile(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range ImageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// FileProber reads image dimensions from file headers.
type FileProber struct{}

// Probe implements [Prober]. Only the header is decoded.
func (FileProber) Probe(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, errs.Wrap(errs.ErrCodeFileNotFound, err, "image not found: %s", path)
		}
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errs.Wrap(errs.ErrCodeUnsupported, err, "read image header: %s", filepath.Base(path))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, errs.New(errs.ErrCodeUnsupported, "image has no pixels: %s", filepath.Base(path))
	}
	return cfg.Width, cfg.Height, nil
}

// CachedProber memoizes another Prober in a [cache.Cache]. Entries are
// keyed by path, size and modification time.
type CachedProber struct {
	inner Prober
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
	ctx   context.Context
}

// NewCachedProber wraps inner. A nil keyer uses [cache.NewDefaultKeyer].
func NewCachedProber(ctx context.Context, inner Prober, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CachedProber {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedProber{inner: inner, cache: c, keyer: keyer, ttl: ttl, ctx: ctx}
}

// Probe implements [Prober]. Cache failures fall through to the inner
// prober.
func (p *CachedProber) Probe(path string) (int, int, error) {
	st, err := os.Stat(path)
	if err != nil {
		return p.inner.Probe(path)
	}
	key := p.keyer.DimensionsKey(path, st.Size(), st.ModTime())
	hooks := observability.Cache()

	if data, ok, err := p.cache.Get(p.ctx, key); err == nil && ok {
		if w, h, ok := parseDims(string(data)); ok {
			hooks.OnCacheHit(p.ctx, "dims")
			return w, h, nil
		}
	}
	hooks.OnCacheMiss(p.ctx, "dims")

	w, h, err := p.inner.Probe(path)
	if err != nil {
		return 0, 0, err
	}
	val := fmt.Sprintf("%dx%d", w, h)
	if err := cache.RetryWithBackoff(p.ctx, func() error {
		return p.cache.Set(p.ctx, key, []byte(val), p.ttl)
	}); err == nil {
		hooks.OnCacheSet(p.ctx, "dims", len(val))
	}
	return w, h, nil
}

func parseDims(s string) (int, int, bool) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// StaticProber returns fixed dimensions per path. It is useful for
// callers that already know image sizes.
type StaticProber map[string][2]int

// Probe implements [Prober].
func (s StaticProber) Probe(path string) (int, int, error) {
	d, ok := s[path]
	if !ok {
		return 0, 0, errs.New(errs.ErrCodeFileNotFound, "image not found: %s", path)
	}
	return d[0], d[1], nil
}
