package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Keyer builds cache keys.
type Keyer interface {
	// DimensionsKey identifies the probed dimensions of one version of a
	// file.
	DimensionsKey(path string, size int64, modTime time.Time) string
}

// DefaultKeyer produces unprefixed keys of the form "dims:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DimensionsKey implements [Keyer].
func (DefaultKeyer) DimensionsKey(path string, size int64, modTime time.Time) string {
	id := strings.Join([]string{
		path,
		strconv.FormatInt(size, 10),
		strconv.FormatInt(modTime.UTC().UnixNano(), 10),
	}, "\x00")
	return "dims:" + Hash([]byte(id))
}

// ScopedKeyer prefixes the keys of another Keyer so several applications
// can share one Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DimensionsKey implements [Keyer].
func (k *ScopedKeyer) DimensionsKey(path string, size int64, modTime time.Time) string {
	return k.prefix + k.inner.DimensionsKey(path, size, modTime)
}
