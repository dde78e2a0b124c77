// Package fonts provides the font faces used to measure and draw board text
// (legends, size info and image captions).
//
// The Go fonts from golang.org/x/image are compiled into the binary, so text
// metrics are identical on every machine and independent of installed
// system fonts.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Family selects one of the embedded fonts.
type Family string

const (
	Regular Family = "regular"
	Bold    Family = "bold"
)

// DPI at which faces are created. At 72 DPI one point equals one pixel, so a
// size passed to Face is a pixel size on the canvas.
const DPI = 72

var (
	parsed   = map[Family]*opentype.Font{}
	faces    = map[faceKey]font.Face{}
	mu       sync.Mutex
	fontData = map[Family][]byte{
		Regular: goregular.TTF,
		Bold:    gobold.TTF,
	}
)

type faceKey struct {
	family Family
	size   float64
}

// Face returns a cached face of the given family at size pixels.
func Face(family Family, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	mu.Lock()
	defer mu.Unlock()

	key := faceKey{family, size}
	if f, ok := faces[key]; ok {
		return f, nil
	}

	otf, ok := parsed[family]
	if !ok {
		data, known := fontData[family]
		if !known {
			return nil, fmt.Errorf("unknown font family %q", family)
		}
		var err error
		otf, err = opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", family, err)
		}
		parsed[family] = otf
	}

	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     DPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	faces[key] = face
	return face, nil
}

// Measure returns the advance width and line height of text set in the
// regular face at size pixels. An invalid size measures as zero.
func Measure(text string, size float64) (w, h float64) {
	face, err := Face(Regular, size)
	if err != nil {
		return 0, 0
	}
	mu.Lock()
	defer mu.Unlock()
	adv := font.MeasureString(face, text)
	m := face.Metrics()
	return fixedToFloat(adv), fixedToFloat(m.Ascent + m.Descent)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
