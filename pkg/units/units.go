// Package units converts physical lengths to canvas pixels.
package units

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a length unit accepted by board settings.
type Unit string

// Supported units.
const (
	Pixel      Unit = "px"
	Millimeter Unit = "mm"
	Centimeter Unit = "cm"
	Inch       Unit = "in"
	Point      Unit = "pt"
)

// DefaultDPI is used when a resolution is missing or not positive.
const DefaultDPI = 72.0

// ValidUnits is the set of supported units.
var ValidUnits = map[Unit]bool{
	Pixel:      true,
	Millimeter: true,
	Centimeter: true,
	Inch:       true,
	Point:      true,
}

// Parse normalizes s into a Unit. The empty string means pixels.
func Parse(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if u == "" {
		return Pixel, nil
	}
	if !ValidUnits[u] {
		return "", fmt.Errorf("invalid unit: %q (must be one of: px, mm, cm, in, pt)", s)
	}
	return u, nil
}

// ToPixels converts v in unit u to pixels at the given resolution.
//
// Unknown units are treated as pixels. NaN or infinite results become 0 so a
// bad input degrades to a zero length; callers that need a positive length
// must validate the result.
func ToPixels(v float64, u Unit, dpi float64) float64 {
	if math.IsNaN(dpi) || math.IsInf(dpi, 0) || dpi <= 0 {
		dpi = DefaultDPI
	}
	var px float64
	switch Unit(strings.ToLower(string(u))) {
	case Millimeter:
		px = v / 25.4 * dpi
	case Centimeter:
		px = v / 2.54 * dpi
	case Inch:
		px = v * dpi
	case Point:
		px = v / 72.0 * dpi
	default:
		px = v
	}
	if math.IsNaN(px) || math.IsInf(px, 0) {
		return 0
	}
	return px
}

// ToPixelsInt converts like ToPixels and truncates toward zero.
func ToPixelsInt(v float64, u Unit, dpi float64) int {
	return int(ToPixels(v, u, dpi))
}
