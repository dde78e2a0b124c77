package layout

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	"github.com/matzehuels/openboard/pkg/geom"
)

// OverlayPrefix prefixes overlay layer names.
const OverlayPrefix = "Overlay_"

// FindOverlayFiles resolves path to overlay images. A file is returned as
// is; a folder yields its image files sorted by path. Anything else yields
// nil.
func FindOverlayFiles(path string) []string {
	if path == "" {
		return nil
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !st.IsDir() {
		return []string{path}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !canvas.IsImageFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files
}

// OverlayIndex picks the overlay for the cell at row and col. Single
// boards cycle through the overlays; spread boards alternate between the
// first and third overlay so the second can fill right-hand pages.
func OverlayIndex(row, col, cols, count int, ct board.CellType) int {
	if count <= 0 {
		return 0
	}
	n := (row-1)*cols + (col - 1)
	if ct == board.Spread {
		return ((n % 2) * 2) % count
	}
	return n % count
}

// PlaceOverlays draws overlay idx over cell c inside group. On spread
// boards a portrait overlay covers the left page and the next overlay, if
// any, the right page. Overlays whose size cannot be read count as
// landscape.
func PlaceOverlays(s canvas.Surface, group canvas.LayerID, c board.Cell, files []string, idx int, ct board.CellType, prober canvas.Prober, logger *log.Logger) error {
	if len(files) == 0 {
		return nil
	}
	idx %= len(files)
	path := files[idx]
	r := c.Bounds()

	orientation := board.Landscape
	if w, h, err := prober.Probe(path); err != nil {
		logger.Debug("overlay size unreadable, assuming landscape", "overlay", path, "err", err)
	} else if h > w {
		orientation = board.Portrait
	}

	if ct != board.Spread || orientation != board.Portrait {
		return placeOverlay(s, group, path, geom.XYWH(r.MinX, r.MinY, float64(int(r.Width())), float64(int(r.Height()))))
	}

	half := r.Width() / 2
	hw := float64(int(half))
	if err := placeOverlay(s, group, path, geom.XYWH(r.MinX, r.MinY, hw, float64(int(r.Height())))); err != nil {
		return err
	}
	if len(files) < 2 {
		return nil
	}
	next := files[(idx+1)%len(files)]
	return placeOverlay(s, group, next, geom.XYWH(float64(int(r.MinX+half)), r.MinY, hw, float64(int(r.Height()))))
}

func placeOverlay(s canvas.Surface, group canvas.LayerID, path string, rect geom.Rect) error {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	_, err := s.PlaceImage(group, canvas.ImageSpec{
		Name:   OverlayPrefix + stem,
		Source: path,
		Rect:   rect,
		Clip:   rect,
	})
	return err
}
