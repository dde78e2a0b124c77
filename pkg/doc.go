// Package pkg provides the core libraries for OpenBoard image collage boards.
//
// # Overview
//
// An OpenBoard is a print canvas holding a regular grid of cells. Each cell
// receives one image, or two facing pages when the board uses spread cells.
// A board is made of two files: a layer document (<name>.canvas.json) and a
// descriptor (<name>.board) recording where the cells are.
//
// The typical data flow:
//
//	layout.Options (flags, TOML settings file or HTTP request)
//	         ↓
//	    [layout] package (grid geometry, structural layers, descriptor)
//	         ↓
//	    [importer] package (images → free cells, growing the grid when full)
//	         ↓                ↑
//	    [occupancy]     [placement]     [extend]
//	         ↓
//	    [captions] / [canvas] PNG rendering
//
// # Quick Start
//
//	doc := canvas.New("holiday", 1, 1, 300)
//	desc, _ := layout.Generate(ctx, layout.DefaultOptions(), doc)
//
//	res, _ := importer.Import(ctx, importer.Board{Descriptor: desc, Path: path, Surface: doc},
//	    images, importer.Options{AutoExtend: true})
//	fmt.Println(res.Placed, res.Failed, res.Extended)
//	_ = doc.Save(canvas.Path(dir, "holiday"))
//
// # Main Packages
//
// ## Board Model
//
// [board] - The descriptor: a metadata header plus one line per cell, with
// the reader and writer for the .board text format.
//
// [canvas] - The layer document the board is drawn into: groups, paint
// layers, placed images and text, JSON persistence and PNG rendering.
//
// [geom], [units] - Rectangles and unit conversion (px, mm, cm, in).
//
// ## Operations
//
// [layout] - Generates a board from options.
//
// [occupancy] - Decides which cells, or halves of spread cells, are taken
// by the images already on the canvas.
//
// [placement] - Scales and positions one image inside a cell.
//
// [extend] - Grows a board by a row or a column, moving every element
// below or to the right of the grid.
//
// [importer] - Places a batch of images, extending the board on demand.
//
// [captions] - Writes each placed image's name under its cell.
//
// ## Infrastructure
//
// [cache] - Image dimension cache with file, Redis and null backends.
//
// [state] - Stores the last extension direction per board (memory, file,
// Redis) so the alternate direction can flip between runs.
//
// [server] - HTTP API over the operations above.
//
// [observability] - Hooks for board operations, cache access and HTTP.
//
// [errors] - Coded errors shared by every package.
//
// [board]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/board
// [canvas]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/canvas
// [geom]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/geom
// [units]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/units
// [layout]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/layout
// [occupancy]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/occupancy
// [placement]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/placement
// [extend]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/extend
// [importer]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/importer
// [captions]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/captions
// [cache]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/cache
// [state]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/state
// [server]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/openboard/pkg/errors
package pkg
