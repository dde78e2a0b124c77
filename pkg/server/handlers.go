package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/buildinfo"
	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/extend"
	"github.com/matzehuels/openboard/pkg/geom"
	"github.com/matzehuels/openboard/pkg/importer"
	"github.com/matzehuels/openboard/pkg/layout"
	"github.com/matzehuels/openboard/pkg/placement"
)

// =============================================================================
// Wire Types
// =============================================================================

// CellJSON is a cell as returned by the API.
type CellJSON struct {
	Index  int     `json:"index"`
	Row    int     `json:"row"`
	Col    int     `json:"col"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoardJSON is a board descriptor as returned by the API.
type BoardJSON struct {
	Name     string            `json:"name"`
	CellType string            `json:"cell_type"`
	Cols     int               `json:"cols"`
	Rows     int               `json:"rows"`
	Meta     map[string]string `json:"meta"`
	Cells    []CellJSON        `json:"cells"`
}

func boardJSON(d *board.Descriptor) BoardJSON {
	out := BoardJSON{
		Name:     d.Name(),
		CellType: string(d.CellType()),
		Cols:     d.NbrCols(),
		Rows:     d.NbrRows(),
		Meta:     d.Meta.Map(),
		Cells:    make([]CellJSON, 0, len(d.Cells)),
	}
	for _, c := range d.Cells {
		r := c.Bounds()
		out.Cells = append(out.Cells, CellJSON{
			Index: c.Index, Row: c.Row, Col: c.Col,
			X: r.MinX, Y: r.MinY, Width: r.Width(), Height: r.Height(),
		})
	}
	return out
}

// ExtendRequest is the body of POST /v1/boards/{name}/extend.
type ExtendRequest struct {
	Direction    string   `json:"direction"`
	OverlayFiles []string `json:"overlay_files,omitempty"`
}

// ImportRequest is the body of POST /v1/boards/{name}/import.
type ImportRequest struct {
	Images       []string `json:"images"`
	CellType     string   `json:"cell_type,omitempty"`
	ResizeMode   string   `json:"resize_mode,omitempty"`
	AutoExtend   bool     `json:"auto_extend,omitempty"`
	Direction    string   `json:"direction,omitempty"`
	OverlayFiles []string `json:"overlay_files,omitempty"`
}

// ImportResponse reports an import. Error is set when the batch stopped
// early.
type ImportResponse struct {
	Placed   int       `json:"placed"`
	Failed   int       `json:"failed"`
	Extended int       `json:"extended"`
	Error    string    `json:"error,omitempty"`
	Code     errs.Code `json:"code,omitempty"`
	Board    BoardJSON `json:"board"`
}

// PlanRequest is the body of POST /v1/plan.
type PlanRequest struct {
	Cell         CellJSON `json:"cell"`
	CellType     string   `json:"cell_type"`
	Side         string   `json:"side,omitempty"`
	Margin       float64  `json:"margin"`
	SourceWidth  int      `json:"source_width"`
	SourceHeight int      `json:"source_height"`
	ResizeMode   string   `json:"resize_mode,omitempty"`
}

// PlanResponse is a computed placement.
type PlanResponse struct {
	FinalWidth  int      `json:"final_width"`
	FinalHeight int      `json:"final_height"`
	TargetX     int      `json:"target_x"`
	TargetY     int      `json:"target_y"`
	Clip        CellJSON `json:"clip"`
	Side        string   `json:"side"`
	Orientation string   `json:"orientation"`
	FullCell    bool     `json:"full_cell"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	opts := layout.DefaultOptions()
	if !s.decode(w, r, &opts) {
		return
	}
	name, err := errs.ValidateBoardName(opts.BoardName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.BoardName = name
	opts.Destination = s.baseDir
	opts.Prober = s.cfg.Prober
	opts.Logger = s.cfg.Logger
	if opts.Logo, err = s.resolve(opts.Logo); err != nil {
		s.writeError(w, err)
		return
	}
	if opts.Overlay, err = s.resolve(opts.Overlay); err != nil {
		s.writeError(w, err)
		return
	}

	defer s.lock(name)()
	if _, err := os.Stat(board.Path(s.baseDir, name)); err == nil {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "board already exists: " + name})
		return
	}

	doc := canvas.New(name, 1, 1, opts.DPI)
	desc, err := layout.Generate(r.Context(), opts, doc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := doc.Save(canvas.Path(s.baseDir, name)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, boardJSON(desc))
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	name, ok := s.boardName(w, r)
	if !ok {
		return
	}
	desc, err := board.Read(board.Path(s.baseDir, name), nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardJSON(desc))
}

func (s *Server) handleExtend(w http.ResponseWriter, r *http.Request) {
	name, ok := s.boardName(w, r)
	if !ok {
		return
	}
	var req ExtendRequest
	if !s.decode(w, r, &req) {
		return
	}
	dir, err := extend.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, err)
		return
	}
	overlays, err := s.resolveAll(req.OverlayFiles)
	if err != nil {
		s.writeError(w, err)
		return
	}

	defer s.lock(name)()
	b, err := s.load(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc := b.Surface.(*canvas.Document)
	desc, err := extend.Extend(r.Context(), extend.Request{
		Board:        b.Descriptor,
		Path:         b.Path,
		Surface:      doc,
		Direction:    dir,
		Store:        s.cfg.Store,
		OverlayFiles: overlays,
		Prober:       s.cfg.Prober,
		Logger:       s.cfg.Logger,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := doc.Save(canvas.Path(s.baseDir, name)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardJSON(desc))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	name, ok := s.boardName(w, r)
	if !ok {
		return
	}
	var req ImportRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Images) == 0 {
		s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "no images given"))
		return
	}
	images, err := s.resolveAll(req.Images)
	if err != nil {
		s.writeError(w, err)
		return
	}
	overlays, err := s.resolveAll(req.OverlayFiles)
	if err != nil {
		s.writeError(w, err)
		return
	}
	dir, err := extend.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, err)
		return
	}

	defer s.lock(name)()
	b, err := s.load(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, ierr := importer.Import(r.Context(), b, images, importer.Options{
		CellType:     req.CellType,
		ResizeMode:   req.ResizeMode,
		AutoExtend:   req.AutoExtend,
		Direction:    dir,
		Store:        s.cfg.Store,
		OverlayFiles: overlays,
		Prober:       s.cfg.Prober,
		Logger:       s.cfg.Logger,
	})
	// Placed images stay on the canvas even when the batch stopped early.
	if res.Placed > 0 || res.Extended > 0 {
		if err := b.Surface.(*canvas.Document).Save(canvas.Path(s.baseDir, name)); err != nil {
			s.writeError(w, err)
			return
		}
	}

	resp := ImportResponse{Placed: res.Placed, Failed: res.Failed, Extended: res.Extended}
	if res.Board != nil {
		resp.Board = boardJSON(res.Board)
	}
	status := http.StatusOK
	if ierr != nil {
		status = statusFor(ierr)
		resp.Error = errs.UserMessage(ierr)
		resp.Code = errs.GetCode(ierr)
	}
	writeJSON(w, status, resp)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !s.decode(w, r, &req) {
		return
	}
	ct := board.Single
	if req.CellType != "" {
		v, err := errs.ValidateCellType(req.CellType)
		if err != nil {
			s.writeError(w, err)
			return
		}
		ct = board.CellType(v)
	}
	mode, err := placement.ParseResizeMode(req.ResizeMode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	side := board.Left
	if board.Side(req.Side) == board.Right {
		side = board.Right
	}
	if req.Cell.Width <= 0 || req.Cell.Height <= 0 {
		s.writeError(w, errs.New(errs.ErrCodeInvalidInput, "cell needs a positive width and height"))
		return
	}

	cell := board.NewCell(req.Cell.Index, geom.XYWH(req.Cell.X, req.Cell.Y, req.Cell.Width, req.Cell.Height))
	res, err := placement.Plan(placement.Request{
		Cell:         cell,
		CellType:     ct,
		Side:         side,
		Margin:       req.Margin,
		SourceWidth:  req.SourceWidth,
		SourceHeight: req.SourceHeight,
		Mode:         mode,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{
		FinalWidth:  res.FinalWidth,
		FinalHeight: res.FinalHeight,
		TargetX:     res.TargetX,
		TargetY:     res.TargetY,
		Clip: CellJSON{
			X: res.Clip.MinX, Y: res.Clip.MinY,
			Width: res.Clip.Width(), Height: res.Clip.Height(),
		},
		Side:        string(res.Side),
		Orientation: string(res.Orientation),
		FullCell:    res.FullCell,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// boardName reads and validates the {name} URL parameter.
func (s *Server) boardName(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "name")
	name, err := errs.ValidateBoardName(raw)
	if err == nil && name != raw {
		err = errs.New(errs.ErrCodeInvalidInput, "invalid board name: %q", raw)
	}
	if err != nil {
		s.writeError(w, err)
		return "", false
	}
	return name, true
}

// load reads a board and its canvas document from the base directory.
func (s *Server) load(name string) (importer.Board, error) {
	path := board.Path(s.baseDir, name)
	desc, err := board.Read(path, func(err error) {
		s.cfg.Logger.Warn("board line skipped", "board", name, "err", err)
	})
	if err != nil {
		return importer.Board{}, err
	}
	doc, err := canvas.Load(canvas.Path(s.baseDir, name))
	if err != nil {
		return importer.Board{}, err
	}
	return importer.Board{Descriptor: desc, Path: path, Surface: doc}, nil
}

func (s *Server) resolveAll(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := s.resolve(p)
		if err != nil {
			return nil, err
		}
		if abs == "" {
			return nil, errs.New(errs.ErrCodeInvalidPath, "empty path")
		}
		out = append(out, abs)
	}
	return out, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return false
		}
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: errs.UserMessage(err), Code: errs.GetCode(err)})
}

// statusFor maps an error code onto an HTTP status.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeConfiguration, errs.ErrCodeInvalidInput, errs.ErrCodeInvalidCellType,
		errs.ErrCodeInvalidResizeMode, errs.ErrCodeInvalidDirection, errs.ErrCodeInvalidPath,
		errs.ErrCodeParse:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound, errs.ErrCodeLayerNotFound:
		return http.StatusNotFound
	case errs.ErrCodeCorruptBoard, errs.ErrCodePlacementSkipped, errs.ErrCodeExtensionFailure,
		errs.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
