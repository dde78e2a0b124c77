package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/canvas"
	"github.com/matzehuels/openboard/pkg/importer"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders board names and headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleHighlight renders names inside messages.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleLink renders addresses.
	StyleLink  = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleNumber renders counters.
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(16)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// ui prints command results. Commands build one from cmd.OutOrStdout so
// output can be captured.
type ui struct {
	w io.Writer
}

func newUI(w io.Writer) *ui {
	return &ui{w: w}
}

func (u *ui) println(s string) {
	fmt.Fprintln(u.w, s)
}

func (u *ui) status(icon lipgloss.Style, glyph, format string, args ...any) {
	u.println(icon.Render(glyph) + " " + fmt.Sprintf(format, args...))
}

func (u *ui) success(format string, args ...any) {
	u.status(styleIconSuccess, iconSuccess, format, args...)
}

func (u *ui) error(format string, args ...any) {
	u.status(styleIconError, iconError, format, args...)
}

func (u *ui) warning(format string, args ...any) {
	u.status(StyleWarning, iconWarning, "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (u *ui) info(format string, args ...any) {
	u.status(styleIconInfo, iconInfo, format, args...)
}

// detail prints an indented secondary line.
func (u *ui) detail(format string, args ...any) {
	u.println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a path the command wrote.
func (u *ui) file(path string) {
	u.println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func (u *ui) keyValue(key, value string) {
	u.println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

func (u *ui) nextStep(description, cmd string) {
	u.println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func (u *ui) newline() {
	u.println("")
}

// grid prints the grid and canvas size of a board.
func (u *ui) grid(desc *board.Descriptor, doc *canvas.Document) {
	u.detail("%d x %d %s cells, canvas %d x %d px", desc.NbrCols(), desc.NbrRows(), desc.CellType(), doc.Width, doc.Height)
}

// stats prints batch counters on one line. Zero counters other than
// placed are left out.
func (u *ui) stats(res importer.Result) {
	parts := []string{StyleNumber.Render(fmt.Sprint(res.Placed)) + StyleDim.Render(" placed")}
	if res.Failed > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d failed", res.Failed)))
	}
	if res.Extended > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d extensions", res.Extended)))
	}
	u.println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}
