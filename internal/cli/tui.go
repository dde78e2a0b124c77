package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/openboard/pkg/board"
	"github.com/matzehuels/openboard/pkg/importer"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ModeListModel - Interactive import mode selection
// =============================================================================

// modeDescriptions explains each import mode in the picker.
var modeDescriptions = map[importer.Mode]string{
	importer.ModeFolder:  "every image in a folder (" + strings.Join(importer.FolderExtensions, ", ") + ")",
	importer.ModeSingle:  "one image file",
	importer.ModePattern: "files of a folder matching a pattern (default " + importer.DefaultPattern + ")",
}

// ModeListModel is the bubbletea model for picking an import mode.
type ModeListModel struct {
	Modes    []importer.Mode
	Cursor   int
	Selected importer.Mode
}

// NewModeListModel creates a picker over all import modes.
func NewModeListModel() ModeListModel {
	return ModeListModel{Modes: importer.Modes}
}

func (m ModeListModel) Init() tea.Cmd {
	return nil
}

func (m ModeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Modes)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Modes[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ModeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Import Mode"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, mode := range m.Modes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-8s  %s", cursor, mode, listDimStyle.Render(modeDescriptions[mode]))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Cell Table
// =============================================================================

// cellTable renders the cells of a board as a bordered table.
func cellTable(cells []board.Cell) string {
	rows := make([][]string, 0, len(cells))
	for _, c := range cells {
		r := c.Bounds()
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Index),
			fmt.Sprintf("R%dC%d", c.Row, c.Col),
			fmt.Sprintf("%.0f, %.0f", r.MinX, r.MinY),
			fmt.Sprintf("%.0f x %.0f", r.Width(), r.Height()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Cell", "Position", "Top-left", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})
	return t.Render()
}
