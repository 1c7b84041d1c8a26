package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/genealogy/pkg/lineage"
)

var (
	inspectHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	inspectCursorStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	inspectRootStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	inspectOrphanStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// InspectModel - Interactive epoch browser
// =============================================================================

// InspectModel is the bubbletea model of the inspect command. It shows one
// epoch at a time as a table of nodes in rank order.
type InspectModel struct {
	Title   string
	Columns []column
	Parents map[uint64]uint64 // child → resolved first parent
	Epoch   int
	Cursor  int
	Offset  int
	Height  int
}

// NewInspectModel builds a browser over d.
func NewInspectModel(title string, d lineage.Drawing) InspectModel {
	parents := make(map[uint64]uint64)
	for _, c := range d.Curves {
		if c.Kind == lineage.KindLineage {
			parents[c.Child] = c.Parent
		}
	}
	return InspectModel{
		Title:   title,
		Columns: columns(d),
		Parents: parents,
		Height:  15,
	}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m = m.selectEpoch(m.Epoch - 1)
		case "right", "l":
			m = m.selectEpoch(m.Epoch + 1)
		case "home", "g":
			m = m.selectEpoch(0)
		case "end", "G":
			m = m.selectEpoch(len(m.Columns) - 1)
		case "up", "k":
			m = m.moveCursor(m.Cursor - 1)
		case "down", "j":
			m = m.moveCursor(m.Cursor + 1)
		case "pgup":
			m = m.moveCursor(m.Cursor - m.Height)
		case "pgdown":
			m = m.moveCursor(m.Cursor + m.Height)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-9, 5)
		m = m.moveCursor(m.Cursor)
	}
	return m, nil
}

// selectEpoch switches to epoch e, keeping the cursor rank where possible.
func (m InspectModel) selectEpoch(e int) InspectModel {
	if e < 0 || e >= len(m.Columns) {
		return m
	}
	m.Epoch = e
	return m.moveCursor(m.Cursor)
}

// moveCursor clamps i to the current epoch and scrolls it into view.
func (m InspectModel) moveCursor(i int) InspectModel {
	n := len(m.nodes())
	i = min(i, n-1)
	i = max(i, 0)
	m.Cursor = i
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	m.Offset = max(min(m.Offset, n-m.Height), 0)
	return m
}

func (m InspectModel) nodes() []lineage.PlacedNode {
	if m.Epoch < 0 || m.Epoch >= len(m.Columns) {
		return nil
	}
	return m.Columns[m.Epoch].Nodes
}

// Selected returns the node under the cursor.
func (m InspectModel) Selected() (lineage.PlacedNode, bool) {
	nodes := m.nodes()
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return lineage.PlacedNode{}, false
	}
	return nodes[m.Cursor], true
}

// parentLabel describes the drawn parent of n.
func (m InspectModel) parentLabel(n lineage.PlacedNode) string {
	if p, ok := m.Parents[n.ID]; ok {
		return strconv.FormatUint(p, 10)
	}
	if n.Root {
		return "root"
	}
	return "unresolved"
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ epoch  ↑/↓ node  q quit"))
	b.WriteString("\n\n")

	if len(m.Columns) == 0 {
		b.WriteString(StyleDim.Render("no epochs"))
		return b.String()
	}

	col := m.Columns[m.Epoch]
	b.WriteString(fmt.Sprintf("Epoch %s of %d  %s\n",
		StyleValue.Render(strconv.Itoa(col.Epoch)), len(m.Columns),
		StyleDim.Render(fmt.Sprintf("x=%.1f · %d nodes", col.X, len(col.Nodes)))))

	end := min(m.Offset+m.Height, len(col.Nodes))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		n := col.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(n.Rank),
			strconv.FormatUint(n.ID, 10),
			m.parentLabel(n),
			fmt.Sprintf("%.1f", n.Y),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Rank", "ID", "Parent", "Y").
		Rows(rows...).
		StyleFunc(func(row, c int) lipgloss.Style {
			if row == -1 {
				return inspectHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(col.Nodes) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return inspectCursorStyle
			}
			if c == 3 {
				switch m.parentLabel(col.Nodes[idx]) {
				case "root":
					return inspectRootStyle
				case "unresolved":
					return inspectOrphanStyle
				}
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if len(col.Nodes) > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(col.Nodes))))
	}
	return b.String()
}
