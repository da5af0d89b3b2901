package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 28

type layout struct {
	contentW, contentH int
	mapX, mapY         int
	mapW, mapH         int
}

// layout must match how View stacks header, sidebar, map and footer.
func (m Model) layout() layout {
	headerHeight := 1
	footerHeight := 2
	l := layout{contentW: max(10, m.width), contentH: max(4, m.height-headerHeight-footerHeight)}
	l.mapY = headerHeight
	l.mapW = l.contentW - 1
	if m.showSidebar {
		l.mapX = sidebarWidth + 1
		l.mapW -= sidebarWidth
	}
	l.mapW = max(10, l.mapW)
	l.mapH = l.contentH
	return l
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lay := m.layout()

	// Header
	header := titleStyle.Render(" geodraw ─ terminal map editor ")
	header = lipgloss.NewStyle().Width(lay.contentW).Padding(0).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	var mapView string
	if m.showAttrs {
		// infer a reasonable width from columns
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		if colW == 0 {
			colW = min(60, lay.contentW-6)
		}
		maxW := min(lay.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(lay.mapH-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	} else {
		var canvas string
		if m.pasteMode {
			m.ta.SetWidth(lay.mapW)
			m.ta.SetHeight(min(lay.mapH, 12))
			canvas = m.ta.View()
		} else {
			canvas = m.renderAsciiMap(lay.mapW, lay.mapH)
		}
		mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).Render(canvas)
	}

	// inspect popup (center-left overlay)
	popup := ""
	if m.inspectPopup != "" && !m.showAttrs {
		maxPopupW := max(20, min(48, lay.contentW/2))
		box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MaxWidth(maxPopupW).Render(m.inspectPopup)
		popup = lipgloss.Place(lay.contentW, lay.contentH, lipgloss.Left, lipgloss.Center, box)
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	// Footer: mode, status and last editor notification, then help
	mode := modeStyle.Render(" [" + m.d.Mode() + "]")
	status := dimStyle.Render(" " + m.status + " ")
	if m.last.msg != "" {
		status += dimStyle.Render("· " + m.last.msg + " ")
	}
	coords := ""
	if m.hovering {
		coords = dimStyle.Render(fmt.Sprintf("  lon=%.5f lat=%.5f  ", m.hoverLon, m.hoverLat))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, mode, status)
	spacerW := max(0, lay.contentW-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.NewStyle().Width(lay.contentW).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))
	footer = lipgloss.JoinVertical(lipgloss.Left, footer, m.renderHelp())

	ui := lipgloss.JoinVertical(lipgloss.Left, header, popup, body, footer)
	return appStyle.Width(lay.contentW).Height(m.height).Render(ui)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"s select",
		"o point",
		"n line",
		"g polygon",
		"r rect",
		"⌫/x trash",
		"w save",
		"↑↓←→ pan",
		"+/- zoom",
		"f fit",
		"Tab files",
		"p paste",
		"a attrs",
		"i inspect",
		"1-4 layers",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
