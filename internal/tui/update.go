package tui

import (
	"fmt"
	"os"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"geodraw/internal/geom"
	"geodraw/internal/mode"
	"geodraw/internal/surface"
)

// tools maps keys to the modes they enter.
var tools = map[string]string{
	"s": mode.Select,
	"o": mode.DrawPoint,
	"n": mode.DrawLine,
	"g": mode.DrawPolygon,
	"r": mode.DrawRectangle,
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.d.Flush()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		lay := m.layout()
		m.cv.resize(lay.mapW, lay.mapH)
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, lay.contentH-2)
		}
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		if name, ok := tools[msg.String()]; ok {
			m.tool(name)
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.d.Close()
			return m, tea.Quit
		case "1":
			m.showPoints = !m.showPoints
			m.status = fmt.Sprintf("points: %v", m.showPoints)
		case "2":
			m.showLines = !m.showLines
			m.status = fmt.Sprintf("lines: %v", m.showLines)
		case "3":
			m.showPolys = !m.showPolys
			m.status = fmt.Sprintf("polys: %v", m.showPolys)
		case "4":
			m.showFill = !m.showFill
			m.status = fmt.Sprintf("fill: %v", m.showFill)
		case "l":
			all := m.showPoints && m.showLines && m.showPolys
			m.showPoints, m.showLines, m.showPolys = !all, !all, !all
			m.status = fmt.Sprintf("layers: pts=%v ls=%v poly=%v", m.showPoints, m.showLines, m.showPolys)
		case "+", "=":
			m.zoomBy(1.2)
		case "-", "_":
			m.zoomBy(1 / 1.2)
		case "f":
			if m.fitAll() {
				m.status = "fit to drawing"
			}
		case "tab":
			m.showSidebar = !m.showSidebar
			lay := m.layout()
			m.cv.resize(lay.mapW, lay.mapH)
			if m.showSidebar {
				m.refreshDir()
				m.l.SetSize(sidebarWidth-2, lay.contentH-2)
			}
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrs()
			}
		case "i":
			m.inspectPopup = m.inspect()
			m.status = "inspect popup"
		case "w":
			m.save()
		case "x":
			if !m.cfg.Controls.Trash {
				m.status = "trash is disabled"
				break
			}
			if err := m.d.Trash(); err != nil {
				m.status = "trash: " + err.Error()
			}
		case "esc":
			if m.inspectPopup != "" || m.showAttrs {
				m.inspectPopup = ""
				m.showAttrs = false
				return m, nil
			}
			m.cv.key(surface.KeyEscape)
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
				return m, nil
			}
			m.cv.key(surface.KeyEnter)
		case "backspace":
			m.cv.key(surface.KeyBackspace)
		case "delete":
			m.cv.key(surface.KeyDelete)
		case "up":
			m.cv.offsetY -= 1
		case "down":
			m.cv.offsetY += 1
		case "left":
			m.cv.offsetX -= 2
		case "right":
			m.cv.offsetX += 2
		}
	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		return *m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return *m, nil
		}
		fs, err := geom.ParseWKT(w)
		if err != nil {
			m.status = "wkt error: " + err.Error()
			return *m, nil
		}
		ids := m.d.Import(fs...)
		m.fitAll()
		m.status = fmt.Sprintf("added %d of %d features from WKT", len(ids), len(fs))
		m.pasteMode = false
		m.ta.Blur()
		return *m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return *m, cmd
}

// tool enters a mode when its control is enabled.
func (m *Model) tool(name string) {
	if !m.cfg.Controls.Allows(name) {
		m.status = name + " is disabled"
		return
	}
	if err := m.d.ChangeMode(name, mode.Options{}); err != nil {
		m.status = "mode: " + err.Error()
		return
	}
	m.status = "tool: " + name
}

func (m *Model) zoomBy(f float64) {
	z := m.cv.zoom * f
	if z > 64 || z < 0.05 {
		return
	}
	m.cv.zoom = z
	m.status = fmt.Sprintf("zoom: %.2fx", z)
}

// fitAll frames every committed feature.
func (m *Model) fitAll() bool {
	var fs []geom.Feature
	for _, gf := range m.d.GetAll().Features {
		if f, err := geom.FromFeature(gf); err == nil {
			fs = append(fs, f)
		}
	}
	return m.cv.fit(fs)
}

func (m *Model) save() {
	data, err := m.d.GetAll().MarshalJSON()
	if err != nil {
		m.status = "save error: " + err.Error()
		return
	}
	if err := os.WriteFile(m.out, data, 0o644); err != nil {
		m.status = "save error: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %d features to %s", len(m.d.GetAll().Features), m.out)
}

// updateMouse turns terminal mouse reports over the map into surface input.
func (m *Model) updateMouse(msg tea.MouseMsg) {
	lay := m.layout()
	cx, cy := msg.X-lay.mapX, msg.Y-lay.mapY
	if cx < 0 || cx >= lay.mapW || cy < 0 || cy >= lay.mapH || m.showAttrs || m.pasteMode {
		m.hovering = false
		if m.mouseIn {
			m.mouseIn = false
			m.cv.fire(surface.Event{Type: surface.MouseOut})
		}
		return
	}
	m.mouseIn = true
	p := surface.ScreenPoint{X: float64(cx), Y: float64(cy)}
	ev := surface.Event{Point: p, Shift: msg.Shift}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.zoomBy(1.2)
	case msg.Button == tea.MouseButtonWheelDown:
		m.zoomBy(1 / 1.2)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		ev.Type = surface.MouseDown
	case msg.Action == tea.MouseActionRelease:
		ev.Type = surface.MouseUp
	case msg.Action == tea.MouseActionMotion:
		ev.Type = surface.MouseMove
	}
	if ev.Type != "" {
		m.cv.fire(ev)
	}
	m.hover(p)
}

// hover tracks the pointer position and the handle or point under it.
func (m *Model) hover(p surface.ScreenPoint) {
	m.hovering = true
	ll := m.cv.Unproject(p)
	m.hoverLon, m.hoverLat = ll.Lng, ll.Lat
	m.hoverCellX, m.hoverCellY = int(p.X), int(p.Y)
	m.hoverMark = false
	hits, _ := m.cv.QueryFeaturesAt(p, surface.QueryOptions{Radius: m.cfg.QueryRadius})
	if len(hits) == 0 {
		return
	}
	top := hits[0]
	if top.Meta != surface.MetaVertex && top.Meta != surface.MetaMidpoint && top.Kind != geom.KindPoint {
		return
	}
	m.hoverMark = true
}
