// Package tui is a terminal host for the editor: a braille map that feeds
// mouse and keyboard input to a draw.Draw and paints what it renders.
package tui

import (
	"fmt"
	"os"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"geodraw/internal/config"
	"geodraw/internal/draw"
	"geodraw/internal/event"
)

type Options struct {
	Config config.Options
	Log    logrus.FieldLogger
	// Out is where "w" writes the drawing as GeoJSON.
	Out string
	// Path is loaded at launch when set.
	Path string
}

// activity holds the last notification from the editor. It is shared by
// pointer because bubbletea copies the model on every update.
type activity struct {
	msg string
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Editor
	cv   *canvas
	d    *draw.Draw
	cfg  config.Options
	log  logrus.FieldLogger
	out  string
	last *activity

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// layer visibility
	showPoints bool
	showLines  bool
	showPolys  bool
	showFill   bool

	// inspect popup
	inspectPopup string

	// pointer state
	mouseIn    bool
	hovering   bool
	hoverCellX int
	hoverCellY int
	hoverMark  bool
	hoverLon   float64
	hoverLat   float64

	// attributes table
	showAttrs bool
	tbl       table.Model
}

func New(opts Options) (Model, error) {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Out == "" {
		opts.Out = "drawing.geojson"
	}
	m := Model{
		helpVisible: true,
		status:      "geodraw ready",
		cv:          newCanvas(),
		cfg:         opts.Config,
		log:         opts.Log,
		out:         opts.Out,
		last:        &activity{},
		showPoints:  true,
		showLines:   true,
		showPolys:   true,
		showFill:    true,
	}
	last := m.last
	d, err := draw.New(m.cv,
		draw.WithOptions(opts.Config),
		draw.WithLogger(opts.Log),
		draw.WithErrorHandler(func(err error) {
			last.msg = "error: " + err.Error()
			opts.Log.WithError(err).Warn("input failed")
		}),
	)
	if err != nil {
		return Model{}, err
	}
	m.d = d
	m.cfg = d.Options()
	for _, t := range []event.Type{event.Create, event.Update, event.Delete, event.Select, event.Deselect} {
		d.On(t, func(ev event.Event) { last.msg = describe(ev) })
	}
	d.On(event.ModeChange, func(ev event.Event) { last.msg = "mode: " + ev.Mode })

	m.cwd, _ = os.Getwd()
	// list setup
	dl := list.NewDefaultDelegate()
	dl.ShowDescription = false
	m.l = list.New(nil, dl, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here (POINT, MULTIPOINT, LINESTRING, POLYGON). Press Enter to add; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	if opts.Path != "" {
		m.loadPath(opts.Path)
	}
	return m, nil
}

// describe renders a notification for the footer.
func describe(ev event.Event) string {
	ids := make([]string, len(ev.IDs))
	for i, id := range ev.IDs {
		ids[i] = shortID(id)
	}
	return fmt.Sprintf("%s %s", ev.Type, strings.Join(ids, ","))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (m Model) Init() tea.Cmd { return nil }

// Close detaches the editor from the canvas.
func (m Model) Close() { m.d.Close() }
