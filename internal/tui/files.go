package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	"github.com/sirupsen/logrus"

	"geodraw/internal/geom"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// supported lists the extensions geom.Load understands.
var supported = map[string]bool{".geojson": true, ".json": true, ".csv": true, ".kml": true, ".wkt": true}

// refreshDir lists the loadable files of the working directory, sorted by
// name, into the file panel.
func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		m.log.WithError(err).WithField("dir", m.cwd).Warn("list failed")
		return
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && supported[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	m.items = make([]list.Item, 0, len(names))
	for _, name := range names {
		m.items = append(m.items, fileItem{
			title: name,
			desc:  strings.ToLower(filepath.Ext(name)),
			path:  filepath.Join(m.cwd, name),
		})
	}
	m.l.SetItems(m.items)
	if len(m.items) == 0 {
		m.status = "nothing to load in " + filepath.Base(m.cwd)
	}
}

// loadPath adds the features of a file to the drawing and frames them.
func (m *Model) loadPath(p string) {
	fs, err := geom.Load(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		m.log.WithError(err).WithField("path", p).Warn("load failed")
		return
	}
	m.selPath = p
	stored := map[string]bool{}
	for _, id := range m.d.Import(fs...) {
		stored[id] = true
	}
	m.cv.fit(fs)
	counts := map[geom.Kind]int{}
	for _, f := range fs {
		if stored[f.ID()] {
			counts[f.Kind()]++
		}
	}
	m.status = "loaded: " + filepath.Base(p) +
		fmt.Sprintf("  counts: pts=%d ls=%d poly=%d", counts[geom.KindPoint]+counts[geom.KindMultiPoint],
			counts[geom.KindLineString]+counts[geom.KindMultiLineString], counts[geom.KindPolygon]+counts[geom.KindMultiPolygon])
	m.log.WithFields(logrus.Fields{"path": p, "features": len(stored), "skipped": len(fs) - len(stored)}).Info("file loaded")
	if m.showAttrs {
		m.refreshAttrs()
	}
}
