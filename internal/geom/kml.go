package geom

import (
	"encoding/xml"
	"errors"
	"os"
	"strconv"
	"strings"
)

// LoadKML extracts Point placemarks from a KML file (Placemark > Point > coordinates).
// KML coordinates are "lon,lat[,alt]"; we ignore altitude. The placemark
// name is kept as the "name" property.
func LoadKML(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	type kmlPoint struct {
		Coordinates string `xml:"coordinates"`
	}
	type kmlPlacemark struct {
		Name  string    `xml:"name"`
		Point *kmlPoint `xml:"Point"`
	}
	type kmlDoc struct {
		Placemarks []kmlPlacemark `xml:"Placemark"`
		Document   struct {
			Placemarks []kmlPlacemark `xml:"Placemark"`
		} `xml:"Document"`
	}

	var doc kmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var out []Feature
	for _, pm := range append(doc.Placemarks, doc.Document.Placemarks...) {
		if pm.Point == nil {
			continue
		}
		// coordinates may contain multiple tuples separated by spaces
		for _, tuple := range strings.Fields(pm.Point.Coordinates) {
			vals := strings.Split(tuple, ",")
			if len(vals) < 2 {
				continue
			}
			lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
			lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
			if err1 != nil || err2 != nil {
				continue
			}
			p := &Point{base: newBase(""), coord: [2]float64{lon, lat}, set: true}
			if pm.Name != "" {
				p.SetProperty("name", pm.Name)
			}
			p.SetPermanent(true)
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("kml: no points found")
	}
	return out, nil
}
