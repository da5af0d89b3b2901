package main

import (
	"encoding/json"
	"fmt"
	"io"

	geojson "github.com/paulmach/go.geojson"
	"github.com/spf13/cobra"

	"geodraw/internal/geom"
)

var summaryOnly bool

// inspectCmd loads files without the UI and prints them as one
// FeatureCollection.
var inspectCmd = &cobra.Command{
	Use:   "inspect file...",
	Short: "Print the features of GeoJSON, WKT, CSV or KML files as GeoJSON.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fc, all, err := loadAll(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if summaryOnly {
			return summarize(out, all)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(fc)
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&summaryOnly, "summary", false, "print counts and extent instead of GeoJSON")
}

func loadAll(paths []string) (*geojson.FeatureCollection, []geom.Feature, error) {
	fc := geojson.NewFeatureCollection()
	var all []geom.Feature
	for _, p := range paths {
		fs, err := geom.Load(p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		log.WithField("path", p).WithField("features", len(fs)).Debug("loaded")
		for _, f := range fs {
			fc.AddFeature(geom.ToFeature(f))
		}
		all = append(all, fs...)
	}
	return fc, all, nil
}

func summarize(out io.Writer, fs []geom.Feature) error {
	counts := map[geom.Kind]int{}
	for _, f := range fs {
		counts[f.Kind()]++
	}
	for _, k := range []geom.Kind{geom.KindPoint, geom.KindLineString, geom.KindPolygon,
		geom.KindMultiPoint, geom.KindMultiLineString, geom.KindMultiPolygon} {
		if counts[k] > 0 {
			fmt.Fprintf(out, "%-16s %d\n", k, counts[k])
		}
	}
	if bb, ok := geom.BBoxOf(fs); ok {
		fmt.Fprintf(out, "bbox             [%.6f, %.6f, %.6f, %.6f]\n", bb.MinX, bb.MinY, bb.MaxX, bb.MaxY)
	}
	return nil
}
