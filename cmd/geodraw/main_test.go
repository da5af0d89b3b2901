package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInspectSummary(t *testing.T) {
	dir := t.TempDir()
	wkt := filepath.Join(dir, "shapes.wkt")
	if err := os.WriteFile(wkt, []byte("POLYGON ((0 0, 4 0, 4 3, 0 0))"), 0o644); err != nil {
		t.Fatal(err)
	}
	csv := filepath.Join(dir, "sites.csv")
	if err := os.WriteFile(csv, []byte("name,lat,lon\na,1,2\nb,-1,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"inspect", "--summary", "--env", filepath.Join(dir, "none.env"), wkt, csv})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"Point            2", "Polygon          1", "bbox             [0.000000, -1.000000, 5.000000, 3.000000]"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestStartupRejectsBadLogLevel(t *testing.T) {
	rootCmd.SetArgs([]string{"inspect", "--log-level", "loud", "x.wkt"})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetOut(&bytes.Buffer{})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error for bad log level")
	}
}
