package commands

import (
	"path/filepath"
	"testing"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
)

func TestFilterOptionsBuild(t *testing.T) {
	f, err := FilterOptions{
		Layer:     "Wire",
		Direction: "out",
		Category:  "error",
		TimeStart: "2025-06-01T10:00:00Z",
	}.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if *f.Layer != log.LayerWire || *f.Direction != log.DirectionOut || *f.Category != log.CategoryError {
		t.Errorf("unexpected filter: %+v", f)
	}
	if !f.TimeStart.Equal(base) {
		t.Errorf("TimeStart = %v, want %v", f.TimeStart, base)
	}

	for _, bad := range []FilterOptions{
		{Layer: "service"},
		{Direction: "sideways"},
		{Category: "control"},
		{TimeEnd: "yesterday"},
	} {
		if _, err := bad.Build(); err == nil {
			t.Errorf("Build(%+v) = nil error, want error", bad)
		}
	}
}

func TestRunFilter(t *testing.T) {
	path := createTestLogFile(t, sampleSession())
	out := filepath.Join(t.TempDir(), "wire"+log.Extension)

	layer := log.LayerWire
	n, err := RunFilter(path, out, log.Filter{Layer: &layer})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("RunFilter wrote %d events, want 2", n)
	}

	events, err := log.ReadAll(out, log.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range events {
		if e.Layer != log.LayerWire {
			t.Errorf("unexpected layer %s in filtered output", e.Layer)
		}
	}
}
