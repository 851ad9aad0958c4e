package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/votemap/pkg/geo"
	"github.com/vanderheijden86/votemap/pkg/model"
	"github.com/vanderheijden86/votemap/pkg/results"
)

const testDistricts = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"district":"Chennai"},"geometry":{"type":"Polygon","coordinates":[[[80,13],[80.4,13],[80.4,13.4],[80,13.4],[80,13]]]}}]}`

const testConstituencies = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"id":"1","name":"North"},"geometry":{"type":"Polygon","coordinates":[[[80,13],[80.2,13],[80.2,13.2],[80,13.2],[80,13]]]}},
 {"type":"Feature","properties":{"id":"2","name":"South"},"geometry":{"type":"Polygon","coordinates":[[[80.2,13],[80.4,13],[80.4,13.2],[80.2,13.2],[80.2,13]]]}}]}`

func snapshotLayers(t *testing.T) (*geo.DistrictLayer, *geo.ConstituencyLayer) {
	t.Helper()
	d, err := geo.ParseDistricts([]byte(testDistricts))
	if err != nil {
		t.Fatal(err)
	}
	c, err := geo.ParseConstituencies([]byte(testConstituencies))
	if err != nil {
		t.Fatal(err)
	}
	return d, c
}

func snapshotDataset() *model.ElectionDataset {
	return results.DeriveDataset(model.RawElection{
		Year: 2021,
		Constituencies: map[string]model.RawConstituency{
			"1": {Name: "North", Candidates: []model.Candidate{
				{Name: "A", Party: "DMK", Votes: 10, Winner: true},
				{Name: "B", Party: "AIADMK", Votes: 5},
			}},
		},
	})
}

func TestWriteMapSnapshot_SVG(t *testing.T) {
	d, c := snapshotLayers(t)
	var buf bytes.Buffer
	err := WriteMapSnapshot(&buf, "svg", MapSnapshotOptions{
		Districts:      d,
		Constituencies: c,
		Dataset:        snapshotDataset(),
		Width:          400,
		Height:         500,
	})
	if err != nil {
		t.Fatalf("WriteMapSnapshot: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<svg",
		"Tamil Nadu assembly election 2021",
		`data-id="1"`,
		`data-id="2"`,
		"fill:" + results.PartyColor("DMK"),
		"DMK+",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestWriteMapSnapshot_UncoloredHasNoLegend(t *testing.T) {
	d, c := snapshotLayers(t)
	var buf bytes.Buffer
	if err := WriteMapSnapshot(&buf, "svg", MapSnapshotOptions{Districts: d, Constituencies: c}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Seats") {
		t.Error("base map should not carry a results legend")
	}
	if !strings.Contains(buf.String(), "fill:#8b5cf6") {
		t.Error("base map should use the default constituency fill")
	}
}

func TestWriteMapSnapshot_PNG(t *testing.T) {
	d, c := snapshotLayers(t)
	var buf bytes.Buffer
	if err := WriteMapSnapshot(&buf, "png", MapSnapshotOptions{
		Districts: d, Constituencies: c, Dataset: snapshotDataset(), Width: 300, Height: 360,
	}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 360 {
		t.Errorf("size = %v", b)
	}
}

func TestWriteMapSnapshot_Errors(t *testing.T) {
	_, c := snapshotLayers(t)
	if err := WriteMapSnapshot(&bytes.Buffer{}, "svg", MapSnapshotOptions{}); err != ErrNoGeometry {
		t.Errorf("err = %v, want ErrNoGeometry", err)
	}
	if err := WriteMapSnapshot(&bytes.Buffer{}, "gif", MapSnapshotOptions{Constituencies: c}); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestSaveMapSnapshot_InfersFormat(t *testing.T) {
	d, c := snapshotLayers(t)
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantPath string
		magic    string
	}{
		{"svg extension", filepath.Join(dir, "map.svg"), filepath.Join(dir, "map.svg"), "<?xml"},
		{"png extension", filepath.Join(dir, "out", "map.png"), filepath.Join(dir, "out", "map.png"), "\x89PNG"},
		{"no extension", filepath.Join(dir, "plain"), filepath.Join(dir, "plain.svg"), "<?xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SaveMapSnapshot(MapSnapshotOptions{Path: tt.path, Districts: d, Constituencies: c, Width: 200, Height: 240})
			if err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(tt.wantPath)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(string(data), tt.magic) {
				t.Errorf("file starts with %q", data[:min(8, len(data))])
			}
		})
	}

	if err := SaveMapSnapshot(MapSnapshotOptions{Constituencies: c}); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestHexColor(t *testing.T) {
	c := hexColor("#ff8000", 0.5)
	if c.R != 0xff || c.G != 0x80 || c.B != 0 || c.A != 128 {
		t.Errorf("got %+v", c)
	}
	if bad := hexColor("nope", 1); bad.A != 255 || bad.R != 0x78 {
		t.Errorf("malformed color = %+v, want others color", bad)
	}
}
