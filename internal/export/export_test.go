package export

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func samplePlot() Plot {
	return Plot{
		Title:  "energy <total>",
		XLabel: "time (fs)",
		YLabel: "E (eV)",
		Series: []Series{
			{Name: "kinetic", X: []float64{0, 1, 2, 3}, Y: []float64{1, 2, 1.5, 1.8}},
			{Name: "potential", X: []float64{0, 1, 2, 3}, Y: []float64{-3, -4, -3.5, -3.8}},
		},
	}
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, samplePlot(), 640, 400); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("not a complete svg document")
	}
	if got := strings.Count(out, "<path"); got != 2 {
		t.Errorf("expected 2 paths, got %d", got)
	}
	if !strings.Contains(out, "energy &lt;total&gt;") {
		t.Error("title not escaped")
	}
}

func TestSVGSkipsNonFinite(t *testing.T) {
	p := Plot{Series: []Series{{X: []float64{0, 1, 2, 3}, Y: []float64{1, math.NaN(), 2, 3}}}}
	var buf bytes.Buffer
	if err := SVG(&buf, p, 300, 200); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "NaN") {
		t.Error("NaN leaked into the path")
	}
}

func TestEmptyPlot(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, Plot{}, 100, 100); err != ErrEmptyPlot {
		t.Errorf("got %v, want ErrEmptyPlot", err)
	}
	if err := PNG(&buf, Plot{Series: []Series{{X: []float64{1}, Y: []float64{1}}}}, 100, 100); err != ErrEmptyPlot {
		t.Errorf("got %v, want ErrEmptyPlot", err)
	}
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(&buf, samplePlot(), 320, 200); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("size %v", b)
	}
}

func TestSnapshots(t *testing.T) {
	pts := [][3]float64{{1, 1, 1}, {5, 5, 5}, {9, 2, 8}}
	box := [3]float64{10, 10, 10}

	var svg bytes.Buffer
	if err := SnapshotSVG(&svg, pts, box, 200); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(svg.String(), "<circle"); got != 3 {
		t.Errorf("expected 3 circles, got %d", got)
	}

	var raster bytes.Buffer
	if err := SnapshotPNG(&raster, pts, box, 64); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&raster); err != nil {
		t.Fatal(err)
	}
	if err := SnapshotSVG(&svg, nil, box, 10); err != ErrEmptyPlot {
		t.Errorf("got %v", err)
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Headers: []string{"r", "g"}, Columns: [][]float64{{1, 2}, {0.5, 1.25}}}
	if err := CSV(&buf, tbl); err != nil {
		t.Fatal(err)
	}
	want := "r,g\n1,0.5\n2,1.25\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	bad := Table{Headers: []string{"a", "b"}, Columns: [][]float64{{1}, {1, 2}}}
	if err := CSV(&buf, bad); err == nil {
		t.Error("expected ragged table error")
	}
}

func TestXLSX(t *testing.T) {
	tables := []Table{
		{Name: "thermo", Headers: []string{"time", "T"}, Columns: [][]float64{{0, 2}, {90, 94.5}}},
		{Name: "rdf", Headers: []string{"r", "g"}, Columns: [][]float64{{3.5}, {2.7}}},
	}
	var buf bytes.Buffer
	if err := XLSX(&buf, tables, [][2]string{{"run", "argon-liquid_abc"}}); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != "thermo" || sheets[2] != "info" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("thermo")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][1] != "T" || rows[2][1] != "94.5" {
		t.Errorf("thermo rows = %v", rows)
	}
	v, err := f.GetCellValue("info", "B1")
	if err != nil || v != "argon-liquid_abc" {
		t.Errorf("info B1 = %q, %v", v, err)
	}
}
