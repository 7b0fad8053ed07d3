// Package plotting renders manifold datasets as static figures with
// gonum/plot. Each trajectory becomes one line per feature, coloured by its
// cluster label.
package plotting

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Functional-Data-Clustering/Functional-Data/manifold"
)

// DefaultMaxTraj caps the number of trajectories drawn per figure.
const DefaultMaxTraj = 200

// Request describes what to plot. Either Data or Name must be set; when Data
// is nil the family called Name is generated first.
type Request[T manifold.Float] struct {
	Data *manifold.Dataset[T]
	Name string

	// MaxTraj limits the trajectories drawn; a larger dataset is subsampled
	// uniformly without replacement. Defaults to DefaultMaxTraj.
	MaxTraj int

	// Out is the figure path. The extension selects the format (png, svg,
	// pdf, eps, jpg, tif). Defaults to "<name>.png".
	Out string

	// Width and Height override the layout's default figure size.
	Width, Height vg.Length
}

// tab10 is matplotlib's default categorical palette.
var tab10 = []color.NRGBA{
	{R: 31, G: 119, B: 180, A: 230},
	{R: 255, G: 127, B: 14, A: 230},
	{R: 44, G: 160, B: 44, A: 230},
	{R: 214, G: 39, B: 40, A: 230},
	{R: 148, G: 103, B: 189, A: 230},
	{R: 140, G: 86, B: 75, A: 230},
	{R: 227, G: 119, B: 194, A: 230},
	{R: 127, G: 127, B: 127, A: 230},
	{R: 188, G: 189, B: 34, A: 230},
	{R: 23, G: 190, B: 207, A: 230},
}

// LabelColor returns the palette colour of a cluster label.
func LabelColor(label int32) color.Color {
	idx := int(label) % len(tab10)
	if idx < 0 {
		idx += len(tab10)
	}
	return tab10[idx]
}

// Plot renders req to a figure file. The layout depends on the feature count:
//   - 1 feature: a single time-series plot;
//   - 2 features: both time series plus an oblique 3D view of the
//     trajectories with time as the third axis;
//   - 3 or more: a two-column grid with one time-series plot per feature.
//
// The generator g produces the dataset when only a name is given and drives
// the subsampling.
func Plot[T manifold.Float](g *manifold.Generator[T], req Request[T]) error {
	if req.Data == nil && req.Name == "" {
		return manifold.ErrMissingArgument
	}
	if g == nil {
		return fmt.Errorf("generator is nil")
	}

	ds := req.Data
	if ds == nil {
		var err error
		ds, err = g.GenerateByName(req.Name)
		if err != nil {
			return err
		}
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("plot: %w", err)
	}

	maxTraj := req.MaxTraj
	if maxTraj < 1 {
		maxTraj = DefaultMaxTraj
	}
	ds, err := g.Subsample(ds, maxTraj)
	if err != nil {
		return err
	}

	title := req.Name
	if title == "" {
		title = "dataset"
	}
	out := req.Out
	if out == "" {
		out = title + ".png"
	}

	var (
		grid [][]*plot.Plot
		w, h vg.Length
	)
	switch {
	case ds.Features == 1:
		p, err := seriesPlot(ds, 0, title+" (1D)", "Feature value")
		if err != nil {
			return err
		}
		grid, w, h = [][]*plot.Plot{{p}}, 8*vg.Inch, 4*vg.Inch
	case ds.Features == 2:
		grid, err = twoFeatureLayout(ds, title)
		if err != nil {
			return err
		}
		w, h = 12*vg.Inch, 8*vg.Inch
	default:
		grid, err = featureGrid(ds, title)
		if err != nil {
			return err
		}
		w, h = 12*vg.Inch, vg.Length(4*len(grid))*vg.Inch
	}
	if req.Width > 0 {
		w = req.Width
	}
	if req.Height > 0 {
		h = req.Height
	}
	return save(grid, w, h, out)
}

// seriesPlot draws feature f of every trajectory against the time step.
func seriesPlot[T manifold.Float](ds *manifold.Dataset[T], f int, title, ylabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time step"
	p.Y.Label.Text = ylabel

	for i := range ds.Samples {
		xys := make(plotter.XYs, ds.Steps)
		for t, v := range ds.Series(i, f) {
			xys[t] = plotter.XY{X: float64(t), Y: float64(v)}
		}
		if err := addLine(p, xys, ds.Y[i]); err != nil {
			return nil, err
		}
	}
	addLegend(p, ds.Labels())
	return p, nil
}

// twoFeatureLayout is a 2x2 tile set: feature 0 and feature 1 over time on
// top, and the (f0, f1, time) embedding bottom left.
func twoFeatureLayout[T manifold.Float](ds *manifold.Dataset[T], title string) ([][]*plot.Plot, error) {
	p0, err := seriesPlot(ds, 0, title+" - Feature 0 vs Time", "Value")
	if err != nil {
		return nil, err
	}
	p1, err := seriesPlot(ds, 1, title+" - Feature 1 vs Time", "Value")
	if err != nil {
		return nil, err
	}
	p3, err := embeddingPlot(ds, title+" - 3D Trajectories (2 features + time)")
	if err != nil {
		return nil, err
	}
	return [][]*plot.Plot{{p0, p1}, {p3, nil}}, nil
}

// Oblique projection of the time axis onto the (f0, f1) plane.
const (
	obliqueAngle = math.Pi / 6
	obliqueDepth = 0.6
)

// embeddingPlot draws each trajectory in (feature 0, feature 1, time) space
// using an oblique projection: time recedes along a 30° axis, scaled so that
// the whole time range spans obliqueDepth of each feature's data range.
func embeddingPlot[T manifold.Float](ds *manifold.Dataset[T], title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Feature 0 (time receding at 30°)"
	p.Y.Label.Text = "Feature 1"

	sx, sy := featureRange(ds, 0), featureRange(ds, 1)
	denom := math.Max(1, float64(ds.Steps-1))
	dx := obliqueDepth * sx * math.Cos(obliqueAngle) / denom
	dy := obliqueDepth * sy * math.Sin(obliqueAngle) / denom

	for i := range ds.Samples {
		xys := make(plotter.XYs, ds.Steps)
		for t := range ds.Steps {
			xys[t] = plotter.XY{
				X: float64(ds.At(i, 0, t)) + dx*float64(t),
				Y: float64(ds.At(i, 1, t)) + dy*float64(t),
			}
		}
		if err := addLine(p, xys, ds.Y[i]); err != nil {
			return nil, err
		}
	}
	addLegend(p, ds.Labels())
	return p, nil
}

// featureGrid lays out one time-series plot per feature in two columns.
func featureGrid[T manifold.Float](ds *manifold.Dataset[T], title string) ([][]*plot.Plot, error) {
	const cols = 2
	rows := (ds.Features + cols - 1) / cols
	grid := make([][]*plot.Plot, rows)
	for r := range grid {
		grid[r] = make([]*plot.Plot, cols)
	}
	for f := range ds.Features {
		p, err := seriesPlot(ds, f, fmt.Sprintf("%s: Feature %d", title, f), fmt.Sprintf("f%d(t)", f))
		if err != nil {
			return nil, err
		}
		grid[f/cols][f%cols] = p
	}
	return grid, nil
}

func addLine(p *plot.Plot, xys plotter.XYs, label int32) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = LabelColor(label)
	line.Width = vg.Points(1)
	p.Add(line)
	return nil
}

func addLegend(p *plot.Plot, labels []int32) {
	for _, lbl := range labels {
		swatch := &plotter.Line{LineStyle: draw.LineStyle{Color: LabelColor(lbl), Width: vg.Points(2)}}
		p.Legend.Add(fmt.Sprint(lbl), swatch)
	}
	p.Legend.Top = true
}

// featureRange is the spread of feature f over the dataset, or 1 when flat.
func featureRange[T manifold.Float](ds *manifold.Dataset[T], f int) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range ds.Samples {
		for _, v := range ds.Series(i, f) {
			lo = math.Min(lo, float64(v))
			hi = math.Max(hi, float64(v))
		}
	}
	if span := hi - lo; span > 0 && !math.IsInf(span, 0) {
		return span
	}
	return 1
}

// save aligns the plot tiles on one canvas and writes it to path.
func save(grid [][]*plot.Plot, w, h vg.Length, path string) error {
	if len(grid) == 0 || len(grid[0]) == 0 || w <= 0 || h <= 0 {
		return fmt.Errorf("figure %s: empty layout", path)
	}
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return fmt.Errorf("figure %s: %w", path, err)
	}
	dc := draw.New(c)

	tiles := draw.Tiles{
		Rows:      len(grid),
		Cols:      len(grid[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, dc)
	for r, row := range grid {
		for col, p := range row {
			if p != nil {
				p.Draw(canvases[r][col])
			}
		}
	}

	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write figure %s: %w", path, err)
	}
	return f.Close()
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
