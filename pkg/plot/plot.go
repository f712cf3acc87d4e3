// Package plot draws frames of points the way the galvos would trace
// them, for inspecting a show without hardware.
package plot

import (
	"errors"
	"image"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/thelolagemann/galvo/pkg/dac"
)

// beam is the color of the path travelled while blanked.
var beam = color.Gray{Y: 200}

// XYs returns the position of every point in galvo units, [-1, 1].
func XYs(frame []dac.Point) plotter.XYs {
	xys := make(plotter.XYs, len(frame))
	for i, p := range frame {
		xys[i].X = float64(p.X) / math.MaxInt16
		xys[i].Y = float64(p.Y) / math.MaxInt16
	}
	return xys
}

// Lit returns the indices of the points that are not blanked.
func Lit(frame []dac.Point) []int {
	var lit []int
	for i, p := range frame {
		if p.R|p.G|p.B != 0 {
			lit = append(lit, i)
		}
	}
	return lit
}

// Trace returns a plot of frame: the whole beam path as a thin grey
// line, and every lit point in its own color.
func Trace(frame []dac.Point, title string) (*plot.Plot, error) {
	if len(frame) == 0 {
		return nil, errors.New("plot: empty frame")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.X.Min, p.X.Max = -1, 1
	p.Y.Min, p.Y.Max = -1, 1

	xys := XYs(frame)
	path, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	path.LineStyle.Color = beam
	path.LineStyle.Width = vg.Points(0.25)
	p.Add(path)

	lit := Lit(frame)
	if len(lit) == 0 {
		return p, nil
	}
	litXYs := make(plotter.XYs, len(lit))
	for i, idx := range lit {
		litXYs[i] = xys[idx]
	}
	points, err := plotter.NewScatter(litXYs)
	if err != nil {
		return nil, err
	}
	points.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		pt := frame[lit[i]]
		return draw.GlyphStyle{
			Color:  color.RGBA64{R: pt.R, G: pt.G, B: pt.B, A: math.MaxUint16},
			Radius: vg.Points(1),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(points)

	return p, nil
}

// Render draws frame onto an image of the given size in pixels.
func Render(frame []dac.Point, title string, width, height int) (*vgimg.Canvas, error) {
	p, err := Trace(frame, title)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := vgimg.NewWith(vgimg.UseImage(img))
	p.Draw(draw.New(c))
	return c, nil
}

// WritePNG renders frame and writes it to w as a PNG.
func WritePNG(w io.Writer, frame []dac.Point, title string, width, height int) error {
	c, err := Render(frame, title, width, height)
	if err != nil {
		return err
	}
	_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return err
}
