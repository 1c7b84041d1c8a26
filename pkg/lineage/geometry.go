package lineage

import "github.com/matzehuels/genealogy/pkg/errors"

// Point is a coordinate in output-image space (origin top-left, y down).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Canvas is the size of the output image in pixels.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Square returns a size x size canvas.
func Square(size float64) Canvas { return Canvas{Width: size, Height: size} }

// Validate rejects canvases without a positive area.
func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas must have positive dimensions, got %gx%g", c.Width, c.Height)
	}
	return nil
}
