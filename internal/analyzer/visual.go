package analyzer

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
)

// Rect is an input-field candidate located in a screenshot.
type Rect struct {
	X, Y, W, H int
}

// Geometry accepted for an input-field candidate. Rendered text fields
// are wide, short, and filled with a near-uniform light background.
const (
	minFieldWidth   = 100
	minFieldHeight  = 20
	maxFieldHeight  = 60
	minFieldAspect  = 2.5
	maxFieldAspect  = 10.0
	lightThreshold  = 180
	maxFieldStddev  = 40.0
	lightRowMinFill = 0.9
)

// DetectInputFields locates rectangles in a PNG screenshot that look
// like rendered form fields. It confirms that inputs found in the DOM
// are actually visible, not a pixel-accurate detector, so the
// thresholds favor precision over recall.
func DetectInputFields(path string) ([]Rect, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("visual: open screenshot: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("visual: decode screenshot: %w", err)
	}
	return detectFields(luminance(img)), nil
}

// grayImage is a luminance plane with O(1) pixel access.
type grayImage struct {
	pix  []uint8
	w, h int
}

func (g *grayImage) at(x, y int) uint8 {
	return g.pix[y*g.w+x]
}

func luminance(img image.Image) *grayImage {
	bounds := img.Bounds()
	g := &grayImage{
		w:   bounds.Dx(),
		h:   bounds.Dy(),
		pix: make([]uint8, bounds.Dx()*bounds.Dy()),
	}
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			r, gr, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// ITU-R BT.601 luma, inputs are 16-bit.
			lum := (299*r + 587*gr + 114*b) / 1000 >> 8
			g.pix[y*g.w+x] = uint8(lum)
		}
	}
	return g
}

func detectFields(g *grayImage) []Rect {
	var fields []Rect
	for y := 0; y < g.h; y += 4 {
		for _, run := range lightRuns(g, y) {
			if covered(fields, run.x0, y) {
				continue
			}
			rect, ok := expandRun(g, run, y)
			if !ok {
				continue
			}
			if !covered(fields, rect.X+rect.W/2, rect.Y+rect.H/2) {
				fields = append(fields, rect)
			}
		}
	}
	return fields
}

type run struct {
	x0, x1 int
}

// lightRuns returns the horizontal light-pixel runs in row y that are
// wide enough to be a field.
func lightRuns(g *grayImage, y int) []run {
	var runs []run
	start := -1
	for x := 0; x <= g.w; x++ {
		light := x < g.w && g.at(x, y) >= lightThreshold
		switch {
		case light && start < 0:
			start = x
		case !light && start >= 0:
			if x-start > minFieldWidth {
				runs = append(runs, run{x0: start, x1: x})
			}
			start = -1
		}
	}
	return runs
}

// expandRun grows a horizontal run vertically while the span stays
// light, then validates the resulting rectangle's geometry and
// uniformity.
func expandRun(g *grayImage, r run, y int) (Rect, bool) {
	top := y
	for top > 0 && lightFraction(g, r, top-1) >= lightRowMinFill {
		top--
	}
	bottom := y
	for bottom < g.h-1 && lightFraction(g, r, bottom+1) >= lightRowMinFill {
		bottom++
	}

	rect := Rect{X: r.x0, Y: top, W: r.x1 - r.x0, H: bottom - top + 1}
	if rect.H <= minFieldHeight || rect.H >= maxFieldHeight {
		return Rect{}, false
	}
	aspect := float64(rect.W) / float64(rect.H)
	if aspect <= minFieldAspect || aspect >= maxFieldAspect {
		return Rect{}, false
	}
	if regionStddev(g, rect) >= maxFieldStddev {
		return Rect{}, false
	}
	return rect, true
}

func lightFraction(g *grayImage, r run, y int) float64 {
	light := 0
	for x := r.x0; x < r.x1; x++ {
		if g.at(x, y) >= lightThreshold {
			light++
		}
	}
	return float64(light) / float64(r.x1-r.x0)
}

func regionStddev(g *grayImage, rect Rect) float64 {
	var sum, sumSq float64
	n := float64(rect.W * rect.H)
	for y := rect.Y; y < rect.Y+rect.H; y++ {
		for x := rect.X; x < rect.X+rect.W; x++ {
			v := float64(g.at(x, y))
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / n
	return math.Sqrt(sumSq/n - mean*mean)
}

func covered(fields []Rect, x, y int) bool {
	for _, f := range fields {
		if x >= f.X && x < f.X+f.W && y >= f.Y && y < f.Y+f.H {
			return true
		}
	}
	return false
}
