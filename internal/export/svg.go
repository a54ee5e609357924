// Package export renders canvases, particle snapshots and metric series as SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/pmsim/internal/particles"
	"github.com/san-kum/pmsim/internal/viz"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, w, h float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background)
}

// CanvasToSVG draws every lit braille dot as a circle, scale pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	var sb strings.Builder
	header(&sb, float64(canvas.DotsWide())*scale, float64(canvas.DotsHigh())*scale)
	sb.WriteString(`<g fill="#b07cff">` + "\n")
	r := scale * 0.4
	for y := 0; y < canvas.DotsHigh(); y++ {
		for x := 0; x < canvas.DotsWide(); x++ {
			if canvas.Lit(x, y) {
				fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SnapshotToSVG projects the population through cam onto a width x height
// image. Dot radius grows with particle radius, relative to the largest.
func SnapshotToSVG(s *particles.Store, cam *viz.Camera, width, height int) string {
	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	sb.WriteString(`<g fill="#ffd1ff" fill-opacity="0.8">` + "\n")
	maxR := 0.0
	if s.Len() > 0 {
		maxR = floats.Max(s.R)
	}
	for i := 0; i < s.Len(); i++ {
		x, y, ok := cam.Project(r3.Vec{X: s.X[i], Y: s.Y[i], Z: s.Z[i]}, width, height)
		if !ok {
			continue
		}
		r := 0.6
		if maxR > 0 {
			r += 2.4 * math.Sqrt(s.R[i]/maxR)
		}
		fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="%.1f"/>`+"\n", x, y, r)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG draws values as a polyline against their index.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}
	minY, maxY := floats.Min(values), floats.Max(values)
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)
	n := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / n * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString(`"/>` + "\n</svg>")
	return sb.String()
}
