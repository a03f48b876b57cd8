// Package export renders canvases, stored frames and coordinate traces as
// SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/pbdsim/internal/metrics"
	"github.com/san-kum/pbdsim/internal/vec3"
	"github.com/san-kum/pbdsim/internal/viz"
)

const (
	background = "#0a0a0a"
	foreground = "#00ff00"
)

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG draws one circle per lit braille dot, scale units apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	dw, dh := canvas.Dots()
	var sb strings.Builder
	header(&sb, float64(dw)*scale, float64(dh)*scale)
	fmt.Fprintf(&sb, "<g fill=%q>\n", foreground)

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// FrameSVG projects a flat position buffer through cam and draws links as
// lines and particles as circles on a width x height image.
func FrameSVG(positions []float64, links []metrics.Link, cam *viz.Camera, width, height int) string {
	var sb strings.Builder
	header(&sb, float64(width), float64(height))

	n := vec3.Count(positions)
	type point struct {
		x, y int
		ok   bool
	}
	pts := make([]point, n)
	for i := range pts {
		x, y, _, ok := cam.Project(vec3.At(positions, i), width, height)
		pts[i] = point{x, y, ok}
	}

	fmt.Fprintf(&sb, "<g stroke=%q stroke-width=\"1\">\n", foreground)
	for _, l := range links {
		if l.A >= n || l.B >= n || !pts[l.A].ok || !pts[l.B].ok {
			continue
		}
		a, b := pts[l.A], pts[l.B]
		fmt.Fprintf(&sb, "<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\"/>\n", a.x, a.y, b.x, b.y)
	}
	sb.WriteString("</g>\n")

	fmt.Fprintf(&sb, "<g fill=%q>\n", foreground)
	for _, p := range pts {
		if p.ok {
			fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"2\"/>\n", p.x, p.y)
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesSVG draws values against times as a polyline with 10% padding.
func SeriesSVG(times, values []float64, width, height int, stroke string) string {
	n := min(len(times), len(values))
	if n < 2 {
		return ""
	}

	minX, maxX := times[0], times[0]
	minY, maxY := values[0], values[0]
	for i := 0; i < n; i++ {
		minX, maxX = min(minX, times[i]), max(maxX, times[i])
		minY, maxY = min(minY, values[i]), max(maxY, values[i])
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke=%q stroke-width="1.5" d="M`, stroke)
	for i := 0; i < n; i++ {
		x := (times[i] - minX) / rangeX * float64(width)
		y := float64(height) - (values[i]-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}
