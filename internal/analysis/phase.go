package analysis

import (
	"strings"
)

type Point struct{ X, Y float64 }

// PhasePortrait pairs a coordinate with its rate of change.
type PhasePortrait struct {
	Points []Point
}

// NewPhasePortrait differentiates values over times with central
// differences. Endpoints use one-sided differences.
func NewPhasePortrait(times, values []float64) *PhasePortrait {
	n := min(len(times), len(values))
	portrait := &PhasePortrait{Points: make([]Point, 0, n)}
	if n < 2 {
		return portrait
	}

	for i := 0; i < n; i++ {
		lo, hi := max(i-1, 0), min(i+1, n-1)
		dt := times[hi] - times[lo]
		v := 0.0
		if dt != 0 {
			v = (values[hi] - values[lo]) / dt
		}
		portrait.Points = append(portrait.Points, Point{X: values[i], Y: v})
	}
	return portrait
}

// ASCII renders the portrait on a width by height grid with axes drawn
// where they cross the visible area.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which values rise through
// threshold.
func Crossings(times, values []float64, threshold float64) []float64 {
	n := min(len(times), len(values))
	out := make([]float64, 0)
	for i := 1; i < n; i++ {
		prev, curr := values[i-1], values[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}
