package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pbdsim/internal/particle"
)

// Link is a pair of particles with the separation a distance constraint
// is meant to hold.
type Link struct {
	A, B int
	Rest float64
}

// LinkResidual reports the mean absolute deviation of link lengths from
// their rest length, averaged over observed frames. Lower means stiffer.
type LinkResidual struct {
	name    string
	links   []Link
	scratch []float64
	sum     float64
	samples int
	last    float64
}

func NewLinkResidual(links []Link) *LinkResidual {
	return &LinkResidual{
		name:    "link_residual",
		links:   links,
		scratch: make([]float64, len(links)),
	}
}

func (m *LinkResidual) Name() string { return m.name }

func (m *LinkResidual) Observe(s *particle.System, _ int) {
	if len(m.links) == 0 {
		return
	}
	for i, l := range m.links {
		m.scratch[i] = math.Abs(s.Distance(l.A, l.B) - l.Rest)
	}
	m.last = stat.Mean(m.scratch, nil)
	m.sum += m.last
	m.samples++
}

func (m *LinkResidual) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

// Last is the residual of the most recent frame.
func (m *LinkResidual) Last() float64 { return m.last }

func (m *LinkResidual) Reset() {
	m.sum = 0
	m.samples = 0
	m.last = 0
}
