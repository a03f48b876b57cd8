package experiment

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/constraint"
	"github.com/san-kum/pbdsim/internal/force"
	"github.com/san-kum/pbdsim/internal/particle"
)

const worldExtent = 50.0

var (
	worldMin = r3.Vec{X: -worldExtent, Y: -worldExtent, Z: -worldExtent}
	worldMax = r3.Vec{X: worldExtent, Y: worldExtent, Z: worldExtent}
)

// SceneFunc builds a scene from cfg, drawing any randomness from rng.
type SceneFunc func(cfg *config.Config, rng *rand.Rand) (*Scene, error)

func particles(cfg *config.Config, def int) int {
	if cfg.Particles > 0 {
		return cfg.Particles
	}
	return def
}

// Chain hangs a rope of links from a pinned head particle.
func Chain(cfg *config.Config, rng *rand.Rand) (*Scene, error) {
	n := particles(cfg, 200)
	link := cfg.Param("link", 1)
	gravity := cfg.Param("gravity", -0.05)

	sys, err := particle.New(n, cfg.Iterations)
	if err != nil {
		return nil, err
	}
	scene := newScene("chain", sys)

	head := r3.Vec{Y: worldExtent}
	idx := make([]int, 0, 2*n)
	sys.Each(func(i int) {
		if i == 0 {
			sys.SetPositionVec(i, head)
			return
		}
		sys.SetPosition(i,
			(rng.Float64()-0.5)*20,
			worldExtent-rng.Float64()*20,
			(rng.Float64()-0.5)*20)
		idx = append(idx, i-1, i)
	})

	if len(idx) > 0 {
		if err := sys.AddConstraint(constraint.NewDistance(link, idx...)); err != nil {
			return nil, err
		}
		scene.link(link, idx)
	}
	if err := scene.bound(worldMin, worldMax); err != nil {
		return nil, err
	}
	if err := sys.AddPinConstraint(constraint.NewPoint(head, 0)); err != nil {
		return nil, err
	}
	if err := scene.addForce("gravity", force.NewDirectional(r3.Vec{Y: gravity})); err != nil {
		return nil, err
	}
	return scene, nil
}

// Cloth is a grid of links pinned at its two top corners.
func Cloth(cfg *config.Config, rng *rand.Rand) (*Scene, error) {
	width := int(cfg.Param("width", 30))
	height := int(cfg.Param("height", 30))
	link := cfg.Param("link", 2)
	gravity := cfg.Param("gravity", -0.05)
	if width < 2 {
		width = 2
	}
	if height < 1 {
		height = 1
	}

	sys, err := particle.New(width*height, cfg.Iterations)
	if err != nil {
		return nil, err
	}
	scene := newScene("cloth", sys)

	var links, axis []int
	for h := 0; h < height; h++ {
		for w := 0; w < width; w++ {
			i := h*width + w
			if h > 0 {
				links = append(links, i-width, i)
			}
			if w > 0 {
				links = append(links, i-1, i)
			}
			if h == 0 && w > 0 && w < width-1 {
				axis = append(axis, i)
			}
		}
	}

	sys.Each(func(i int) {
		if i != 0 && i != width {
			sys.SetPosition(i,
				(rng.Float64()-0.5)*20,
				(rng.Float64()-0.5)*20,
				(rng.Float64()-0.5)*20)
		}
	})

	pinX := float64(width) * link * 0.5
	left, right := 0, width-1
	sys.SetWeight(left, 0)
	sys.SetWeight(right, 0)
	if err := sys.AddPinConstraint(constraint.NewPoint(r3.Vec{X: -pinX}, left)); err != nil {
		return nil, err
	}
	if err := sys.AddPinConstraint(constraint.NewPoint(r3.Vec{X: pinX}, right)); err != nil {
		return nil, err
	}

	if cfg.Param("axis", 0) != 0 && len(axis) > 0 {
		if err := sys.AddConstraint(constraint.NewAxis(left, right, axis...)); err != nil {
			return nil, err
		}
	}

	if err := sys.AddConstraint(constraint.NewDistance(link, links...)); err != nil {
		return nil, err
	}
	scene.link(link, links)

	if err := scene.bound(worldMin, worldMax); err != nil {
		return nil, err
	}
	if err := scene.addForce("gravity", force.NewDirectional(r3.Vec{Y: gravity})); err != nil {
		return nil, err
	}
	return scene, nil
}

var icosahedronStruts = []int{
	1, 3, 2, 0,
	5, 7, 6, 4,
	9, 11, 10, 8,
}

var icosahedronEdges = []int{
	0, 1, 2, 3,
	4, 5, 6, 7,
	8, 9, 10, 11,

	0, 11, 0, 10,
	1, 8, 1, 9,
	2, 10, 2, 11,
	3, 8, 3, 9,
	4, 2, 4, 3,
	5, 0, 5, 1,
	6, 2, 6, 3,
	7, 0, 7, 1,
	8, 6, 8, 7,
	9, 4, 9, 5,
	10, 6, 10, 7,
	11, 4, 11, 5,
}

func icosahedronVertices(radius float64) []float64 {
	t := (1 + math.Sqrt(5)) / 2
	verts := []float64{
		-1, t, 0, 1, t, 0, -1, -t, 0, 1, -t, 0,
		0, -1, t, 0, 1, t, 0, -1, -t, 0, 1, -t,
		t, 0, -1, t, 0, 1, -t, 0, -1, -t, 0, 1,
	}
	for i := range verts {
		verts[i] *= radius
	}
	return verts
}

// Icosahedron is a rigid frame of twelve particles held by edge and strut
// links at their initial lengths.
func Icosahedron(cfg *config.Config, _ *rand.Rand) (*Scene, error) {
	radius := cfg.Param("radius", 12)
	gravity := cfg.Param("gravity", -0.1)

	sys, err := particle.FromPositions(icosahedronVertices(radius), cfg.Iterations)
	if err != nil {
		return nil, err
	}
	scene := newScene("icosahedron", sys)

	links := append(append([]int{}, icosahedronEdges...), icosahedronStruts...)
	for i := 0; i+1 < len(links); i += 2 {
		a, b := links[i], links[i+1]
		rest := sys.Distance(a, b)
		if err := sys.AddConstraint(constraint.NewDistance(rest, a, b)); err != nil {
			return nil, err
		}
		scene.link(rest, links[i:i+2])
	}

	if err := scene.bound(worldMin, worldMax); err != nil {
		return nil, err
	}
	if err := scene.addForce("gravity", force.NewDirectional(r3.Vec{Y: gravity})); err != nil {
		return nil, err
	}
	return scene, nil
}

// Soup scatters linked triangles around a combined attractor and repulsor
// so they settle on a shell.
func Soup(cfg *config.Config, rng *rand.Rand) (*Scene, error) {
	n := particles(cfg, 300)
	n -= n % 3
	if n < 3 {
		n = 3
	}
	radius := cfg.Param("radius", 25)
	link := cfg.Param("link", 3)

	sys, err := particle.New(n, cfg.Iterations)
	if err != nil {
		return nil, err
	}
	scene := newScene("soup", sys)

	spread := radius * 2
	links := make([]int, 0, 2*n)
	for i := 0; i < n; i += 3 {
		cx := (rng.Float64() - 0.5) * spread
		cy := (rng.Float64() - 0.5) * spread
		cz := (rng.Float64() - 0.5) * spread
		for k := 0; k < 3; k++ {
			sys.SetPosition(i+k,
				cx+(rng.Float64()-0.5)*link,
				cy+(rng.Float64()-0.5)*link,
				cz+(rng.Float64()-0.5)*link)
		}
		links = append(links, i, i+1, i+1, i+2, i+2, i)
	}

	if err := sys.AddConstraint(constraint.NewDistance(link, links...)); err != nil {
		return nil, err
	}
	scene.link(link, links)

	if err := scene.bound(worldMin, worldMax); err != nil {
		return nil, err
	}

	field := force.NewPoint(r3.Vec{}, force.PointOptions{
		Kind:      force.AttractorRepulsor,
		Radius:    radius,
		Intensity: cfg.Param("intensity", force.DefaultIntensity),
	})
	if err := scene.addForce("field", field); err != nil {
		return nil, err
	}
	return scene, nil
}

// Empty creates particles at the origin with no forces or constraints. Use
// config forces, constraints and perturb to give it shape.
func Empty(cfg *config.Config, _ *rand.Rand) (*Scene, error) {
	sys, err := particle.New(particles(cfg, 1), cfg.Iterations)
	if err != nil {
		return nil, err
	}
	return newScene("empty", sys), nil
}
