// Package force defines the closed set of forces accumulated into a particle
// system's force buffer each tick.
package force

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/vec3"
)

var (
	// ErrNonFinite indicates a force parameter that is NaN or infinite.
	ErrNonFinite = errors.New("force: non-finite parameter")

	// ErrUnknownKind indicates an unrecognised point force kind.
	ErrUnknownKind = errors.New("force: unknown kind")
)

// Force adds a contribution for particle i into f0. Implementations never
// overwrite the slots, so forces compose by summation.
//
// The set is closed: Directional and Point are the only implementations.
type Force interface {
	Apply(i int, f0, p0, p1 []float64)
	Validate() error
	sealed()
}

// Kind selects the region in which a Point force is active.
type Kind int

const (
	Attractor Kind = iota
	Repulsor
	AttractorRepulsor
)

var kindNames = map[Kind]string{
	Attractor:         "attractor",
	Repulsor:          "repulsor",
	AttractorRepulsor: "attractor_repulsor",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a config name to a Kind. The empty string is an attractor.
func ParseKind(name string) (Kind, error) {
	if name == "" {
		return Attractor, nil
	}
	name = strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownKind, name)
}

func addVec(f0 []float64, i int, v r3.Vec) {
	ix := i * 3
	f0[ix] += v.X
	f0[ix+1] += v.Y
	f0[ix+2] += v.Z
}

func checkFinite(name string, v r3.Vec) error {
	if !vec3.Finite(v) {
		return fmt.Errorf("%w: %s %v", ErrNonFinite, name, v)
	}
	return nil
}
