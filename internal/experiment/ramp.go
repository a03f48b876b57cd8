package experiment

import (
	"fmt"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/force"
)

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in_quad":      ease.InQuad,
	"out_quad":     ease.OutQuad,
	"in_out_quad":  ease.InOutQuad,
	"in_cubic":     ease.InCubic,
	"out_cubic":    ease.OutCubic,
	"in_out_cubic": ease.InOutCubic,
	"in_out_sine":  ease.InOutSine,
	"out_bounce":   ease.OutBounce,
}

// Ramp tweens one force parameter, advancing one unit per frame from its
// start frame. It implements sim.Stepper.
type Ramp struct {
	Force string
	Param string

	tween *gween.Tween
	start int
	set   func(float64)
	done  bool
}

func NewRamp(scene *Scene, rc config.RampConfig) (*Ramp, error) {
	f, ok := scene.Forces[rc.Force]
	if !ok {
		return nil, fmt.Errorf("unknown force: %s", rc.Force)
	}

	var easing ease.TweenFunc = ease.Linear
	if rc.Ease != "" {
		fn, ok := easings[strings.ToLower(rc.Ease)]
		if !ok {
			return nil, fmt.Errorf("unknown easing: %s", rc.Ease)
		}
		easing = fn
	}

	set, err := setter(f, rc.Param)
	if err != nil {
		return nil, err
	}

	return &Ramp{
		Force: rc.Force,
		Param: rc.Param,
		tween: gween.New(float32(rc.From), float32(rc.To), float32(rc.Frames), easing),
		start: rc.Start,
		set:   set,
	}, nil
}

func (r *Ramp) Step(frame int) {
	if r.done || frame < r.start {
		return
	}
	v, done := r.tween.Update(1)
	r.set(float64(v))
	r.done = done
}

func (r *Ramp) Done() bool { return r.done }

func setter(f force.Force, param string) (func(float64), error) {
	switch f := f.(type) {
	case *force.Directional:
		switch param {
		case "x":
			return func(v float64) { f.Vector.X = v }, nil
		case "y":
			return func(v float64) { f.Vector.Y = v }, nil
		case "z":
			return func(v float64) { f.Vector.Z = v }, nil
		}
	case *force.Point:
		switch param {
		case "x":
			return func(v float64) { f.Position.X = v }, nil
		case "y":
			return func(v float64) { f.Position.Y = v }, nil
		case "z":
			return func(v float64) { f.Position.Z = v }, nil
		case "radius":
			return f.SetRadius, nil
		case "intensity":
			return func(v float64) { f.Intensity = v }, nil
		}
	}
	return nil, fmt.Errorf("force %T has no parameter %q", f, param)
}
