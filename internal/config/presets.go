package config

import "sort"

var Presets = map[string]map[string]*Config{
	"chain": {
		"short": {
			Scene: "chain", Particles: 50, Iterations: 2, Delta: 1, Frames: 300, SampleEvery: 5, Seed: 1,
			Params: map[string]float64{"link": 1},
		},
		"long": {
			Scene: "chain", Particles: 200, Iterations: 2, Delta: 1, Frames: 600, SampleEvery: 10, Seed: 1,
			Params: map[string]float64{"link": 1},
		},
		"stiff": {
			Scene: "chain", Particles: 200, Iterations: 12, Delta: 1, Frames: 600, SampleEvery: 10, Seed: 1,
			Params: map[string]float64{"link": 1},
		},
	},
	"cloth": {
		"small": {
			Scene: "cloth", Iterations: 2, Delta: 1, Frames: 400, SampleEvery: 10, Seed: 1,
			Params: map[string]float64{"width": 12, "height": 12, "link": 2, "gravity": -0.05},
		},
		"large": {
			Scene: "cloth", Iterations: 2, Delta: 1, Frames: 600, SampleEvery: 10, Seed: 1,
			Params: map[string]float64{"width": 30, "height": 30, "link": 2, "gravity": -0.05},
		},
		"windy": {
			Scene: "cloth", Iterations: 4, Delta: 1, Frames: 600, SampleEvery: 10, Seed: 1,
			Params: map[string]float64{"width": 16, "height": 16, "link": 2, "gravity": -0.05},
			Forces: []ForceConfig{
				{Name: "wind", Type: "directional", Vector: []float64{0, 0, 0}},
			},
			Ramps: []RampConfig{
				{Force: "wind", Param: "z", From: 0, To: 0.04, Frames: 300, Ease: "in_out_sine"},
			},
		},
	},
	"icosahedron": {
		"drop": {
			Scene: "icosahedron", Iterations: 2, Delta: 1, Frames: 400, SampleEvery: 5, Seed: 1,
			Params: map[string]float64{"radius": 12, "gravity": -0.1},
		},
		"floor": {
			Scene: "icosahedron", Iterations: 4, Delta: 1, Frames: 400, SampleEvery: 5, Seed: 1,
			Params: map[string]float64{"radius": 12, "gravity": -0.1},
			Constraints: []ConstraintConfig{
				{Type: "bounding_plane", Origin: []float64{0, -30, 0}, Normal: []float64{0, 1, 0}},
			},
		},
	},
	"soup": {
		"shell": {
			Scene: "soup", Particles: 300, Iterations: 2, Delta: 1, Frames: 600, SampleEvery: 10, Seed: 1,
			Params: map[string]float64{"radius": 25, "link": 3},
		},
		"pulse": {
			Scene: "soup", Particles: 300, Iterations: 2, Delta: 1, Frames: 600, SampleEvery: 10, Seed: 1,
			Params: map[string]float64{"radius": 25, "link": 3},
			Ramps: []RampConfig{
				{Force: "field", Param: "radius", From: 25, To: 10, Frames: 300, Ease: "in_out_quad"},
				{Force: "field", Param: "radius", From: 10, To: 25, Frames: 300, Start: 300, Ease: "in_out_quad"},
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListScenes returns the scenes that have presets.
func ListScenes() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
