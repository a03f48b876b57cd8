package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/experiment"
)

// GridSearch evaluates every combination of parameter values and keeps the
// one that minimises a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Search runs one experiment per grid point. Failed points are recorded in
// the returned trials and skipped when choosing the best.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("got %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		trial := Trial{Params: params}
		defer func() { trials = append(trials, trial) }()

		exp, err := buildExperiment(params)
		if err != nil {
			trial.Err = err
			return
		}
		result, err := exp.Run(ctx)
		if err != nil {
			trial.Err = err
			return
		}
		val, ok := result.Metrics[metricName]
		if !ok {
			trial.Err = fmt.Errorf("unknown metric: %s", metricName)
			return
		}
		trial.Value = val
		if val < best {
			best = val
			bestParams = params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, fmt.Errorf("no grid point produced %s", metricName)
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(map[string]float64),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		eval(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies grid parameters onto a config. The top-level names
// iterations, particles, delta and perturb set those fields; anything else
// becomes a scene parameter.
func Apply(cfg *config.Config, params map[string]float64) *config.Config {
	out := cfg.Clone()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := params[name]
		switch name {
		case "iterations":
			out.Iterations = int(v)
		case "particles":
			out.Particles = int(v)
		case "delta":
			out.Delta = v
		case "perturb":
			out.Perturb = v
		default:
			if out.Params == nil {
				out.Params = make(map[string]float64)
			}
			out.Params[name] = v
		}
	}
	return out
}
