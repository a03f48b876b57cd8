package particle

// Tick advances the system by one fixed step of delta: forces are
// accumulated, positions integrated, and constraints relaxed.
func (s *System) Tick(delta float64) {
	s.AccumulateForces(delta)
	s.Integrate(delta)
	s.SatisfyConstraints()
}

// AccumulateForces rebuilds the force buffer from the registered forces, in
// registration order.
func (s *System) AccumulateForces(_ float64) {
	f0 := s.AccumulatedForces
	p0 := s.Positions
	p1 := s.PositionsPrev

	for i := 0; i < s.count; i++ {
		ix := i * 3
		f0[ix] = 0
		f0[ix+1] = 0
		f0[ix+2] = 0

		for _, f := range s.forces {
			f.Apply(i, f0, p0, p1)
		}
	}
}

// Integrate performs a position Verlet step:
// next = p + (p - prev) + f * w * delta².
func (s *System) Integrate(delta float64) {
	d2 := delta * delta
	p0 := s.Positions
	p1 := s.PositionsPrev
	f0 := s.AccumulatedForces
	w0 := s.Weights

	for i := 0; i < s.count; i++ {
		w := w0[i]
		for ix := i * 3; ix < i*3+3; ix++ {
			pt := p0[ix]
			p0[ix] += pt - p1[ix] + f0[ix]*w*d2
			p1[ix] = pt
		}
	}
}

// SatisfyConstraints runs the configured number of relaxation iterations.
// Each iteration applies global constraints per particle, then local
// constraints per relation, then pins.
func (s *System) SatisfyConstraints() {
	for k := 0; k < s.iterations; k++ {
		s.satisfyGlobal()
		s.satisfyLocal()
		if len(s.pins) > 0 {
			s.satisfyPins()
		}
	}
}

func (s *System) satisfyGlobal() {
	if len(s.global) == 0 {
		return
	}
	p0, p1 := s.Positions, s.PositionsPrev
	for i := 0; i < s.count; i++ {
		for _, c := range s.global {
			c.Apply(i, p0, p1)
		}
	}
}

func (s *System) satisfyLocal() {
	p0, p1 := s.Positions, s.PositionsPrev
	for _, c := range s.local {
		for rel, n := 0, c.Len(); rel < n; rel++ {
			c.Apply(rel, p0, p1)
		}
	}
}

func (s *System) satisfyPins() {
	p0, p1 := s.Positions, s.PositionsPrev
	for _, c := range s.pins {
		if c.Global() {
			for i := 0; i < s.count; i++ {
				c.Apply(i, p0, p1)
			}
			continue
		}
		for rel, n := 0, c.Len(); rel < n; rel++ {
			c.Apply(rel, p0, p1)
		}
	}
}
