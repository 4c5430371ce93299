// File: internal/motion/synthesizer.go

// Package motion synthesizes pointer trajectories that read as human to
// behavioral fingerprinting: a curved approach instead of a straight line,
// slow-fast-slow pacing instead of constant velocity, and positional noise
// that dies out exactly at the endpoints so the cursor never visibly snaps
// onto its target.
package motion

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// Config shapes the synthesized paths. Zero values are not usable; callers
// build it from the validated application config.
type Config struct {
	// MinSteps/MaxSteps bound the number of points per path (inclusive).
	MinSteps int
	MaxSteps int
	// ControlJitterX/Y bound the random offset of the Bezier control point
	// from the segment midpoint.
	ControlJitterX float64
	ControlJitterY float64
	// PointJitter is the maximum uniform per-point offset at the path middle.
	PointJitter float64
	// DriftAmplitude scales the low-frequency Perlin drift layered on top of
	// the per-point jitter.
	DriftAmplitude float64
}

// Synthesizer generates jittered point sequences between two coordinates.
// It is deterministic for a given seeded rand source.
type Synthesizer struct {
	cfg    Config
	rng    *rand.Rand
	noiseX *perlin.Perlin
	noiseY *perlin.Perlin
}

// driftFrequency controls how quickly the Perlin drift wanders along the
// path. Standard alpha/beta/n parameters below match common usage.
const driftFrequency = 0.8

// New creates a Synthesizer driven by the given rand source. Pass a source
// seeded from crypto-quality entropy in production and a fixed seed in tests.
func New(cfg Config, rng *rand.Rand) *Synthesizer {
	seed := rng.Int63()
	return &Synthesizer{
		cfg:    cfg,
		rng:    rng,
		noiseX: perlin.NewPerlin(2, 2, 3, seed),
		noiseY: perlin.NewPerlin(2, 2, 3, seed+1),
	}
}

// Steps draws a step count from the configured range.
func (s *Synthesizer) Steps() int {
	if s.cfg.MaxSteps <= s.cfg.MinSteps {
		return s.cfg.MinSteps
	}
	return s.cfg.MinSteps + s.rng.Intn(s.cfg.MaxSteps-s.cfg.MinSteps+1)
}

// Path returns an ordered point sequence from start to end with the given
// number of steps (the sequence has steps+1 points). The first point is
// exactly start and the last exactly end.
func (s *Synthesizer) Path(start, end Vector2D, steps int) []Vector2D {
	if steps < 2 {
		steps = 2
	}

	// One control point, offset from the midpoint by bounded jitter, bends
	// the whole path. A second-order curve is enough; higher orders add
	// wobble that real hands do not produce at this scale.
	control := start.Midpoint(end).Add(Vector2D{
		X: (s.rng.Float64() - 0.5) * 2 * s.cfg.ControlJitterX,
		Y: (s.rng.Float64() - 0.5) * 2 * s.cfg.ControlJitterY,
	})

	phase := s.rng.Float64() * 10 // decorrelates drift between paths

	path := make([]Vector2D, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		// Cosine easing: slow-fast-slow, the velocity profile of a real
		// reach, instead of linear t.
		eased := 0.5 - 0.5*math.Cos(math.Pi*t)
		p := quadBezier(start, control, end, eased)

		// Noise envelope: zero at both endpoints, maximal at the midpoint.
		envelope := 1 - math.Abs(2*t-1)
		p.X += (s.rng.Float64() - 0.5) * s.cfg.PointJitter * envelope
		p.Y += (s.rng.Float64() - 0.5) * s.cfg.PointJitter * envelope
		p.X += s.noiseX.Noise1D(phase+t*driftFrequency) * s.cfg.DriftAmplitude * envelope
		p.Y += s.noiseY.Noise1D(phase+t*driftFrequency) * s.cfg.DriftAmplitude * envelope

		path = append(path, p)
	}
	return path
}

// quadBezier evaluates a quadratic Bezier curve at parameter t.
func quadBezier(p0, p1, p2 Vector2D, t float64) Vector2D {
	omt := 1 - t
	return p0.Mul(omt * omt).Add(p1.Mul(2 * omt * t)).Add(p2.Mul(t * t))
}
