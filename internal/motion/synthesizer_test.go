// File: internal/motion/synthesizer_test.go
package motion

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		MinSteps:       20,
		MaxSteps:       32,
		ControlJitterX: 80,
		ControlJitterY: 40,
		PointJitter:    3,
		DriftAmplitude: 1.5,
	}
}

func TestPathEndpointsAreExact(t *testing.T) {
	s := New(testConfig(), rand.New(rand.NewSource(1)))
	start := Vector2D{X: 100, Y: 200}
	end := Vector2D{X: 640, Y: 420}

	path := s.Path(start, end, 28)
	require.Len(t, path, 29)
	assert.Equal(t, start, path[0], "first point must be exactly the start")
	assert.Equal(t, end, path[len(path)-1], "last point must be exactly the end")
}

func TestPathIsDeterministicForSeed(t *testing.T) {
	a := New(testConfig(), rand.New(rand.NewSource(42)))
	b := New(testConfig(), rand.New(rand.NewSource(42)))

	pa := a.Path(Vector2D{X: 0, Y: 0}, Vector2D{X: 500, Y: 300}, 24)
	pb := b.Path(Vector2D{X: 0, Y: 0}, Vector2D{X: 500, Y: 300}, 24)
	assert.Equal(t, pa, pb)

	c := New(testConfig(), rand.New(rand.NewSource(43)))
	pc := c.Path(Vector2D{X: 0, Y: 0}, Vector2D{X: 500, Y: 300}, 24)
	assert.NotEqual(t, pa, pc, "different seeds should bend the path differently")
}

func TestPathIsNotLinear(t *testing.T) {
	s := New(testConfig(), rand.New(rand.NewSource(7)))
	start := Vector2D{X: 50, Y: 50}
	end := Vector2D{X: 850, Y: 50}

	path := s.Path(start, end, 30)

	// A straight-line synthetic path keeps every point on the segment; a
	// human-like one bows away from it somewhere in the middle.
	var maxDeviation float64
	for _, p := range path {
		maxDeviation = math.Max(maxDeviation, math.Abs(p.Y-50))
	}
	assert.Greater(t, maxDeviation, 1.0, "path should deviate from the straight segment")
}

func TestPathEasingIsSlowFastSlow(t *testing.T) {
	s := New(testConfig(), rand.New(rand.NewSource(11)))
	path := s.Path(Vector2D{X: 0, Y: 0}, Vector2D{X: 1000, Y: 0}, 30)

	first := path[1].Dist(path[0])
	mid := path[16].Dist(path[15])
	last := path[len(path)-1].Dist(path[len(path)-2])

	assert.Greater(t, mid, first*2, "midpath steps should be much longer than the first step")
	assert.Greater(t, mid, last*2, "midpath steps should be much longer than the last step")
}

func TestPathMonotonicProgress(t *testing.T) {
	s := New(testConfig(), rand.New(rand.NewSource(3)))
	start := Vector2D{X: 0, Y: 0}
	end := Vector2D{X: 900, Y: 500}
	path := s.Path(start, end, 26)

	// Distance to the target should broadly shrink; allow small jitter
	// reversals but no wholesale backtracking.
	prev := path[0].Dist(end)
	for i, p := range path[1:] {
		d := p.Dist(end)
		assert.Less(t, d, prev+25, "step %d backtracks too far", i+1)
		prev = d
	}
	assert.Less(t, prev, 1e-9)
}

func TestStepsStayInRange(t *testing.T) {
	s := New(testConfig(), rand.New(rand.NewSource(5)))
	for i := 0; i < 200; i++ {
		n := s.Steps()
		assert.GreaterOrEqual(t, n, 20)
		assert.LessOrEqual(t, n, 32)
	}
}

func TestPathClampsTinyStepCounts(t *testing.T) {
	s := New(testConfig(), rand.New(rand.NewSource(9)))
	path := s.Path(Vector2D{}, Vector2D{X: 10, Y: 10}, 0)
	require.Len(t, path, 3)
	assert.Equal(t, Vector2D{X: 10, Y: 10}, path[len(path)-1])
}
