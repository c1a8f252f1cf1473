package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/mfvec/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// Tuple returns one tuple with components in [0, 1).
func (r *RNG) Tuple() model.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.Vec3{r.rand.Float32(), r.rand.Float32(), r.rand.Float32()}
}

// UniformTuples generates num tuples with components in [0, 1).
func (r *RNG) UniformTuples(num int) []model.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()

	tuples := make([]model.Vec3, num)
	for i := range tuples {
		tuples[i] = model.Vec3{r.rand.Float32(), r.rand.Float32(), r.rand.Float32()}
	}
	return tuples
}

// RangeTuples generates num tuples with components in [minVal, maxVal).
func (r *RNG) RangeTuples(num int, minVal, maxVal float32) []model.Vec3 {
	flat := make([]float32, num*model.Components)
	r.FillUniformRange(flat, minVal, maxVal)
	return model.Pack(flat, num)
}

// UnitTuples generates num unit-length tuples, as used for normals.
func (r *RNG) UnitTuples(num int) []model.Vec3 {
	r.mu.Lock()
	defer r.mu.Unlock()

	tuples := make([]model.Vec3, num)
	for i := range tuples {
		for {
			v := model.Vec3{
				float32(r.rand.NormFloat64()),
				float32(r.rand.NormFloat64()),
				float32(r.rand.NormFloat64()),
			}
			norm := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
			if norm < 1e-6 {
				continue
			}
			tuples[i] = model.Vec3{v[0] / norm, v[1] / norm, v[2] / norm}
			break
		}
	}
	return tuples
}

// Flat generates num tuples in flat form (3*num floats in [0, 1)).
func (r *RNG) Flat(num int) []float32 {
	flat := make([]float32, num*model.Components)
	r.FillUniformRange(flat, 0, 1)
	return flat
}

// Grid returns n*n tuples on the z=0 plane, row-major, spaced by step.
// The values are exact, which keeps expectations readable.
func Grid(n int, step float32) []model.Vec3 {
	tuples := make([]model.Vec3, 0, n*n)
	for y := range n {
		for x := range n {
			tuples = append(tuples, model.Vec3{float32(x) * step, float32(y) * step, 0})
		}
	}
	return tuples
}
