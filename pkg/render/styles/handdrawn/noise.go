package handdrawn

import (
	"math"
	"math/rand/v2"
)

const noiseSize = 256

// noise is seeded 2D value noise in [0, 1] with smoothstep interpolation.
type noise struct {
	perm   [2 * noiseSize]int
	values [noiseSize]float64
}

func newNoise(seed uint64) *noise {
	rng := rand.New(rand.NewPCG(seed, seed^0xda942042e4dd58b5))
	n := &noise{}
	p := rng.Perm(noiseSize)
	for i := range noiseSize {
		n.perm[i] = p[i]
		n.perm[i+noiseSize] = p[i]
		n.values[i] = rng.Float64()
	}
	return n
}

func (n *noise) lattice(x, y int) float64 {
	return n.values[n.perm[n.perm[x&(noiseSize-1)]+(y&(noiseSize-1))]]
}

func smooth(t float64) float64 { return t * t * (3 - 2*t) }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func (n *noise) at(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	ix, iy := int(fx), int(fy)
	tx, ty := smooth(x-fx), smooth(y-fy)

	top := lerp(n.lattice(ix, iy), n.lattice(ix+1, iy), tx)
	bottom := lerp(n.lattice(ix, iy+1), n.lattice(ix+1, iy+1), tx)
	return lerp(top, bottom, ty)
}
