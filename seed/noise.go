package seed

import (
	"github.com/aquilax/go-perlin"

	"github.com/thejezzi/conway/model"
)

// Perlin shape parameters. Two octaves of smoothness are plenty for a cell
// grid; higher n only adds detail below one cell.
const (
	noiseAlpha = 2.
	noiseBeta  = 2.
	noiseN     = 3
)

// Noise builds a grid from thresholded 2D Perlin noise, producing organic
// clusters instead of the uniform speckle of random seeding. density in
// [0, 1] sets the approximate alive coverage and behaves exactly like the
// random-seeding boundary cases at 0 and 1. scale is the sampling
// frequency; smaller values give larger blobs. Deterministic per seed.
func Noise(width, height int, density, scale float64, seed int64) *model.Grid {
	grid := model.NewGrid(width, height)
	if density <= 0 {
		return grid
	}
	if scale <= 0 {
		scale = 0.1
	}

	p := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseN, seed)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Noise2D is roughly in [-1, 1]; remap to [0, 1] before
			// thresholding against the requested coverage.
			v := (p.Noise2D(float64(x)*scale, float64(y)*scale) + 1) / 2
			if density >= 1 || v < density {
				grid.Set(x, y, true)
			}
		}
	}

	return grid
}
