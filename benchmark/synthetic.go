package benchmark

import (
	"math/rand"

	"github.com/nvr-ai/go-blazeface/models/blazeface"
)

// SyntheticOutput builds a flat network output for cfg in which
// candidates randomly chosen anchors carry a confident logit and a plausible
// box. candidates is clamped to [0, BoxCount]. Every other anchor gets a logit far below any useful threshold.
// The same seed always yields the same output.
func SyntheticOutput(cfg blazeface.Config, candidates int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	coords := cfg.CoordCount()
	split := cfg.BoxCount * coords
	out := make([]float32, cfg.OutputSize())

	for i := 0; i < cfg.BoxCount; i++ {
		out[split+i] = -20
	}
	candidates = max(0, min(candidates, cfg.BoxCount))

	size := float32(cfg.InputWidth) / 4
	for _, idx := range rng.Perm(cfg.BoxCount)[:candidates] {
		reg := out[idx*coords : (idx+1)*coords]
		reg[0] = (rng.Float32() - 0.5) * size / 2
		reg[1] = (rng.Float32() - 0.5) * size / 2
		reg[2] = size * (0.5 + rng.Float32())
		reg[3] = size * (0.5 + rng.Float32())
		for k := 4; k < coords; k++ {
			reg[k] = (rng.Float32() - 0.5) * size
		}
		out[split+idx] = 2 + 6*rng.Float32()
	}
	return out
}
