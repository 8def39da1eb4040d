package calculation

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"
)

// Stream names for the per-path RNG substreams. Market draws and each
// life's mortality draws come from separate streams so adding draws to
// one concern never perturbs the others.
const (
	StreamReturns         = "returns"
	StreamMortality       = "mortality"
	StreamMortalitySpouse = "mortality_spouse"
)

// seedFunc returns a pseudo-random master seed for runs that did not
// pin one (override for deterministic tests).
var seedFunc = func() int64 { return time.Now().UnixNano() }

// SetSeedFunc overrides the fallback seed source.
func SetSeedFunc(f func() int64) { seedFunc = f }

// PathRNG provides the isolated random streams for one simulated path.
//
// Derivation: masterSeed XOR fnv1a64("path_<index>") seeds the path,
// and each named stream further XORs fnv1a64(name). Two runs with the
// same master seed produce bit-for-bit identical paths regardless of
// how many workers execute them.
//
// Not thread-safe; each path runs on a single goroutine.
type PathRNG struct {
	pathSeed int64
	streams  map[string]*rand.Rand
}

// NewPathRNG derives the RNG bundle for one path index under a master
// seed.
func NewPathRNG(masterSeed int64, pathIndex int) *PathRNG {
	return &PathRNG{
		pathSeed: masterSeed ^ fnv1a64(fmt.Sprintf("path_%d", pathIndex)),
		streams:  make(map[string]*rand.Rand),
	}
}

// Stream returns the deterministically-seeded RNG for the named
// concern. The same name always returns the same cached *rand.Rand.
func (p *PathRNG) Stream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.pathSeed ^ fnv1a64(name)))
	p.streams[name] = rng
	return rng
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
