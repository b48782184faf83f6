package nonce

import "sync"

// tableSize is the length of the precomputed nonce sequence, matching the
// pod's own internal nonce table length.
const tableSize = 16

// Generator produces the deterministic nonce sequence a pod expects,
// seeded from its lot and serial numbers.
type Generator struct {
	mu     sync.Mutex
	table  [tableSize]uint32
	cursor int
}

// New seeds a Generator from a pod's lot and serial number, the way the
// pod itself derives its expected nonce sequence at pairing time.
func New(lot, serial uint32) *Generator {
	g := &Generator{}
	g.reseed(lot, serial)
	return g
}

// reseed fills the nonce table from a 32-bit seed derived from lot/serial,
// using the same small linear-feedback mixing step for every table slot so
// the sequence is reproducible from the seed alone.
func (g *Generator) reseed(lot, serial uint32) {
	seed := lot ^ (serial * 0x9E3779B1)
	if seed == 0 {
		seed = 0x1
	}
	for i := range g.table {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		g.table[i] = seed
	}
	g.cursor = 0
}

// Next returns the next nonce in sequence.
func (g *Generator) Next() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.table[g.cursor%tableSize]
	g.cursor++
	return v
}

// Resync reseeds the generator from a 16-bit seed hint the pod supplied
// via a nonce-sync response, and rewinds the cursor so the very next call
// to Next reflects the new sequence. Used exactly once per retry, per
// spec.md §4.1.2 ("Exactly one retry is attempted").
func (g *Generator) Resync(seedHint uint16) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reseed(uint32(seedHint), uint32(seedHint)<<16|uint32(seedHint))
}
