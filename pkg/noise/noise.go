package noise

// Hash mixes a (seed, generation, index) key into 64 uniformly distributed
// bits with the splitmix64 finalizer. The draw for a cell depends only on
// the key, never on evaluation order or on prior draws, so any number of
// workers on any backend produce the same stream.
func Hash(seed, generation, index uint64) uint64 {
	h := mix64(seed + 0x9e3779b97f4a7c15)
	h = mix64(h + generation)
	return mix64(h + index)
}

// Uniform returns a deterministic draw in [0, 1) for the given key.
func Uniform(seed, generation, index uint64) float64 {
	return float64(Hash(seed, generation, index)>>11) / (1 << 53)
}

// Below reports whether the draw for the key falls below p. It is the one
// comparison every backend uses for fill and revival decisions.
func Below(seed, generation, index uint64, p float64) bool {
	if p <= 0 {
		return false
	}
	return Uniform(seed, generation, index) < p
}

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
