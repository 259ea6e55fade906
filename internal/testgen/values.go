package testgen

// DefaultLower is used when no lower bound is specified.
const DefaultLower int64 = -100

// DefaultUpper is used when no upper bound is specified.
const DefaultUpper int64 = 100

// IntValues returns the boundary values of [lo, hi] followed by count
// pseudo-random values from the same range. The sequence depends only on
// the arguments.
func IntValues(lo, hi int64, count int, seed uint64) []int64 {
	if hi < lo {
		hi = lo
	}

	seen := make(map[int64]bool)
	var values []int64
	addIfInRange := func(v int64) {
		if v >= lo && v <= hi && !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}

	addIfInRange(lo)
	addIfInRange(lo + 1)
	addIfInRange(0)
	addIfInRange(1)
	if hi > 1 {
		addIfInRange(hi - 1)
	}
	addIfInRange(hi)

	rng := seed
	if rng == 0 {
		rng = defaultSeed
	}
	for i := 0; i < count; i++ {
		rng = xorshift64(rng)
		values = append(values, randRange(rng, lo, hi))
	}
	return values
}

const defaultSeed = uint64(0x517cc1b727220a95)

// xorshift64 is a simple deterministic PRNG.
func xorshift64(state uint64) uint64 {
	state ^= state << 13
	state ^= state >> 7
	state ^= state << 17
	return state
}

// randRange maps a PRNG state to a value in [lo, hi].
func randRange(state uint64, lo, hi int64) int64 {
	if lo >= hi {
		return lo
	}
	r := uint64(hi-lo) + 1
	if r == 0 { // the whole int64 range
		return int64(state)
	}
	return lo + int64(state%r)
}
