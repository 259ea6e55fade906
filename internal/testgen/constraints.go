package testgen

// Constraints bounds the shape of generated programs.
type Constraints struct {
	Lower    int64 // smallest integer literal
	Upper    int64 // largest integer literal
	MaxDepth int   // deepest expression nesting
	// Closed restricts variable references to names bound by an enclosing
	// let, function or pattern. Open expressions may fail with an unbound
	// variable when evaluated.
	Closed bool
	// Data is the number of data declarations a generated program carries.
	Data int
}

// DefaultConstraints returns the bounds used when none are given.
func DefaultConstraints() Constraints {
	return Constraints{
		Lower:    DefaultLower,
		Upper:    DefaultUpper,
		MaxDepth: 5,
		Closed:   true,
		Data:     2,
	}
}

// normalize clamps inverted or out-of-range bounds.
func (c Constraints) normalize() Constraints {
	if c.Upper < c.Lower {
		c.Upper = c.Lower
	}
	if c.MaxDepth < 1 {
		c.MaxDepth = 1
	}
	if c.Data < 0 {
		c.Data = 0
	}
	if c.Data > len(dataPool) {
		c.Data = len(dataPool)
	}
	return c
}
