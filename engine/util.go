package engine

import "golang.org/x/exp/constraints"

type number interface {
	constraints.Integer | constraints.Float
}

// Min returns the smaller of x or y.
func Min[T number](x, y T) T {
	if x < y {
		return x
	}
	return y
}

// Max returns the larger of x or y.
func Max[T number](x, y T) T {
	if x > y {
		return x
	}
	return y
}

func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Clamp restricts f to the inclusive range [low, high].
func Clamp[T number](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}
