package mathx

import "golang.org/x/exp/constraints"

// Saturating unsigned arithmetic. Results pin to 0 or the type maximum instead of wrapping.

func maxOf[T constraints.Unsigned]() T { return ^T(0) }

// SatSub returns a-b, or 0 when b > a.
func SatSub[T constraints.Unsigned](a, b T) T {
	if b > a {
		return 0
	}
	return a - b
}

// SatAdd returns a+b, or the type maximum on overflow.
func SatAdd[T constraints.Unsigned](a, b T) T {
	s := a + b
	if s < a {
		return maxOf[T]()
	}
	return s
}

// SatMul returns a*b, or the type maximum on overflow.
func SatMul[T constraints.Unsigned](a, b T) T {
	if a == 0 || b == 0 {
		return 0
	}
	if a > maxOf[T]()/b {
		return maxOf[T]()
	}
	return a * b
}

// SatDiv returns a/b; division by zero saturates to the type maximum (or 0 for a==0).
func SatDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		if a == 0 {
			return 0
		}
		return maxOf[T]()
	}
	return a / b
}

// LinearSat maps n from [xmin, xmax] onto [ymin, ymax] using saturating steps only:
//
//	((n -| xmin) *| (ymax-ymin)) /| (xmax-xmin) +| ymin
//
// Inputs below xmin land on ymin. Inputs above xmax overshoot ymax; callers clamp.
func LinearSat[T constraints.Unsigned](n, xmin, xmax, ymin, ymax T) T {
	xr := SatSub(xmax, xmin)
	yr := SatSub(ymax, ymin)
	return SatAdd(SatDiv(SatMul(SatSub(n, xmin), yr), xr), ymin)
}
