package tensor

import "math"

// Zeros returns an n-vector of zeros.
func Zeros(n int) []float64 {
	return make([]float64, n)
}

// Ones returns an n-vector of ones.
func Ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// Identity returns the n x n identity matrix.
func Identity(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	return m
}

// FromArray copies vals into a fresh vector of the same length.
func FromArray(vals []float64) []float64 {
	v := make([]float64, len(vals))
	copy(v, vals)
	return v
}

// MostPositive returns an n-vector with every component set to +Inf.
func MostPositive(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Inf(1)
	}
	return v
}

// MostNegative returns an n-vector with every component set to -Inf.
func MostNegative(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Inf(-1)
	}
	return v
}

// PlusInfinity returns +Inf, the rank-0 analogue of MostPositive.
func PlusInfinity() float64 { return math.Inf(1) }

// MinusInfinity returns -Inf, the rank-0 analogue of MostNegative.
func MinusInfinity() float64 { return math.Inf(-1) }

// Add returns a+b componentwise.
func Add(a, b []float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		r[i] = a[i] + b[i]
	}
	return r
}

// Sub returns a-b componentwise.
func Sub(a, b []float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		r[i] = a[i] - b[i]
	}
	return r
}

// Scale returns s*a componentwise.
func Scale(s float64, a []float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		r[i] = s * a[i]
	}
	return r
}

// Dot returns the inner product of a and b.
func Dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Cross returns the 3D cross product a x b. Fails with BadDimensionError
// unless both vectors have length 3.
func Cross(a, b []float64) ([]float64, error) {
	if len(a) != 3 || len(b) != 3 {
		return nil, ErrBadDimension("cross product requires 3-vectors, got len(a)=%d len(b)=%d", len(a), len(b))
	}
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}, nil
}

// Outer returns the outer product a (x) b as an n x m matrix.
func Outer(a, b []float64) [][]float64 {
	m := make([][]float64, len(a))
	for i := range a {
		m[i] = make([]float64, len(b))
		for j := range b {
			m[i][j] = a[i] * b[j]
		}
	}
	return m
}

// NormSquared returns a.a.
func NormSquared(a []float64) float64 { return Dot(a, a) }

// Norm returns the Euclidean length of a.
func Norm(a []float64) float64 { return math.Sqrt(NormSquared(a)) }

// Normalized returns a/||a||, or a zero vector if ||a|| is (numerically)
// zero -- safe at zero per spec.
func Normalized(a []float64) []float64 {
	n := Norm(a)
	if n <= 1e-300 {
		return Zeros(len(a))
	}
	return Scale(1/n, a)
}

// ComponentMin returns the componentwise minimum of a and b.
func ComponentMin(a, b []float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		r[i] = math.Min(a[i], b[i])
	}
	return r
}

// ComponentMax returns the componentwise maximum of a and b.
func ComponentMax(a, b []float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		r[i] = math.Max(a[i], b[i])
	}
	return r
}

// Abs returns the componentwise absolute value of a.
func Abs(a []float64) []float64 {
	r := make([]float64, len(a))
	for i := range a {
		r[i] = math.Abs(a[i])
	}
	return r
}

// MaximumComponent returns the largest component of a.
func MaximumComponent(a []float64) float64 {
	m := math.Inf(-1)
	for _, v := range a {
		if v > m {
			m = v
		}
	}
	return m
}

// Smoothstep evaluates the classic cubic Hermite smoothstep of x between
// edge0 and edge1, clamped to [0,1] outside the interval.
func Smoothstep(x, edge0, edge1 float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// ReciprocalOrZero returns 1/x unless |x| < eps, in which case it returns
// zero. Fails with BadArgumentError if eps is non-positive.
func ReciprocalOrZero(x, eps float64) (float64, error) {
	if eps <= 0 {
		return 0, ErrBadArgument("epsilon must be positive, got %v", eps)
	}
	if math.Abs(x) < eps {
		return 0, nil
	}
	return 1 / x, nil
}

// UnitStep is the left-continuous Heaviside step: 0 for x < 0, 1 for x >= 0.
func UnitStep(x float64) float64 {
	if x < 0 {
		return 0
	}
	return 1
}

// SkewFromVector returns the 3x3 skew-symmetric matrix [v]_x such that
// [v]_x * w == v x w. Fails with BadDimensionError unless len(v) == 3.
func SkewFromVector(v []float64) ([][]float64, error) {
	if len(v) != 3 {
		return nil, ErrBadDimension("skew-symmetric matrix requires a 3-vector, got len=%d", len(v))
	}
	return [][]float64{
		{0, -v[2], v[1]},
		{v[2], 0, -v[0]},
		{-v[1], v[0], 0},
	}, nil
}

// VectorFromSkew is the inverse of SkewFromVector: it extracts the axial
// vector of a 3x3 skew-symmetric matrix. Fails with BadDimensionError
// unless m is 3x3.
func VectorFromSkew(m [][]float64) ([]float64, error) {
	if len(m) != 3 || len(m[0]) != 3 || len(m[1]) != 3 || len(m[2]) != 3 {
		return nil, ErrBadDimension("skew-symmetric extraction requires a 3x3 matrix")
	}
	return []float64{m[2][1], m[0][2], m[1][0]}, nil
}
