package bulletproofs

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bwesterb/go-ristretto"
)

type ScalarExp struct {
	X        *ristretto.Scalar
	NextExpX *ristretto.Scalar
}

// NewScalarExp iterates 1, x, x^2, ...
func NewScalarExp(x *ristretto.Scalar) *ScalarExp {
	var one ristretto.Scalar
	return &ScalarExp{
		X:        cloneScalar(x),
		NextExpX: one.SetOne(),
	}
}

func (s *ScalarExp) Next() *ristretto.Scalar {
	r := cloneScalar(s.NextExpX)
	s.NextExpX.Mul(s.NextExpX, s.X)
	return r
}

// Take returns the next n powers.
func (s *ScalarExp) Take(n int64) []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, n)
	for i := range out {
		out[i] = s.Next()
	}
	return out
}

type VecPoly1 struct {
	As []*ristretto.Scalar
	Bs []*ristretto.Scalar
}

func ZeroVecPoly1(n int64) *VecPoly1 {
	vec := &VecPoly1{As: make([]*ristretto.Scalar, n), Bs: make([]*ristretto.Scalar, n)}
	for i := 0; i < int(n); i++ {
		var r1, r2 ristretto.Scalar
		vec.As[i] = r1.SetZero()
		vec.Bs[i] = r2.SetZero()
	}
	return vec
}

func (v *VecPoly1) InnerProduct(rhs *VecPoly1) *Poly2 {
	t0 := innerProduct(v.As, rhs.As)
	t2 := innerProduct(v.Bs, rhs.Bs)

	l0PlusL1 := addVec(v.As, v.Bs)
	r0PlusR1 := addVec(rhs.As, rhs.Bs)

	// Karatsuba: t1 = <l0+l1, r0+r1> - t0 - t2
	var t1 ristretto.Scalar
	t1.Sub(innerProduct(l0PlusL1, r0PlusR1), t0)
	t1.Sub(&t1, t2)

	return &Poly2{
		A: t0,
		B: &t1,
		C: t2,
	}
}

func (v *VecPoly1) Eval(x *ristretto.Scalar) []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, len(v.As))
	for i := range v.As {
		var r ristretto.Scalar
		r.Mul(v.Bs[i], x)
		out[i] = r.Add(v.As[i], &r)
	}
	return out
}

type Poly2 struct {
	A *ristretto.Scalar
	B *ristretto.Scalar
	C *ristretto.Scalar
}

// a + x * (b + x * c)
func (p *Poly2) Eval(x *ristretto.Scalar) *ristretto.Scalar {
	var r ristretto.Scalar
	r.Mul(x, p.C)
	r.Add(p.B, &r)
	r.Mul(x, &r)
	return r.Add(p.A, &r)
}

func ScalarExpVartime(x *ristretto.Scalar, n uint64) *ristretto.Scalar {
	var result ristretto.Scalar
	result.SetOne()
	aux := cloneScalar(x)

	for n > 0 {
		if n&1 == 1 {
			result.Mul(&result, aux)
		}
		n = n >> 1
		aux.Mul(aux, aux)
	}
	return &result
}

// sumOfPowers returns 1 + x + ... + x^(n-1).
func sumOfPowers(x *ristretto.Scalar, n int64) *ristretto.Scalar {
	return sumScalars(NewScalarExp(x).Take(n))
}

// sumPoints folds the points with group addition starting from the identity.
func sumPoints(points []*ristretto.Point) *ristretto.Point {
	var acc ristretto.Point
	acc.SetZero()
	for _, p := range points {
		acc.Add(&acc, p)
	}
	return &acc
}

// sumScalars folds the scalars with field addition starting from zero.
func sumScalars(scalars []*ristretto.Scalar) *ristretto.Scalar {
	var acc ristretto.Scalar
	acc.SetZero()
	for _, s := range scalars {
		acc.Add(&acc, s)
	}
	return &acc
}

func innerProduct(a []*ristretto.Scalar, b []*ristretto.Scalar) *ristretto.Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("innerProduct lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	var acc ristretto.Scalar
	acc.SetZero()
	for i := range a {
		var r ristretto.Scalar
		acc.Add(&acc, r.Mul(a[i], b[i]))
	}
	return &acc
}

func addVec(a []*ristretto.Scalar, b []*ristretto.Scalar) []*ristretto.Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("addVec lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	out := make([]*ristretto.Scalar, len(a))
	for i := range a {
		var r ristretto.Scalar
		out[i] = r.Add(a[i], b[i])
	}
	return out
}

func multiscalarMul(scalars []*ristretto.Scalar, points []*ristretto.Point) *ristretto.Point {
	if len(scalars) != len(points) {
		panic(fmt.Sprintf("multiscalarMul lengths do not match %d, %d", len(scalars), len(points)))
	}

	var p ristretto.Point
	p.SetZero()
	for i := range scalars {
		var t ristretto.Point
		t.ScalarMult(points[i], scalars[i])
		p.Add(&p, &t)
	}
	return &p
}

func cloneScalar(s *ristretto.Scalar) *ristretto.Scalar {
	var r ristretto.Scalar
	r.SetZero()
	return r.Add(&r, s)
}

func clonePoint(p *ristretto.Point) *ristretto.Point {
	var r ristretto.Point
	r.SetZero()
	return r.Add(&r, p)
}

func cloneScalars(vec []*ristretto.Scalar) []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, len(vec))
	for i := range vec {
		out[i] = cloneScalar(vec[i])
	}
	return out
}

func negScalar(s *ristretto.Scalar) *ristretto.Scalar {
	var r ristretto.Scalar
	r.SetZero()
	return r.Sub(&r, s)
}

func isZeroScalar(s *ristretto.Scalar) bool {
	var zero ristretto.Scalar
	zero.SetZero()
	return zero.Equals(s)
}

func isIdentity(p *ristretto.Point) bool {
	var zero ristretto.Point
	zero.SetZero()
	return zero.Equals(p)
}

func uint64ToScalar(i uint64) *ristretto.Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:], i)
	var s ristretto.Scalar
	return s.SetBytes(&buf)
}

func fromBytesModOrderWide(data []byte) *ristretto.Scalar {
	var data64 [64]byte
	copy(data64[:], data)
	var hs ristretto.Scalar
	return hs.SetReduced(&data64)
}

// randomScalar reads 64 bytes from rng and reduces them, crypto/rand when rng is nil.
func randomScalar(rng io.Reader) (*ristretto.Scalar, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var buf [64]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return nil, err
	}
	return fromBytesModOrderWide(buf[:]), nil
}

func resizeUint64ToPow2(vec []uint64) []uint64 {
	l := nextPowerOfTwo(len(vec))
	for i := len(vec); i < l; i++ {
		vec = append(vec, vec[i-1])
	}
	return vec
}

func resizeScalarToPow2(vec []*ristretto.Scalar) []*ristretto.Scalar {
	l := nextPowerOfTwo(len(vec))
	for i := len(vec); i < l; i++ {
		vec = append(vec, cloneScalar(vec[i-1]))
	}
	return vec
}

func nextPowerOfTwo(v int) int {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
