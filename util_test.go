package bulletproofs

import (
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarExp(t *testing.T) {
	assert := assert.New(t)

	x := uint64ToScalar(3)
	powers := NewScalarExp(x).Take(6)
	for i, p := range powers {
		assert.True(p.Equals(ScalarExpVartime(x, uint64(i))), i)
	}
	assert.True(powers[4].Equals(uint64ToScalar(81)))
	assert.True(sumOfPowers(uint64ToScalar(2), 8).Equals(uint64ToScalar(255)))
	assert.True(sumOfPowers(x, 0).Equals(uint64ToScalar(0)))

	rng := testRNG("scalar exp")
	y, err := randomScalar(rng)
	require.NoError(t, err)
	exp := NewScalarExp(y)
	for i := uint64(0); i < 40; i++ {
		assert.True(exp.Next().Equals(ScalarExpVartime(y, i)))
	}
}

func TestVecPoly1InnerProduct(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	rng := testRNG("vec poly")
	random := func() *ristretto.Scalar {
		s, err := randomScalar(rng)
		require.NoError(err)
		return s
	}

	l, r := ZeroVecPoly1(8), ZeroVecPoly1(8)
	for i := 0; i < 8; i++ {
		l.As[i], l.Bs[i] = random(), random()
		r.As[i], r.Bs[i] = random(), random()
	}
	tPoly := l.InnerProduct(r)

	x := random()
	assert.True(innerProduct(l.Eval(x), r.Eval(x)).Equals(tPoly.Eval(x)))
	assert.True(innerProduct(l.As, r.As).Equals(tPoly.A))
	assert.True(innerProduct(l.Bs, r.Bs).Equals(tPoly.C))
}

func TestFolds(t *testing.T) {
	assert := assert.New(t)

	assert.True(isIdentity(sumPoints(nil)))
	assert.True(isZeroScalar(sumScalars(nil)))

	var base, twice ristretto.Point
	base.SetBase()
	twice.Add(&base, &base)
	assert.True(sumPoints([]*ristretto.Point{&base, &base}).Equals(&twice))
	assert.True(multiscalarMul([]*ristretto.Scalar{uint64ToScalar(2)}, []*ristretto.Point{&base}).Equals(&twice))
	assert.True(sumScalars([]*ristretto.Scalar{uint64ToScalar(2), uint64ToScalar(5)}).Equals(uint64ToScalar(7)))

	assert.Panics(func() { innerProduct(make([]*ristretto.Scalar, 2), make([]*ristretto.Scalar, 3)) })

	c := clonePoint(&base)
	c.Add(c, &base)
	assert.True(c.Equals(&twice))
	assert.False(base.Equals(&twice))
}

func TestResizeToPow2(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(1, nextPowerOfTwo(1))
	assert.Equal(4, nextPowerOfTwo(3))
	assert.Equal(8, nextPowerOfTwo(8))
	assert.Equal(16, nextPowerOfTwo(9))

	assert.Equal([]uint64{1, 2, 3, 3}, resizeUint64ToPow2([]uint64{1, 2, 3}))
	scalars := resizeScalarToPow2([]*ristretto.Scalar{uint64ToScalar(1), uint64ToScalar(2), uint64ToScalar(9)})
	assert.Len(scalars, 4)
	assert.True(scalars[3].Equals(uint64ToScalar(9)))
}
