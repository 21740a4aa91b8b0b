package bulletproofs

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"
)

// RangeProof shows that each value committed in V lies in [0, 2^N).
type RangeProof struct {
	N          int64
	V          []*ristretto.Point
	A, S       *ristretto.Point
	T1, T2     *ristretto.Point
	TX         *ristretto.Scalar
	TXBlinding *ristretto.Scalar
	EBlinding  *ristretto.Scalar
	IPPProof   *InnerProductProof
}

// ToBytes is the compact encoding: A, S, T1, T2, t_x, t_x_blinding,
// e_blinding and the inner product proof. N and V are not included.
func (p *RangeProof) ToBytes() []byte {
	var buf []byte
	buf = append(buf, p.A.Bytes()...)
	buf = append(buf, p.S.Bytes()...)
	buf = append(buf, p.T1.Bytes()...)
	buf = append(buf, p.T2.Bytes()...)
	buf = append(buf, p.TX.Bytes()...)
	buf = append(buf, p.TXBlinding.Bytes()...)
	buf = append(buf, p.EBlinding.Bytes()...)
	buf = append(buf, p.IPPProof.ToBytes()...)

	return buf
}

func RangeProofFromBytes(buf []byte) (*RangeProof, error) {
	if len(buf)%32 != 0 {
		return nil, errors.Wrapf(ErrFormat, "range proof length %d", len(buf))
	}
	if len(buf) < 7*32 {
		return nil, errors.Wrapf(ErrFormat, "range proof too short %d", len(buf))
	}

	var p RangeProof
	points := []**ristretto.Point{&p.A, &p.S, &p.T1, &p.T2}
	for i, dst := range points {
		pt, err := pointFromBytes(buf[i*32 : (i+1)*32])
		if err != nil {
			return nil, err
		}
		*dst = pt
	}
	scalars := []**ristretto.Scalar{&p.TX, &p.TXBlinding, &p.EBlinding}
	for i, dst := range scalars {
		pos := (4 + i) * 32
		s, err := scalarFromBytes(buf[pos : pos+32])
		if err != nil {
			return nil, err
		}
		*dst = s
	}
	ipp, err := InnerProductProofFromBytes(buf[7*32:])
	if err != nil {
		return nil, err
	}
	p.IPPProof = ipp
	return &p, nil
}

// Verify replays the transcript of the aggregated protocol and checks the
// proof with one randomized multiscalar equation. t must be in the state the
// dealer's transcript was in before NewDealer.
func (p *RangeProof) Verify(gens *GeneratorsView, t Transcript) error {
	n, m := p.N, int64(len(p.V))
	if err := checkBitsize(n); err != nil {
		return errors.Wrap(ErrVerification, err.Error())
	}
	if err := checkAggregation(m); err != nil {
		return errors.Wrap(ErrVerification, err.Error())
	}
	if err := gens.check(n, m); err != nil {
		return err
	}
	if p.A == nil || p.S == nil || p.T1 == nil || p.T2 == nil ||
		p.TX == nil || p.TXBlinding == nil || p.EBlinding == nil || p.IPPProof == nil {
		return errors.Wrap(ErrVerification, "incomplete proof")
	}
	for j, V := range p.V {
		if V == nil {
			return errors.Wrapf(ErrVerification, "nil commitment %d", j)
		}
	}

	RangeproofDomainSep(n, m, t)
	for _, V := range p.V {
		AppendPoint("V", V, t)
	}
	AppendPoint("A", p.A, t)
	AppendPoint("S", p.S, t)
	y := ChallengeScalar("y", t)
	z := ChallengeScalar("z", t)
	AppendPoint("T_1", p.T1, t)
	AppendPoint("T_2", p.T2, t)
	x := ChallengeScalar("x", t)
	AppendScalar("t_x", p.TX, t)
	AppendScalar("t_x_blinding", p.TXBlinding, t)
	AppendScalar("e_blinding", p.EBlinding, t)
	w := ChallengeScalar("w", t)

	size := int(n * m)
	uSq, uInvSq, s, err := p.IPPProof.VerificationScalars(size, t)
	if err != nil {
		return err
	}

	// c weighs the polynomial check against the inner product check.
	c, err := randomScalar(nil)
	if err != nil {
		return err
	}

	a, b := p.IPPProof.A, p.IPPProof.B
	var zz, ab ristretto.Scalar
	zz.Mul(z, z)
	ab.Mul(a, b)
	minusZ := negScalar(z)
	var yInv ristretto.Scalar
	yInv.Inverse(y)

	var cx, cxx ristretto.Scalar
	cx.Mul(c, x)
	cxx.Mul(&cx, x)

	var one ristretto.Scalar
	one.SetOne()
	scalars := []*ristretto.Scalar{&one, x, &cx, &cxx}
	points := []*ristretto.Point{p.A, p.S, p.T1, p.T2}
	for i := range p.IPPProof.LVec {
		scalars = append(scalars, uSq[i], uInvSq[i])
		points = append(points, p.IPPProof.LVec[i], p.IPPProof.RVec[i])
	}

	// -e_blinding - c * t_x_blinding
	var blinding ristretto.Scalar
	blinding.Mul(c, p.TXBlinding)
	blinding.Add(&blinding, p.EBlinding)
	scalars = append(scalars, negScalar(&blinding))
	points = append(points, gens.Pedersen.BBlinding)

	// w * (t_x - a*b) + c * (delta - t_x)
	var basepoint, tmp ristretto.Scalar
	basepoint.Sub(p.TX, &ab)
	basepoint.Mul(&basepoint, w)
	tmp.Sub(delta(n, m, y, z), p.TX)
	tmp.Mul(&tmp, c)
	basepoint.Add(&basepoint, &tmp)
	scalars = append(scalars, &basepoint)
	points = append(points, gens.Pedersen.B)

	G := gens.G(n, m)
	for i := 0; i < size; i++ {
		var g ristretto.Scalar
		g.Mul(a, s[i])
		scalars = append(scalars, g.Sub(minusZ, &g))
	}
	points = append(points, G...)

	H := gens.H(n, m)
	powersOfTwo := NewScalarExp(uint64ToScalar(2)).Take(n)
	expZ := NewScalarExp(z)
	expYInv := NewScalarExp(&yInv)
	for j := int64(0); j < m; j++ {
		zJ := expZ.Next()
		for i := int64(0); i < n; i++ {
			k := j*n + i
			// z + y^-k * (z^2 * z^j * 2^i - b / s_k)
			var h, bs ristretto.Scalar
			h.Mul(&zz, zJ)
			h.Mul(&h, powersOfTwo[i])
			bs.Mul(b, s[int64(size)-1-k])
			h.Sub(&h, &bs)
			h.Mul(&h, expYInv.Next())
			h.Add(&h, z)
			scalars = append(scalars, &h)
		}
	}
	points = append(points, H...)

	expZ = NewScalarExp(z)
	for _, V := range p.V {
		var v ristretto.Scalar
		v.Mul(c, &zz)
		scalars = append(scalars, v.Mul(&v, expZ.Next()))
		points = append(points, V)
	}

	if !isIdentity(multiscalarMul(scalars, points)) {
		return errors.Wrap(ErrVerification, "range proof equation")
	}
	return nil
}

// delta is (z - z^2) * <1, y^(n*m)> - z^3 * <1, 2^n> * <1, z^m>.
func delta(n, m int64, y, z *ristretto.Scalar) *ristretto.Scalar {
	var zz, zzz, r, tmp ristretto.Scalar
	zz.Mul(z, z)
	zzz.Mul(&zz, z)

	r.Sub(z, &zz)
	r.Mul(&r, sumOfPowers(y, n*m))

	tmp.Mul(&zzz, sumOfPowers(uint64ToScalar(2), n))
	tmp.Mul(&tmp, sumOfPowers(z, m))
	return r.Sub(&r, &tmp)
}
