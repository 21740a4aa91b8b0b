package bulletproofs

import (
	"fmt"
	"math/bits"

	"github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"
)

type InnerProductProof struct {
	LVec []*ristretto.Point
	RVec []*ristretto.Point
	A, B *ristretto.Scalar
}

// CreateInnerProductProof proves that
// P = <a, gFactors*G> + <b, hFactors*H> + <a, b>*Q
// in log2(n) rounds. The inputs are not modified.
func CreateInnerProductProof(transcript Transcript, Q *ristretto.Point, gFactors, hFactors []*ristretto.Scalar, gVec, hVec []*ristretto.Point, aVec, bVec []*ristretto.Scalar) *InnerProductProof {
	n := len(gVec)
	if len(hVec) != n ||
		len(aVec) != n ||
		len(bVec) != n ||
		len(gFactors) != n ||
		len(hFactors) != n {
		panic(fmt.Sprintf("Invalid input vectors %d, %d, %d, %d, %d, %d", len(gVec), len(hVec), len(aVec), len(bVec), len(gFactors), len(hFactors)))
	}
	if n == 0 || bits.OnesCount32(uint32(n)) > 1 {
		panic(fmt.Sprintf("CreateInnerProductProof Invalid n %d", n))
	}

	InnerproductDomainSep(uint64(n), transcript)

	G := append([]*ristretto.Point(nil), gVec...)
	H := append([]*ristretto.Point(nil), hVec...)
	a := cloneScalars(aVec)
	b := cloneScalars(bVec)
	gF, hF := gFactors, hFactors

	var LVec, RVec []*ristretto.Point
	for n != 1 {
		n = n / 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)

		// L = <a_L, G_R> + <b_R, H_L> + c_L * Q, factors applied on the first round only
		lScalars := make([]*ristretto.Scalar, 0, 2*n+1)
		rScalars := make([]*ristretto.Scalar, 0, 2*n+1)
		for i := 0; i < n; i++ {
			lScalars = append(lScalars, scaled(aL[i], gF, n+i))
			rScalars = append(rScalars, scaled(aR[i], gF, i))
		}
		for i := 0; i < n; i++ {
			lScalars = append(lScalars, scaled(bR[i], hF, i))
			rScalars = append(rScalars, scaled(bL[i], hF, n+i))
		}
		lScalars = append(lScalars, cL)
		rScalars = append(rScalars, cR)

		lPoints := make([]*ristretto.Point, 0, 2*n+1)
		lPoints = append(lPoints, gR...)
		lPoints = append(lPoints, hL...)
		lPoints = append(lPoints, Q)
		rPoints := make([]*ristretto.Point, 0, 2*n+1)
		rPoints = append(rPoints, gL...)
		rPoints = append(rPoints, hR...)
		rPoints = append(rPoints, Q)

		L := multiscalarMul(lScalars, lPoints)
		R := multiscalarMul(rScalars, rPoints)
		LVec = append(LVec, L)
		RVec = append(RVec, R)

		AppendPoint("L", L, transcript)
		AppendPoint("R", R, transcript)

		u := ChallengeScalar("u", transcript)
		var uInv ristretto.Scalar
		uInv.Inverse(u)

		for i := 0; i < n; i++ {
			var r1, r2 ristretto.Scalar
			aL[i].Add(r1.Mul(aL[i], u), r2.Mul(&uInv, aR[i]))
			var r3, r4 ristretto.Scalar
			bL[i].Add(r3.Mul(bL[i], &uInv), r4.Mul(u, bR[i]))

			gL[i] = multiscalarMul(
				[]*ristretto.Scalar{scaled(&uInv, gF, i), scaled(u, gF, n+i)},
				[]*ristretto.Point{gL[i], gR[i]},
			)
			hL[i] = multiscalarMul(
				[]*ristretto.Scalar{scaled(u, hF, i), scaled(&uInv, hF, n+i)},
				[]*ristretto.Point{hL[i], hR[i]},
			)
		}

		a, b, G, H = aL, bL, gL, hL
		gF, hF = nil, nil
	}

	return &InnerProductProof{
		LVec: LVec,
		RVec: RVec,
		A:    a[0],
		B:    b[0],
	}
}

func scaled(s *ristretto.Scalar, factors []*ristretto.Scalar, i int) *ristretto.Scalar {
	if factors == nil {
		return s
	}
	var r ristretto.Scalar
	return r.Mul(s, factors[i])
}

// VerificationScalars replays the transcript and returns the squared
// challenges, their inverses and the s vector of the folded generators.
func (p *InnerProductProof) VerificationScalars(n int, transcript Transcript) ([]*ristretto.Scalar, []*ristretto.Scalar, []*ristretto.Scalar, error) {
	lgN := len(p.LVec)
	if lgN >= 32 || len(p.RVec) != lgN {
		return nil, nil, nil, errors.Wrapf(ErrVerification, "inner product rounds %d, %d", len(p.LVec), len(p.RVec))
	}
	if n != 1<<uint(lgN) {
		return nil, nil, nil, errors.Wrapf(ErrVerification, "inner product n %d, rounds %d", n, lgN)
	}

	InnerproductDomainSep(uint64(n), transcript)

	challenges := make([]*ristretto.Scalar, lgN)
	for i := range p.LVec {
		AppendPoint("L", p.LVec[i], transcript)
		AppendPoint("R", p.RVec[i], transcript)
		challenges[i] = ChallengeScalar("u", transcript)
	}

	var allInv ristretto.Scalar
	allInv.SetOne()
	uSq := make([]*ristretto.Scalar, lgN)
	uInvSq := make([]*ristretto.Scalar, lgN)
	for i, u := range challenges {
		if isZeroScalar(u) {
			return nil, nil, nil, errors.Wrap(ErrVerification, "zero inner product challenge")
		}
		var inv, sq, invSq ristretto.Scalar
		inv.Inverse(u)
		allInv.Mul(&allInv, &inv)
		uSq[i] = sq.Mul(u, u)
		uInvSq[i] = invSq.Mul(&inv, &inv)
	}

	s := make([]*ristretto.Scalar, n)
	s[0] = &allInv
	for i := 1; i < n; i++ {
		lgI := bits.Len(uint(i)) - 1
		k := 1 << uint(lgI)
		// s[i] = s[i-k] * u_{lg_n-1-lg_i}^2, the highest set bit of i picks the challenge
		var si ristretto.Scalar
		s[i] = si.Mul(s[i-k], uSq[lgN-1-lgI])
	}
	return uSq, uInvSq, s, nil
}

// Verify checks the proof for the statement
// P = <a, gFactors*G> + <b, hFactors*H> + <a, b>*Q.
func (p *InnerProductProof) Verify(n int, transcript Transcript, gFactors, hFactors []*ristretto.Scalar, P, Q *ristretto.Point, G, H []*ristretto.Point) error {
	if len(gFactors) != n || len(hFactors) != n || len(G) != n || len(H) != n {
		return errors.Wrapf(ErrVerification, "inner product inputs %d, %d, %d, %d, n %d", len(gFactors), len(hFactors), len(G), len(H), n)
	}
	uSq, uInvSq, s, err := p.VerificationScalars(n, transcript)
	if err != nil {
		return err
	}

	var ab ristretto.Scalar
	ab.Mul(p.A, p.B)
	scalars := []*ristretto.Scalar{&ab}
	points := []*ristretto.Point{Q}
	for i := 0; i < n; i++ {
		var g ristretto.Scalar
		g.Mul(p.A, s[i])
		scalars = append(scalars, g.Mul(&g, gFactors[i]))
		points = append(points, G[i])
	}
	for i := 0; i < n; i++ {
		// 1/s[i] is s[n-1-i]
		var h ristretto.Scalar
		h.Mul(p.B, s[n-1-i])
		scalars = append(scalars, h.Mul(&h, hFactors[i]))
		points = append(points, H[i])
	}
	for i := range p.LVec {
		scalars = append(scalars, negScalar(uSq[i]), negScalar(uInvSq[i]))
		points = append(points, p.LVec[i], p.RVec[i])
	}

	if !multiscalarMul(scalars, points).Equals(P) {
		return errors.Wrap(ErrVerification, "inner product equation")
	}
	return nil
}

func (p *InnerProductProof) ToBytes() []byte {
	var buf []byte

	for i := range p.LVec {
		buf = append(buf, p.LVec[i].Bytes()...)
		buf = append(buf, p.RVec[i].Bytes()...)
	}
	buf = append(buf, p.A.Bytes()...)
	buf = append(buf, p.B.Bytes()...)

	return buf
}

func InnerProductProofFromBytes(buf []byte) (*InnerProductProof, error) {
	if len(buf)%32 != 0 {
		return nil, errors.Wrapf(ErrFormat, "inner product length %d", len(buf))
	}
	num := len(buf) / 32
	if num < 2 || (num-2)%2 != 0 {
		return nil, errors.Wrapf(ErrFormat, "inner product elements %d", num)
	}
	lgN := (num - 2) / 2
	if lgN >= 32 {
		return nil, errors.Wrapf(ErrFormat, "inner product rounds %d", lgN)
	}

	proof := &InnerProductProof{
		LVec: make([]*ristretto.Point, lgN),
		RVec: make([]*ristretto.Point, lgN),
	}
	var err error
	for i := 0; i < lgN; i++ {
		pos := 2 * i * 32
		if proof.LVec[i], err = pointFromBytes(buf[pos : pos+32]); err != nil {
			return nil, err
		}
		if proof.RVec[i], err = pointFromBytes(buf[pos+32 : pos+64]); err != nil {
			return nil, err
		}
	}
	pos := 2 * lgN * 32
	if proof.A, err = scalarFromBytes(buf[pos : pos+32]); err != nil {
		return nil, err
	}
	if proof.B, err = scalarFromBytes(buf[pos+32 : pos+64]); err != nil {
		return nil, err
	}
	return proof, nil
}
