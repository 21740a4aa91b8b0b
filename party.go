package bulletproofs

import (
	"io"

	"github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"
)

type PartyAwaitingPosition struct {
	BPGens    *BulletproofGens
	PCGens    *PedersenGens
	N         int64
	Value     uint64
	VBlinding *ristretto.Scalar
	V         *ristretto.Point
	rng       io.Reader
}

// NewParty commits to value with blinding. rng supplies the per-round
// blinding factors; crypto/rand is used when it is nil.
func NewParty(bg *BulletproofGens, pg *PedersenGens, value uint64, blinding *ristretto.Scalar, n int64, rng io.Reader) (*PartyAwaitingPosition, error) {
	if err := checkBitsize(n); err != nil {
		return nil, err
	}
	if bg.GensCapacity < n {
		return nil, errors.Wrapf(ErrInvalidGeneratorsLength, "NewParty GensCapacity %d, n %d", bg.GensCapacity, n)
	}
	if n < 64 && value>>uint(n) != 0 {
		return nil, errors.Errorf("NewParty value %d out of range for %d bits", value, n)
	}

	V := pg.Commit(uint64ToScalar(value), blinding)

	return &PartyAwaitingPosition{
		BPGens:    bg,
		PCGens:    pg,
		N:         n,
		Value:     value,
		VBlinding: blinding,
		V:         V,
		rng:       rng,
	}, nil
}

type PartyAwaitingValueChallenge struct {
	N          int64
	V          uint64
	VBlinding  *ristretto.Scalar
	J          int
	PCGens     *PedersenGens
	ABlinding  *ristretto.Scalar
	SBlinding  *ristretto.Scalar
	SL         []*ristretto.Scalar
	SR         []*ristretto.Scalar
	commitment *ValueCommitment
	rng        io.Reader
}

// AssignPosition fixes the party at position j of the aggregation and
// commits to the bits of its value.
func (p *PartyAwaitingPosition) AssignPosition(j int) (*PartyAwaitingValueChallenge, *ValueCommitment, error) {
	if j < 0 || p.BPGens.PartyCapacity <= int64(j) {
		return nil, nil, errors.Wrapf(ErrInvalidGeneratorsLength, "AssignPosition PartyCapacity %d, j %d", p.BPGens.PartyCapacity, j)
	}
	bpShare := p.BPGens.Share(j)

	aBlinding, err := randomScalar(p.rng)
	if err != nil {
		return nil, nil, err
	}
	var A ristretto.Point
	A.ScalarMult(p.PCGens.BBlinding, aBlinding)

	// If v_i = 0, we add a_L[i] * G[i] + a_R[i] * H[i] = - H[i]
	// If v_i = 1, we add a_L[i] * G[i] + a_R[i] * H[i] =   G[i]
	Gs := bpShare.G(p.N)
	Hs := bpShare.H(p.N)
	for i := range Gs {
		var point ristretto.Point
		if (p.Value>>uint(i))&1 == 1 {
			point = *Gs[i]
		} else {
			point.Neg(Hs[i])
		}
		A.Add(&A, &point)
	}

	sBlinding, err := randomScalar(p.rng)
	if err != nil {
		return nil, nil, err
	}
	sL := make([]*ristretto.Scalar, p.N)
	sR := make([]*ristretto.Scalar, p.N)
	for i := 0; i < int(p.N); i++ {
		if sL[i], err = randomScalar(p.rng); err != nil {
			return nil, nil, err
		}
		if sR[i], err = randomScalar(p.rng); err != nil {
			return nil, nil, err
		}
	}

	// S = <s_L, G> + <s_R, H> + s_blinding * B_blinding
	s1 := append([]*ristretto.Scalar{sBlinding}, sL...)
	s1 = append(s1, sR...)
	s2 := append([]*ristretto.Point{p.PCGens.BBlinding}, Gs...)
	s2 = append(s2, Hs...)
	S := multiscalarMul(s1, s2)

	commitment := &ValueCommitment{
		V: p.V,
		A: &A,
		S: S,
	}

	return &PartyAwaitingValueChallenge{
		N:          p.N,
		V:          p.Value,
		VBlinding:  p.VBlinding,
		PCGens:     p.PCGens,
		J:          j,
		ABlinding:  aBlinding,
		SBlinding:  sBlinding,
		SL:         sL,
		SR:         sR,
		commitment: commitment,
		rng:        p.rng,
	}, commitment, nil
}

func (p *PartyAwaitingValueChallenge) ApplyValueChallenge(vc *ValueChallenge) (*PartyAwaitingPolyChallenge, *PolyCommitment, error) {
	if vc == nil || vc.Y == nil || vc.Z == nil {
		return nil, nil, errors.Wrap(ErrMalformedMessage, "ApplyValueChallenge nil challenge")
	}

	offsetY := ScalarExpVartime(vc.Y, uint64(int64(p.J)*p.N))
	offsetZ := ScalarExpVartime(vc.Z, uint64(p.J))

	var offsetZZ ristretto.Scalar
	offsetZZ.Mul(vc.Z, vc.Z)
	offsetZZ.Mul(&offsetZZ, offsetZ)

	lPoly := ZeroVecPoly1(p.N)
	rPoly := ZeroVecPoly1(p.N)

	expY := offsetY
	var exp2, one ristretto.Scalar
	exp2.SetOne()
	one.SetOne()

	for i := 0; i < int(p.N); i++ {
		aL := uint64ToScalar((p.V >> uint(i)) & 1)
		var aR ristretto.Scalar
		aR.Sub(aL, &one)

		lPoly.As[i].Sub(aL, vc.Z)
		lPoly.Bs[i] = p.SL[i]

		var tmp1, tmp2 ristretto.Scalar
		tmp1.Add(&aR, vc.Z)
		tmp1.Mul(expY, &tmp1)
		tmp2.Mul(&offsetZZ, &exp2)
		rPoly.As[i].Add(&tmp1, &tmp2)
		rPoly.Bs[i].Mul(expY, p.SR[i])

		expY.Mul(expY, vc.Y)
		exp2.Add(&exp2, &exp2)
	}

	tPoly := lPoly.InnerProduct(rPoly)

	t1Blinding, err := randomScalar(p.rng)
	if err != nil {
		return nil, nil, err
	}
	t2Blinding, err := randomScalar(p.rng)
	if err != nil {
		return nil, nil, err
	}

	commitment := &PolyCommitment{
		T1: p.PCGens.Commit(tPoly.B, t1Blinding),
		T2: p.PCGens.Commit(tPoly.C, t2Blinding),
	}

	return &PartyAwaitingPolyChallenge{
		OffsetZZ:        &offsetZZ,
		LPoly:           lPoly,
		RPoly:           rPoly,
		TPoly:           tPoly,
		T1Blinding:      t1Blinding,
		T2Blinding:      t2Blinding,
		VBlinding:       p.VBlinding,
		ABlinding:       p.ABlinding,
		SBlinding:       p.SBlinding,
		valueCommitment: p.commitment,
		polyCommitment:  commitment,
	}, commitment, nil
}

type PartyAwaitingPolyChallenge struct {
	OffsetZZ        *ristretto.Scalar
	LPoly           *VecPoly1
	RPoly           *VecPoly1
	TPoly           *Poly2
	VBlinding       *ristretto.Scalar
	ABlinding       *ristretto.Scalar
	SBlinding       *ristretto.Scalar
	T1Blinding      *ristretto.Scalar
	T2Blinding      *ristretto.Scalar
	valueCommitment *ValueCommitment
	polyCommitment  *PolyCommitment
}

// ApplyPolyChallenge evaluates the committed polynomials at x. A zero x
// would let the dealer extract the blinding factors, so it is refused.
func (p *PartyAwaitingPolyChallenge) ApplyPolyChallenge(pc *PolyChallenge) (*ProofShare, error) {
	if pc == nil || pc.X == nil {
		return nil, errors.Wrap(ErrMalformedMessage, "ApplyPolyChallenge nil challenge")
	}
	if isZeroScalar(pc.X) {
		return nil, ErrMaliciousDealer
	}

	var a ristretto.Scalar
	a.Mul(p.OffsetZZ, p.VBlinding)
	tBlindingPoly := Poly2{
		A: &a,
		B: p.T1Blinding,
		C: p.T2Blinding,
	}

	var eBlinding ristretto.Scalar
	eBlinding.Mul(p.SBlinding, pc.X)
	eBlinding.Add(p.ABlinding, &eBlinding)

	return &ProofShare{
		ValueCommitment: p.valueCommitment,
		PolyCommitment:  p.polyCommitment,
		TX:              p.TPoly.Eval(pc.X),
		TXBlinding:      tBlindingPoly.Eval(pc.X),
		EBlinding:       &eBlinding,
		LVec:            p.LPoly.Eval(pc.X),
		RVec:            p.RPoly.Eval(pc.X),
	}, nil
}
