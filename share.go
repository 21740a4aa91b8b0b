package bulletproofs

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"
)

func (ps *ProofShare) checkSize(n int64, bpGens *BulletproofGens, j int) error {
	if ps == nil || !ps.ValueCommitment.valid() || !ps.PolyCommitment.valid() {
		return errors.Wrapf(ErrMalformedMessage, "share %d incomplete commitments", j)
	}
	if ps.TX == nil || ps.TXBlinding == nil || ps.EBlinding == nil {
		return errors.Wrapf(ErrMalformedMessage, "share %d incomplete scalars", j)
	}
	if len(ps.LVec) != int(n) {
		return errors.Wrapf(ErrMalformedMessage, "share %d l_vec %d, n %d", j, len(ps.LVec), n)
	}
	if len(ps.RVec) != int(n) {
		return errors.Wrapf(ErrMalformedMessage, "share %d r_vec %d, n %d", j, len(ps.RVec), n)
	}
	for i := range ps.LVec {
		if ps.LVec[i] == nil || ps.RVec[i] == nil {
			return errors.Wrapf(ErrMalformedMessage, "share %d nil vector entry %d", j, i)
		}
	}
	if n > bpGens.GensCapacity {
		return errors.Wrapf(ErrInvalidGeneratorsLength, "share %d n %d, GensCapacity %d", j, n, bpGens.GensCapacity)
	}
	if int64(j) >= bpGens.PartyCapacity {
		return errors.Wrapf(ErrInvalidGeneratorsLength, "share %d, PartyCapacity %d", j, bpGens.PartyCapacity)
	}
	return nil
}

// VerifyShare audits the share of the party at position bpShare.Share against
// the challenges it was computed under. It checks that t_x = <l, r>, that l and
// r open A + x*S, and that t_x and its blinding open the combination of V, T_1
// and T_2 at x.
func (ps *ProofShare) VerifyShare(pcGens *PedersenGens, bpShare *BulletproofGensShare, vc *ValueChallenge, pc *PolyChallenge) error {
	if ps == nil {
		return errors.Wrap(ErrInvalidShare, "nil share")
	}
	n := int64(len(ps.LVec))
	if err := ps.checkSize(n, bpShare.Gens, bpShare.Share); err != nil {
		return errors.Wrap(ErrInvalidShare, err.Error())
	}
	j := bpShare.Share
	y, z, x := vc.Y, vc.Z, pc.X

	var zz ristretto.Scalar
	zz.Mul(z, z)
	zJ := ScalarExpVartime(z, uint64(j))
	yJN := ScalarExpVartime(y, uint64(int64(j)*n))
	var yInv, yJNInv ristretto.Scalar
	yInv.Inverse(y)
	yJNInv.Inverse(yJN)

	if !innerProduct(ps.LVec, ps.RVec).Equals(ps.TX) {
		return errors.Wrapf(ErrInvalidShare, "share %d t_x is not <l, r>", j)
	}

	var zzzJ ristretto.Scalar
	zzzJ.Mul(&zz, zJ)
	var one ristretto.Scalar
	one.SetOne()

	scalars := []*ristretto.Scalar{&one, x, negScalar(ps.EBlinding)}
	points := []*ristretto.Point{ps.ValueCommitment.A, ps.ValueCommitment.S, pcGens.BBlinding}
	G := bpShare.G(n)
	H := bpShare.H(n)
	minusZ := negScalar(z)
	exp2 := NewScalarExp(uint64ToScalar(2))
	expYInv := NewScalarExp(&yInv)
	for i := 0; i < int(n); i++ {
		var g ristretto.Scalar
		g.Sub(minusZ, ps.LVec[i])

		var h ristretto.Scalar
		h.Mul(&zzzJ, exp2.Next())
		h.Sub(&h, ps.RVec[i])
		h.Mul(&h, expYInv.Next())
		h.Mul(&h, &yJNInv)
		h.Add(&h, z)

		scalars = append(scalars, &g, &h)
		points = append(points, G[i], H[i])
	}
	if !isIdentity(multiscalarMul(scalars, points)) {
		return errors.Wrapf(ErrInvalidShare, "share %d l, r do not open A + x*S", j)
	}

	var xx ristretto.Scalar
	xx.Mul(x, x)

	var delta, tmp ristretto.Scalar
	delta.Sub(z, &zz)
	delta.Mul(&delta, sumOfPowers(y, n))
	delta.Mul(&delta, yJN)
	tmp.Mul(z, &zzzJ)
	tmp.Mul(&tmp, sumOfPowers(uint64ToScalar(2), n))
	delta.Sub(&delta, &tmp)

	var deltaMinusTX ristretto.Scalar
	deltaMinusTX.Sub(&delta, ps.TX)
	tCheck := multiscalarMul(
		[]*ristretto.Scalar{&zzzJ, x, &xx, &deltaMinusTX, negScalar(ps.TXBlinding)},
		[]*ristretto.Point{ps.ValueCommitment.V, ps.PolyCommitment.T1, ps.PolyCommitment.T2, pcGens.B, pcGens.BBlinding},
	)
	if !isIdentity(tCheck) {
		return errors.Wrapf(ErrInvalidShare, "share %d t_x does not open the polynomial commitments", j)
	}
	return nil
}
