package bulletproofs

import "github.com/bwesterb/go-ristretto"

// ValueCommitment is what party j sends before the first challenge.
type ValueCommitment struct {
	V *ristretto.Point // commitment to the value and its blinding
	A *ristretto.Point // commitment to the bits
	S *ristretto.Point // commitment to the blinding vectors
}

type ValueChallenge struct {
	Y *ristretto.Scalar
	Z *ristretto.Scalar
}

type PolyCommitment struct {
	T1 *ristretto.Point
	T2 *ristretto.Point
}

type PolyChallenge struct {
	X *ristretto.Scalar
}

// ProofShare is a party's final contribution. LVec and RVec are its
// n-long slices of the aggregated l and r vectors.
type ProofShare struct {
	ValueCommitment *ValueCommitment
	PolyCommitment  *PolyCommitment
	TX              *ristretto.Scalar
	TXBlinding      *ristretto.Scalar
	EBlinding       *ristretto.Scalar
	LVec            []*ristretto.Scalar
	RVec            []*ristretto.Scalar
}

func (c *ValueCommitment) valid() bool {
	return c != nil && c.V != nil && c.A != nil && c.S != nil
}

func (c *PolyCommitment) valid() bool {
	return c != nil && c.T1 != nil && c.T2 != nil
}

func (c *ValueChallenge) clone() *ValueChallenge {
	return &ValueChallenge{Y: cloneScalar(c.Y), Z: cloneScalar(c.Z)}
}

func (c *PolyChallenge) clone() *PolyChallenge {
	return &PolyChallenge{X: cloneScalar(c.X)}
}
