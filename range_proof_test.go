package bulletproofs

import (
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProof(t *testing.T, n int64, values []uint64, seed string) (*RangeProof, *GeneratorsView) {
	gens := testGens(n, int64(len(values)))
	rng := testRNG(seed)
	blindings := make([]*ristretto.Scalar, len(values))
	for i := range blindings {
		var err error
		blindings[i], err = randomScalar(rng)
		require.NoError(t, err)
	}
	proof, commitments, err := ProveMultiple(gens, merlin.NewTranscript(testTranscriptLabel), values, blindings, n, WithRNG(rng))
	require.NoError(t, err)
	require.Len(t, commitments, len(values))
	for j := range values {
		require.True(t, commitments[j].Equals(gens.Pedersen.Commit(uint64ToScalar(values[j]), blindings[j])))
	}
	return proof, gens
}

func TestRangeProofVerify(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		n      int64
		values []uint64
	}{
		{8, []uint64{255}},
		{16, []uint64{0, 65535}},
		{32, []uint64{1, 2, 3, 4294967295}},
		{64, []uint64{18446744073709551615, 0}},
	}
	for _, c := range cases {
		proof, gens := testProof(t, c.n, c.values, "verify")
		assert.Equal(c.n, proof.N)
		assert.NoError(proof.Verify(gens, merlin.NewTranscript(testTranscriptLabel)), c.n)
	}
}

func TestRangeProofTampered(t *testing.T) {
	assert := assert.New(t)

	proof, gens := testProof(t, 32, []uint64{10, 20}, "tampered")
	verify := func(p *RangeProof) error {
		return p.Verify(gens, merlin.NewTranscript(testTranscriptLabel))
	}
	assert.NoError(verify(proof))

	assert.ErrorIs(proof.Verify(gens, merlin.NewTranscript("another label")), ErrVerification)

	bad := *proof
	var tx ristretto.Scalar
	bad.TX = tx.Add(proof.TX, uint64ToScalar(1))
	assert.ErrorIs(verify(&bad), ErrVerification)

	bad = *proof
	bad.V = []*ristretto.Point{proof.V[1], proof.V[0]}
	assert.ErrorIs(verify(&bad), ErrVerification)

	bad = *proof
	bad.A, bad.S = proof.S, proof.A
	assert.ErrorIs(verify(&bad), ErrVerification)

	bad = *proof
	bad.N = 16
	assert.ErrorIs(verify(&bad), ErrVerification)

	bad = *proof
	bad.V = append(append([]*ristretto.Point(nil), proof.V...), proof.V[0])
	assert.ErrorIs(verify(&bad), ErrVerification)

	bad = *proof
	bad.T2 = nil
	assert.ErrorIs(verify(&bad), ErrVerification)

	assert.ErrorIs(proof.Verify(testGens(16, 2), merlin.NewTranscript(testTranscriptLabel)), ErrInvalidGeneratorsLength)
}

func TestRangeProofOutOfRange(t *testing.T) {
	assert := assert.New(t)

	gens := testGens(8, 1)
	_, _, err := ProveMultiple(gens, merlin.NewTranscript(testTranscriptLabel), []uint64{256}, []*ristretto.Scalar{uint64ToScalar(1)}, 8)
	assert.Error(err)
}

func TestDelta(t *testing.T) {
	assert := assert.New(t)

	y, z := uint64ToScalar(3), uint64ToScalar(5)
	// (z - z^2) * (1 + 3 + ... + 3^7) - z^3 * (2^4 - 1) * (1 + z)
	var expected, tmp ristretto.Scalar
	expected.Sub(z, uint64ToScalar(25))
	expected.Mul(&expected, uint64ToScalar(3280))
	tmp.Mul(uint64ToScalar(125), uint64ToScalar(15))
	tmp.Mul(&tmp, uint64ToScalar(6))
	expected.Sub(&expected, &tmp)
	assert.True(delta(4, 2, y, z).Equals(&expected))
}
