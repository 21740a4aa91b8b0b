package bulletproofs

import (
	"io"

	"github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"
)

type proveOptions struct {
	logger zerolog.Logger
	rng    io.Reader
}

type ProveOption func(*proveOptions)

func WithLogger(logger zerolog.Logger) ProveOption {
	return func(o *proveOptions) {
		o.logger = logger
	}
}

// WithRNG makes the party blinding factors derive from rng. Each party gets
// its own stream seeded from rng in position order, so a deterministic rng
// gives a deterministic proof.
func WithRNG(rng io.Reader) ProveOption {
	return func(o *proveOptions) {
		o.rng = rng
	}
}

// GenerateRangeProofs proves every value is a 64-bit integer, padding the
// batch to a power of two by repeating the last value and blinding.
func GenerateRangeProofs(bpGens *BulletproofGens, pcGens *PedersenGens, values []uint64, blindings []*ristretto.Scalar, opts ...ProveOption) (*RangeProof, []*ristretto.Point, error) {
	if len(values) == 0 {
		return nil, nil, errors.New("GenerateRangeProofs no values")
	}
	if len(values) != len(blindings) {
		return nil, nil, errors.Errorf("GenerateRangeProofs WrongNumBlindingFactors %d, %d", len(values), len(blindings))
	}
	valuesPadded := resizeUint64ToPow2(append([]uint64(nil), values...))
	blindingsPadded := resizeScalarToPow2(append([]*ristretto.Scalar(nil), blindings...))

	transcript := InitialTranscript(BULLETPROOF_DOMAIN_TAG)
	return ProveMultiple(NewGeneratorsView(bpGens, pcGens), transcript, valuesPadded, blindingsPadded, 64, opts...)
}

// ProveMultiple runs the dealer and one party per value in process. The
// parties of a round run concurrently; the dealer rounds run in order on t.
func ProveMultiple(gens *GeneratorsView, t Transcript, values []uint64, blindings []*ristretto.Scalar, n int64, opts ...ProveOption) (*RangeProof, []*ristretto.Point, error) {
	var o proveOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(values) != len(blindings) {
		return nil, nil, errors.Errorf("ProveMultiple WrongNumBlindingFactors %d, %d", len(values), len(blindings))
	}
	m := len(values)

	dealer, err := NewDealer(DealerConfig{N: n, M: int64(m), Logger: o.logger}, t)
	if err != nil {
		return nil, nil, err
	}

	parties := make([]*PartyAwaitingPosition, m)
	for j := range values {
		rng, err := partyRNG(o.rng)
		if err != nil {
			return nil, nil, err
		}
		parties[j], err = NewParty(gens.Bulletproof, gens.Pedersen, values[j], blindings[j], n, rng)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "party %d", j)
		}
	}

	partiesA := make([]*PartyAwaitingValueChallenge, m)
	valueCommitments := make([]*ValueCommitment, m)
	err = eachParty(m, func(j int) error {
		var err error
		partiesA[j], valueCommitments[j], err = parties[j].AssignPosition(j)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	dealer2, valueChallenge, err := dealer.ReceiveValueCommitments(valueCommitments)
	if err != nil {
		return nil, nil, err
	}

	partiesB := make([]*PartyAwaitingPolyChallenge, m)
	polyCommitments := make([]*PolyCommitment, m)
	err = eachParty(m, func(j int) error {
		var err error
		partiesB[j], polyCommitments[j], err = partiesA[j].ApplyValueChallenge(valueChallenge)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	dealer3, polyChallenge, err := dealer2.ReceivePolyCommitments(polyCommitments)
	if err != nil {
		return nil, nil, err
	}

	shares := make([]*ProofShare, m)
	err = eachParty(m, func(j int) error {
		var err error
		shares[j], err = partiesB[j].ApplyPolyChallenge(polyChallenge)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	proof, err := dealer3.ReceiveShares(shares, gens)
	if err != nil {
		return nil, nil, err
	}
	return proof, proof.V, nil
}

// eachParty runs fn for every position concurrently. fn must only write to
// its own position.
func eachParty(m int, fn func(j int) error) error {
	var g errgroup.Group
	for j := 0; j < m; j++ {
		j := j
		g.Go(func() error {
			if err := fn(j); err != nil {
				return errors.Wrapf(err, "party %d", j)
			}
			return nil
		})
	}
	return g.Wait()
}

func partyRNG(rng io.Reader) (io.Reader, error) {
	if rng == nil {
		return nil, nil
	}
	var seed [32]byte
	if _, err := io.ReadFull(rng, seed[:]); err != nil {
		return nil, err
	}
	h := sha3.NewShake256()
	h.Write([]byte("party rng"))
	h.Write(seed[:])
	return h, nil
}
