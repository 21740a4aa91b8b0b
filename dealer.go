package bulletproofs

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DealerConfig is the public shape of the aggregated proof.
type DealerConfig struct {
	N      int64 // bits per value: 8, 16, 32 or 64
	M      int64 // number of parties, a power of two
	Logger zerolog.Logger
}

// DealerAwaitingValueCommitments is the dealer once the proof shape is bound
// to the transcript.
//
// Every dealer state is good for exactly one successful transition. A failed
// call leaves the state and the transcript untouched so the caller can retry
// with a corrected batch; a successful one marks the state spent.
type DealerAwaitingValueCommitments struct {
	n, m       int64
	transcript Transcript
	logger     zerolog.Logger
	spent      bool
}

// NewDealer appends the domain separator, n and m to t. The same t must be
// used for the whole run and must not be written to by anyone else meanwhile.
func NewDealer(cfg DealerConfig, t Transcript) (*DealerAwaitingValueCommitments, error) {
	if t == nil {
		return nil, errors.New("NewDealer nil transcript")
	}
	if err := checkBitsize(cfg.N); err != nil {
		return nil, errors.Wrap(err, "NewDealer")
	}
	if err := checkAggregation(cfg.M); err != nil {
		return nil, errors.Wrap(err, "NewDealer")
	}

	RangeproofDomainSep(cfg.N, cfg.M, t)

	logger := cfg.Logger.With().
		Str("component", "dealer").
		Int64("n", cfg.N).
		Int64("m", cfg.M).
		Logger()
	logger.Debug().Msg("dealer started")

	return &DealerAwaitingValueCommitments{
		n:          cfg.N,
		m:          cfg.M,
		transcript: t,
		logger:     logger,
	}, nil
}

func (d *DealerAwaitingValueCommitments) N() int64 { return d.n }
func (d *DealerAwaitingValueCommitments) M() int64 { return d.m }

// ReceiveValueCommitments commits every V in batch order, then the sums of
// the A and S commitments, and draws the y and z challenges.
func (d *DealerAwaitingValueCommitments) ReceiveValueCommitments(commitments []*ValueCommitment) (*DealerAwaitingPolyCommitments, *ValueChallenge, error) {
	if d.spent {
		return nil, nil, errors.Wrap(ErrStateConsumed, "ReceiveValueCommitments")
	}
	if int(d.m) != len(commitments) {
		d.logger.Warn().Int("received", len(commitments)).Msg("value commitments rejected")
		return nil, nil, errors.Wrapf(ErrLengthMismatch, "ReceiveValueCommitments expected %d, got %d", d.m, len(commitments))
	}
	for j, c := range commitments {
		if !c.valid() {
			d.logger.Warn().Int("party", j).Msg("value commitments rejected")
			return nil, nil, errors.Wrapf(ErrMalformedMessage, "ReceiveValueCommitments party %d", j)
		}
	}

	As := make([]*ristretto.Point, len(commitments))
	Ss := make([]*ristretto.Point, len(commitments))
	for j, c := range commitments {
		AppendPoint("V", c.V, d.transcript)
		As[j] = c.A
		Ss[j] = c.S
	}
	A := sumPoints(As)
	S := sumPoints(Ss)
	AppendPoint("A", A, d.transcript)
	AppendPoint("S", S, d.transcript)

	y := ChallengeScalar("y", d.transcript)
	z := ChallengeScalar("z", d.transcript)
	challenge := &ValueChallenge{Y: y, Z: z}

	d.spent = true
	d.logger.Debug().Msg("value commitments received")

	return &DealerAwaitingPolyCommitments{
		n:                d.n,
		m:                d.m,
		transcript:       d.transcript,
		logger:           d.logger,
		valueChallenge:   challenge,
		valueCommitments: append([]*ValueCommitment(nil), commitments...),
	}, challenge.clone(), nil
}

type DealerAwaitingPolyCommitments struct {
	n, m             int64
	transcript       Transcript
	logger           zerolog.Logger
	valueChallenge   *ValueChallenge
	valueCommitments []*ValueCommitment
	spent            bool
}

func (d *DealerAwaitingPolyCommitments) N() int64 { return d.n }
func (d *DealerAwaitingPolyCommitments) M() int64 { return d.m }

func (d *DealerAwaitingPolyCommitments) ValueChallenge() *ValueChallenge {
	return d.valueChallenge.clone()
}

// ReceivePolyCommitments commits the sums of the T_1 and T_2 commitments and
// draws the evaluation point x.
func (d *DealerAwaitingPolyCommitments) ReceivePolyCommitments(commitments []*PolyCommitment) (*DealerAwaitingProofShares, *PolyChallenge, error) {
	if d.spent {
		return nil, nil, errors.Wrap(ErrStateConsumed, "ReceivePolyCommitments")
	}
	if int(d.m) != len(commitments) {
		d.logger.Warn().Int("received", len(commitments)).Msg("poly commitments rejected")
		return nil, nil, errors.Wrapf(ErrLengthMismatch, "ReceivePolyCommitments expected %d, got %d", d.m, len(commitments))
	}
	T1s := make([]*ristretto.Point, len(commitments))
	T2s := make([]*ristretto.Point, len(commitments))
	for j, c := range commitments {
		if !c.valid() {
			d.logger.Warn().Int("party", j).Msg("poly commitments rejected")
			return nil, nil, errors.Wrapf(ErrMalformedMessage, "ReceivePolyCommitments party %d", j)
		}
		T1s[j] = c.T1
		T2s[j] = c.T2
	}

	AppendPoint("T_1", sumPoints(T1s), d.transcript)
	AppendPoint("T_2", sumPoints(T2s), d.transcript)

	x := ChallengeScalar("x", d.transcript)
	challenge := &PolyChallenge{X: x}

	d.spent = true
	d.logger.Debug().Msg("poly commitments received")

	return &DealerAwaitingProofShares{
		n:                d.n,
		m:                d.m,
		transcript:       d.transcript,
		logger:           d.logger,
		valueChallenge:   d.valueChallenge,
		valueCommitments: d.valueCommitments,
		polyChallenge:    challenge,
		polyCommitments:  append([]*PolyCommitment(nil), commitments...),
	}, challenge.clone(), nil
}

type DealerAwaitingProofShares struct {
	n, m             int64
	transcript       Transcript
	logger           zerolog.Logger
	valueChallenge   *ValueChallenge
	valueCommitments []*ValueCommitment
	polyChallenge    *PolyChallenge
	polyCommitments  []*PolyCommitment
	spent            bool
}

func (d *DealerAwaitingProofShares) N() int64 { return d.n }
func (d *DealerAwaitingProofShares) M() int64 { return d.m }

func (d *DealerAwaitingProofShares) ValueChallenge() *ValueChallenge {
	return d.valueChallenge.clone()
}

func (d *DealerAwaitingProofShares) PolyChallenge() *PolyChallenge {
	return d.polyChallenge.clone()
}

// ReceiveShares audits every share, then aggregates them into the final
// proof. If any share fails, none of them is used and the returned
// *InvalidShareError lists every failing position.
func (d *DealerAwaitingProofShares) ReceiveShares(shares []*ProofShare, gens *GeneratorsView) (*RangeProof, error) {
	if d.spent {
		return nil, errors.Wrap(ErrStateConsumed, "ReceiveShares")
	}
	if int(d.m) != len(shares) {
		d.logger.Warn().Int("received", len(shares)).Msg("proof shares rejected")
		return nil, errors.Wrapf(ErrLengthMismatch, "ReceiveShares expected %d, got %d", d.m, len(shares))
	}
	if err := gens.check(d.n, d.m); err != nil {
		return nil, errors.Wrap(err, "ReceiveShares")
	}

	var badShares []int
	for j, ps := range shares {
		if err := d.auditShare(j, ps, gens); err != nil {
			d.logger.Debug().Err(err).Int("party", j).Msg("share audit failed")
			badShares = append(badShares, j)
		}
	}
	if len(badShares) > 0 {
		d.logger.Warn().Ints("parties", badShares).Msg("proof shares rejected")
		return nil, &InvalidShareError{Indices: badShares}
	}

	m := len(shares)
	V := make([]*ristretto.Point, m)
	As, Ss := make([]*ristretto.Point, m), make([]*ristretto.Point, m)
	T1s, T2s := make([]*ristretto.Point, m), make([]*ristretto.Point, m)
	txs, txBlindings, eBlindings := make([]*ristretto.Scalar, m), make([]*ristretto.Scalar, m), make([]*ristretto.Scalar, m)
	for j, ps := range shares {
		V[j] = clonePoint(ps.ValueCommitment.V)
		As[j], Ss[j] = ps.ValueCommitment.A, ps.ValueCommitment.S
		T1s[j], T2s[j] = ps.PolyCommitment.T1, ps.PolyCommitment.T2
		txs[j], txBlindings[j], eBlindings[j] = ps.TX, ps.TXBlinding, ps.EBlinding
	}
	tx := sumScalars(txs)
	txBlinding := sumScalars(txBlindings)
	eBlinding := sumScalars(eBlindings)

	AppendScalar("t_x", tx, d.transcript)
	AppendScalar("t_x_blinding", txBlinding, d.transcript)
	AppendScalar("e_blinding", eBlinding, d.transcript)

	// w binds the inner product argument to this proof instance.
	w := ChallengeScalar("w", d.transcript)
	var Q ristretto.Point
	Q.ScalarMult(gens.B(), w)

	lVec, rVec := concatShareVectors(shares)
	gFactors, hFactors := ippFactors(d.valueChallenge.Y, d.n*d.m)
	ippProof := CreateInnerProductProof(d.transcript, &Q, gFactors, hFactors, gens.G(d.n, d.m), gens.H(d.n, d.m), lVec, rVec)

	d.spent = true
	d.logger.Debug().Msg("proof assembled")

	return &RangeProof{
		N:          d.n,
		V:          V,
		A:          sumPoints(As),
		S:          sumPoints(Ss),
		T1:         sumPoints(T1s),
		T2:         sumPoints(T2s),
		TX:         tx,
		TXBlinding: txBlinding,
		EBlinding:  eBlinding,
		IPPProof:   ippProof,
	}, nil
}

// auditShare checks the share at position j refers to the commitments
// received from that position and passes its own audit.
func (d *DealerAwaitingProofShares) auditShare(j int, ps *ProofShare, gens *GeneratorsView) error {
	if err := ps.checkSize(d.n, gens.Bulletproof, j); err != nil {
		return err
	}
	vc, pc := d.valueCommitments[j], d.polyCommitments[j]
	if !ps.ValueCommitment.V.Equals(vc.V) || !ps.ValueCommitment.A.Equals(vc.A) || !ps.ValueCommitment.S.Equals(vc.S) {
		return errors.Wrapf(ErrInvalidShare, "share %d value commitment differs from round one", j)
	}
	if !ps.PolyCommitment.T1.Equals(pc.T1) || !ps.PolyCommitment.T2.Equals(pc.T2) {
		return errors.Wrapf(ErrInvalidShare, "share %d poly commitment differs from round two", j)
	}
	return ps.VerifyShare(gens.Pedersen, gens.Share(j), d.valueChallenge, d.polyChallenge)
}

// concatShareVectors joins the l and r slices of every share in batch order.
func concatShareVectors(shares []*ProofShare) ([]*ristretto.Scalar, []*ristretto.Scalar) {
	var lVec, rVec []*ristretto.Scalar
	for _, ps := range shares {
		lVec = append(lVec, cloneScalars(ps.LVec)...)
		rVec = append(rVec, cloneScalars(ps.RVec)...)
	}
	return lVec, rVec
}

// ippFactors returns the G factors (all one) and the H factors y^-i used to
// turn H into H' = y^-i * H for the inner product argument.
func ippFactors(y *ristretto.Scalar, size int64) ([]*ristretto.Scalar, []*ristretto.Scalar) {
	var inverseY ristretto.Scalar
	inverseY.Inverse(y)
	hFactors := NewScalarExp(&inverseY).Take(size)

	gFactors := make([]*ristretto.Scalar, size)
	for i := range gFactors {
		var one ristretto.Scalar
		gFactors[i] = one.SetOne()
	}
	return gFactors, hFactors
}
