package bulletproofs

import (
	"io"
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

const testTranscriptLabel = "AggregatedRangeProofTest"

func testRNG(seed string) io.Reader {
	h := sha3.NewShake256()
	h.Write([]byte(seed))
	return h
}

func testGens(n, m int64) *GeneratorsView {
	return NewGeneratorsView(NewBulletproofGens(n, m), DefaultPedersenGens())
}

func testDealer(t *testing.T, n, m int64, tr Transcript) *DealerAwaitingValueCommitments {
	dealer, err := NewDealer(DealerConfig{N: n, M: m, Logger: zerolog.Nop()}, tr)
	require.NoError(t, err)
	return dealer
}

// recordingTranscript remembers every message and challenge in order.
type recordingTranscript struct {
	*merlin.Transcript
	ops []transcriptOp
}

type transcriptOp struct {
	extract bool
	label   string
	data    []byte
}

func newRecordingTranscript() *recordingTranscript {
	return &recordingTranscript{Transcript: merlin.NewTranscript(testTranscriptLabel)}
}

func (r *recordingTranscript) AppendMessage(label, message []byte) {
	r.ops = append(r.ops, transcriptOp{label: string(label), data: append([]byte(nil), message...)})
	r.Transcript.AppendMessage(label, message)
}

func (r *recordingTranscript) ExtractBytes(label []byte, outLen int) []byte {
	out := r.Transcript.ExtractBytes(label, outLen)
	r.ops = append(r.ops, transcriptOp{extract: true, label: string(label), data: append([]byte(nil), out...)})
	return out
}

func (r *recordingTranscript) messages(label string) [][]byte {
	var out [][]byte
	for _, op := range r.ops {
		if !op.extract && op.label == label {
			out = append(out, op.data)
		}
	}
	return out
}

func (r *recordingTranscript) challenge(label string) *ristretto.Scalar {
	for _, op := range r.ops {
		if op.extract && op.label == label {
			return fromBytesModOrderWide(op.data)
		}
	}
	return nil
}

// replayUntil builds a fresh transcript in the state r was in right after
// the first challenge drawn under label.
func (r *recordingTranscript) replayUntil(label string) *merlin.Transcript {
	t := merlin.NewTranscript(testTranscriptLabel)
	for _, op := range r.ops {
		if !op.extract {
			t.AppendMessage([]byte(op.label), op.data)
			continue
		}
		t.ExtractBytes([]byte(op.label), len(op.data))
		if op.label == label {
			break
		}
	}
	return t
}

type testParties struct {
	gens    *GeneratorsView
	n       int64
	values  []uint64
	awaitVC []*PartyAwaitingValueChallenge
	awaitPC []*PartyAwaitingPolyChallenge
	vcs     []*ValueCommitment
	pcs     []*PolyCommitment
	shares  []*ProofShare
}

func newTestParties(t *testing.T, gens *GeneratorsView, n int64, values []uint64, seed string) *testParties {
	rng := testRNG(seed)
	tp := &testParties{gens: gens, n: n, values: values}
	for j, v := range values {
		blinding, err := randomScalar(rng)
		require.NoError(t, err)
		party, err := NewParty(gens.Bulletproof, gens.Pedersen, v, blinding, n, rng)
		require.NoError(t, err)
		awaiting, vc, err := party.AssignPosition(j)
		require.NoError(t, err)
		tp.awaitVC = append(tp.awaitVC, awaiting)
		tp.vcs = append(tp.vcs, vc)
	}
	return tp
}

func (tp *testParties) applyValueChallenge(t *testing.T, vc *ValueChallenge) []*PolyCommitment {
	tp.awaitPC, tp.pcs = nil, nil
	for _, p := range tp.awaitVC {
		awaiting, pc, err := p.ApplyValueChallenge(vc)
		require.NoError(t, err)
		tp.awaitPC = append(tp.awaitPC, awaiting)
		tp.pcs = append(tp.pcs, pc)
	}
	return tp.pcs
}

func (tp *testParties) applyPolyChallenge(t *testing.T, pc *PolyChallenge) []*ProofShare {
	tp.shares = nil
	for _, p := range tp.awaitPC {
		share, err := p.ApplyPolyChallenge(pc)
		require.NoError(t, err)
		tp.shares = append(tp.shares, share)
	}
	return tp.shares
}

// runProtocol drives a full run with fresh party messages against tr.
func runProtocol(t *testing.T, n int64, values []uint64, seed string, tr Transcript) (*RangeProof, *testParties) {
	gens := testGens(n, int64(len(values)))
	tp := newTestParties(t, gens, n, values, seed)

	dealer := testDealer(t, n, int64(len(values)), tr)
	dealer2, vc, err := dealer.ReceiveValueCommitments(tp.vcs)
	require.NoError(t, err)
	dealer3, pc, err := dealer2.ReceivePolyCommitments(tp.applyValueChallenge(t, vc))
	require.NoError(t, err)
	proof, err := dealer3.ReceiveShares(tp.applyPolyChallenge(t, pc), gens)
	require.NoError(t, err)
	return proof, tp
}
