package bulletproofs

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

const BULLETPROOF_DOMAIN_TAG = "mc_bulletproof_transcript"

// Transcript is the Fiat-Shamir state threaded through one protocol run.
// *merlin.Transcript implements it.
type Transcript interface {
	AppendMessage(label, message []byte)
	ExtractBytes(label []byte, outLen int) []byte
}

func InitialTranscript(label string) *merlin.Transcript {
	return merlin.NewTranscript(label)
}

// RangeproofDomainSep binds the transcript to the proof shape before any
// commitment is appended.
func RangeproofDomainSep(n int64, m int64, t Transcript) Transcript {
	appendBytes([]byte("dom-sep"), []byte("rangeproof v1"), t)

	appendUint64("n", uint64(n), t)
	appendUint64("m", uint64(m), t)
	return t
}

func InnerproductDomainSep(n uint64, t Transcript) {
	appendBytes([]byte("dom-sep"), []byte("ipp v1"), t)
	appendUint64("n", n, t)
}

func appendBytes(field, data []byte, t Transcript) {
	t.AppendMessage(field, data)
}

func appendUint64(label string, i uint64, t Transcript) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, i)
	appendBytes([]byte(label), buf, t)
}

// ChallengeScalar draws 64 bytes under label and reduces them mod the group order.
func ChallengeScalar(label string, t Transcript) *ristretto.Scalar {
	data := t.ExtractBytes([]byte(label), 64)
	var dataBytes [64]byte
	copy(dataBytes[:], data)

	var s ristretto.Scalar
	return s.SetReduced(&dataBytes)
}

func AppendScalar(label string, s *ristretto.Scalar, t Transcript) {
	appendBytes([]byte(label), s.Bytes(), t)
}

func AppendPoint(label string, p *ristretto.Point, t Transcript) {
	appendBytes([]byte(label), p.Bytes(), t)
}
