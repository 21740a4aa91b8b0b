package bulletproofs

import (
	"bytes"

	"github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the RangeProof envelope, compatible with
//
//	message RangeProof {
//	  uint64 n = 1;
//	  repeated bytes value_commitments = 2;
//	  bytes proof = 3;
//	}
const (
	rangeProofFieldN     protowire.Number = 1
	rangeProofFieldV     protowire.Number = 2
	rangeProofFieldProof protowire.Number = 3
)

// Marshal encodes the proof together with its bitsize and value commitments.
func (p *RangeProof) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, rangeProofFieldN, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.N))
	for _, V := range p.V {
		b = protowire.AppendTag(b, rangeProofFieldV, protowire.BytesType)
		b = protowire.AppendBytes(b, V.Bytes())
	}
	b = protowire.AppendTag(b, rangeProofFieldProof, protowire.BytesType)
	b = protowire.AppendBytes(b, p.ToBytes())
	return b
}

func UnmarshalRangeProof(b []byte) (*RangeProof, error) {
	var n uint64
	var V []*ristretto.Point
	var proof []byte
	for len(b) > 0 {
		num, typ, l := protowire.ConsumeTag(b)
		if l < 0 {
			return nil, errors.Wrap(ErrFormat, protowire.ParseError(l).Error())
		}
		b = b[l:]

		switch {
		case num == rangeProofFieldN && typ == protowire.VarintType:
			n, l = protowire.ConsumeVarint(b)
		case num == rangeProofFieldV && typ == protowire.BytesType:
			var v []byte
			v, l = protowire.ConsumeBytes(b)
			if l >= 0 {
				point, err := pointFromBytes(v)
				if err != nil {
					return nil, err
				}
				V = append(V, point)
			}
		case num == rangeProofFieldProof && typ == protowire.BytesType:
			proof, l = protowire.ConsumeBytes(b)
		default:
			l = protowire.ConsumeFieldValue(num, typ, b)
		}
		if l < 0 {
			return nil, errors.Wrap(ErrFormat, protowire.ParseError(l).Error())
		}
		b = b[l:]
	}

	if n > 64 {
		return nil, errors.Wrapf(ErrFormat, "bitsize %d", n)
	}
	p, err := RangeProofFromBytes(proof)
	if err != nil {
		return nil, err
	}
	p.N = int64(n)
	p.V = V
	return p, nil
}

func pointFromBytes(b []byte) (*ristretto.Point, error) {
	if len(b) != 32 {
		return nil, errors.Wrapf(ErrFormat, "point length %d", len(b))
	}
	var buf [32]byte
	copy(buf[:], b)
	var p ristretto.Point
	if !p.SetBytes(&buf) {
		return nil, errors.Wrap(ErrFormat, "point is not a valid ristretto encoding")
	}
	return &p, nil
}

// scalarFromBytes only accepts canonical encodings, i.e. values below the
// group order.
func scalarFromBytes(b []byte) (*ristretto.Scalar, error) {
	if len(b) != 32 {
		return nil, errors.Wrapf(ErrFormat, "scalar length %d", len(b))
	}
	s := fromBytesModOrderWide(b)
	if !bytes.Equal(s.Bytes(), b) {
		return nil, errors.Wrap(ErrFormat, "scalar is not canonical")
	}
	return s, nil
}
