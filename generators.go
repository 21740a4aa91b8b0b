package bulletproofs

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const HASH_TO_POINT_DOMAIN_TAG = "mc_onetime_key_hash_to_point"

type PedersenGens struct {
	B         *ristretto.Point
	BBlinding *ristretto.Point
}

// NewPedersenGens uses the ristretto basepoint for blinding and a
// hash-to-point of it for values.
func NewPedersenGens() *PedersenGens {
	var base ristretto.Point
	base.SetBase()

	return &PedersenGens{
		B:         hashToPoint(&base),
		BBlinding: &base,
	}
}

// DefaultPedersenGens uses the ristretto basepoint for values and the
// SHA3-512 hash of it for blinding.
func DefaultPedersenGens() *PedersenGens {
	var base ristretto.Point
	base.SetBase()

	h := sha3.New512()
	h.Write(base.Bytes())

	return &PedersenGens{
		B:         &base,
		BBlinding: pointFromUniformBytes(h.Sum(nil)),
	}
}

// Commit returns value * B + blinding * B_blinding.
func (pg *PedersenGens) Commit(value, blinding *ristretto.Scalar) *ristretto.Point {
	return multiscalarMul([]*ristretto.Scalar{value, blinding}, []*ristretto.Point{pg.B, pg.BBlinding})
}

type BulletproofGens struct {
	GensCapacity  int64
	PartyCapacity int64
	GVec          [][]*ristretto.Point
	HVec          [][]*ristretto.Point
}

func NewBulletproofGens(gensCapacity, partyCapacity int64) *BulletproofGens {
	b := &BulletproofGens{
		GensCapacity:  0,
		PartyCapacity: partyCapacity,
		GVec:          make([][]*ristretto.Point, partyCapacity),
		HVec:          make([][]*ristretto.Point, partyCapacity),
	}
	b.IncreaseCapacity(gensCapacity)
	return b
}

// IncreaseCapacity extends every party's G and H vectors to capacity
// generators. Existing generators are kept.
func (b *BulletproofGens) IncreaseCapacity(capacity int64) {
	if b.GensCapacity >= capacity {
		return
	}
	for i := 0; i < int(b.PartyCapacity); i++ {
		var party [4]byte
		binary.LittleEndian.PutUint32(party[:], uint32(i))

		label := append([]byte("G"), party[:]...)
		b.GVec[i] = append(b.GVec[i], b.chain(label, capacity)...)

		label[0] = 'H'
		b.HVec[i] = append(b.HVec[i], b.chain(label, capacity)...)
	}
	b.GensCapacity = capacity
}

func (b *BulletproofGens) chain(label []byte, capacity int64) []*ristretto.Point {
	c := NewGeneratorsChain(label)
	c.FastForward(b.GensCapacity)

	points := make([]*ristretto.Point, capacity-b.GensCapacity)
	for j := range points {
		points[j] = c.Next()
	}
	return points
}

func (b *BulletproofGens) G(n, m int64) *AggregatedGensIter {
	return &AggregatedGensIter{
		N:     n,
		M:     m,
		Array: b.GVec,
	}
}

func (b *BulletproofGens) H(n, m int64) *AggregatedGensIter {
	return &AggregatedGensIter{
		N:     n,
		M:     m,
		Array: b.HVec,
	}
}

// AggregatedGensIter walks the first N generators of each of the first M
// parties, party by party.
type AggregatedGensIter struct {
	Array    [][]*ristretto.Point
	N, M     int64
	PartyIdX int64
	GenIdX   int64
}

func (a *AggregatedGensIter) Next() *ristretto.Point {
	if a.GenIdX >= a.N {
		a.GenIdX = 0
		a.PartyIdX += 1
	}
	if a.PartyIdX >= a.M {
		return nil
	}
	cur := a.GenIdX
	a.GenIdX += 1
	return a.Array[a.PartyIdX][cur]
}

// Collect drains the iterator.
func (a *AggregatedGensIter) Collect() []*ristretto.Point {
	out := make([]*ristretto.Point, 0, a.N*a.M)
	for p := a.Next(); p != nil; p = a.Next() {
		out = append(out, p)
	}
	return out
}

type GeneratorsChain struct {
	sha3.ShakeHash
}

func NewGeneratorsChain(label []byte) *GeneratorsChain {
	h := sha3.NewShake256()
	h.Write([]byte("GeneratorsChain"))
	h.Write(label)
	return &GeneratorsChain{h}
}

func (c *GeneratorsChain) FastForward(n int64) {
	var data [64]byte
	for i := 0; i < int(n); i++ {
		c.Read(data[:])
	}
}

func (c *GeneratorsChain) Next() *ristretto.Point {
	var data [64]byte
	c.Read(data[:])
	return pointFromUniformBytes(data[:])
}

func pointFromUniformBytes(key []byte) *ristretto.Point {
	var r1Bytes, r2Bytes [32]byte
	copy(r1Bytes[:], key[:32])
	copy(r2Bytes[:], key[32:])
	var r, r1, r2 ristretto.Point
	return r.Add(r1.SetElligator(&r1Bytes), r2.SetElligator(&r2Bytes))
}

func hashToPoint(public *ristretto.Point) *ristretto.Point {
	hash := blake2b.New512()
	hash.Write([]byte(HASH_TO_POINT_DOMAIN_TAG))
	hash.Write(public.Bytes())
	return pointFromUniformBytes(hash.Sum(nil))
}

type BulletproofGensShare struct {
	Gens  *BulletproofGens
	Share int
}

func (b *BulletproofGens) Share(j int) *BulletproofGensShare {
	return &BulletproofGensShare{
		Gens:  b,
		Share: j,
	}
}

func (g *BulletproofGensShare) G(n int64) []*ristretto.Point {
	return g.Gens.GVec[g.Share][:n]
}

func (g *BulletproofGensShare) H(n int64) []*ristretto.Point {
	return g.Gens.HVec[g.Share][:n]
}

// GeneratorsView is the read-only set of public points a proof of shape
// (n, m) is built against.
type GeneratorsView struct {
	Pedersen    *PedersenGens
	Bulletproof *BulletproofGens
}

func NewGeneratorsView(bp *BulletproofGens, pc *PedersenGens) *GeneratorsView {
	return &GeneratorsView{
		Pedersen:    pc,
		Bulletproof: bp,
	}
}

// B is the primary base generator.
func (v *GeneratorsView) B() *ristretto.Point {
	return v.Pedersen.B
}

// G returns n*m generators, index-aligned with the concatenated l vector.
func (v *GeneratorsView) G(n, m int64) []*ristretto.Point {
	return v.Bulletproof.G(n, m).Collect()
}

// H returns n*m generators, index-aligned with the concatenated r vector.
func (v *GeneratorsView) H(n, m int64) []*ristretto.Point {
	return v.Bulletproof.H(n, m).Collect()
}

func (v *GeneratorsView) Share(j int) *BulletproofGensShare {
	return v.Bulletproof.Share(j)
}

func (v *GeneratorsView) check(n, m int64) error {
	if v == nil || v.Pedersen == nil || v.Bulletproof == nil {
		return errors.Wrap(ErrInvalidGeneratorsLength, "nil generators")
	}
	if v.Bulletproof.GensCapacity < n {
		return errors.Wrapf(ErrInvalidGeneratorsLength, "GensCapacity %d, n %d", v.Bulletproof.GensCapacity, n)
	}
	if v.Bulletproof.PartyCapacity < m {
		return errors.Wrapf(ErrInvalidGeneratorsLength, "PartyCapacity %d, m %d", v.Bulletproof.PartyCapacity, m)
	}
	return nil
}
