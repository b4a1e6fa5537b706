package catalog

import (
	"math"

	"github.com/fine-structures/zeosite/zeo"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

const kCodecVersion = 1

// AppendFramework appends the wire encoding of fw to the given buffer.
//
// Layout, using protobuf varint / fixed64 primitives in fixed order:
//
//	version, atom count, 9 x lattice (fixed64), pbc bitmask,
//	per atom: symbol (length-prefixed), species, 3 x position (fixed64)
func AppendFramework(io []byte, fw *zeo.Framework) []byte {
	buf := proto.NewBuffer(io)

	buf.EncodeVarint(kCodecVersion)
	buf.EncodeVarint(uint64(fw.NumAtoms()))
	for _, vec := range fw.Cell.Vectors {
		for _, x := range vec {
			buf.EncodeFixed64(math.Float64bits(x))
		}
	}
	pbc := uint64(0)
	for i, periodic := range fw.Cell.PBC {
		if periodic {
			pbc |= 1 << i
		}
	}
	buf.EncodeVarint(pbc)

	for i := range fw.Atoms {
		atom := &fw.Atoms[i]
		buf.EncodeStringBytes(atom.Symbol)
		buf.EncodeVarint(uint64(atom.Species))
		for _, x := range atom.Pos {
			buf.EncodeFixed64(math.Float64bits(x))
		}
	}

	return buf.Bytes()
}

// decoder reads wire primitives and keeps the first error.
type decoder struct {
	buf *proto.Buffer
	err error
}

func (dec *decoder) varint() uint64 {
	if dec.err != nil {
		return 0
	}
	var x uint64
	x, dec.err = dec.buf.DecodeVarint()
	return x
}

func (dec *decoder) float() float64 {
	if dec.err != nil {
		return 0
	}
	var x uint64
	x, dec.err = dec.buf.DecodeFixed64()
	return math.Float64frombits(x)
}

func (dec *decoder) str() string {
	if dec.err != nil {
		return ""
	}
	var s string
	s, dec.err = dec.buf.DecodeStringBytes()
	return s
}

// DecodeFramework is the inverse of AppendFramework.
func DecodeFramework(enc []byte) (*zeo.Framework, error) {
	dec := decoder{
		buf: proto.NewBuffer(enc),
	}

	if vers := dec.varint(); dec.err == nil && vers != kCodecVersion {
		return nil, errors.Wrapf(zeo.ErrBadEncoding, "codec version %d", vers)
	}

	// Each atom takes well over one byte so a larger count can only be corrupt
	N := dec.varint()
	if N > uint64(len(enc)) {
		return nil, errors.Wrapf(zeo.ErrBadEncoding, "atom count %d exceeds encoding size", N)
	}

	fw := &zeo.Framework{
		Atoms: make([]zeo.Atom, N),
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			fw.Cell.Vectors[i][j] = dec.float()
		}
	}
	pbc := dec.varint()
	for i := 0; i < 3; i++ {
		fw.Cell.PBC[i] = pbc&(1<<i) != 0
	}

	for i := range fw.Atoms {
		atom := &fw.Atoms[i]
		atom.Index = i
		atom.Symbol = dec.str()
		atom.Species = zeo.Species(dec.varint())
		for k := 0; k < 3; k++ {
			atom.Pos[k] = dec.float()
		}
	}

	if dec.err != nil {
		return nil, errors.Wrap(zeo.ErrBadEncoding, dec.err.Error())
	}
	return fw, nil
}
