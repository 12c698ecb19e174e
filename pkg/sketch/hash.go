package sketch

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// HashValues folds scalars through xxhash in order. The fold is
// order-sensitive and depends only on the values, never on identity.
func HashValues(vs ...float64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range vs {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		d.Write(buf[:])
	}
	return d.Sum64()
}

// HashDoFs folds all DoF values of e in index order.
func HashDoFs(e Entity) uint64 {
	vs := make([]float64, e.NDoF())
	for i := range vs {
		vs[i] = e.DoF(i)
	}
	return HashValues(vs...)
}

// combineHashes folds a sequence of hashes into one.
func combineHashes(hs ...uint64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, h := range hs {
		binary.LittleEndian.PutUint64(buf[:], h)
		d.Write(buf[:])
	}
	return d.Sum64()
}
