// Package dlog recovers small discrete logarithms on the curve used for
// homomorphic counting. Decrypted accumulators are points of the form
// count*G where count is bounded by the number of submissions per voter, so
// a linear precomputed table is enough.
package dlog

import (
	"errors"
	"math/big"

	"github.com/anonvote/nullcore/crypto/ecc"
)

// ErrNotFound is returned by Lookup when the point is not count*G for any
// count within the table bound. A decrypted accumulator outside the bound
// means the ciphertext aggregate was malformed or the bound is too small.
var ErrNotFound = errors.New("discrete log not found within table bound")

// Table maps points k*G to their scalar k for all k in [0, max].
type Table struct {
	entries map[string]uint64
	max     uint64
}

// NewTable precomputes the lookup table for scalars in [0, max] by repeated
// addition of the generator, starting at the identity.
func NewTable(curve ecc.Point, max uint64) *Table {
	g := curve.New()
	g.SetGenerator()

	acc := curve.New() // identity, 0*G
	entries := make(map[string]uint64, max+1)
	for k := uint64(0); ; k++ {
		entries[acc.String()] = k
		if k == max {
			break
		}
		acc.Add(acc, g)
	}
	return &Table{entries: entries, max: max}
}

// Max returns the largest scalar the table can resolve.
func (t *Table) Max() uint64 {
	return t.max
}

// Lookup returns k such that p == k*G, or ErrNotFound if k exceeds the
// table bound.
func (t *Table) Lookup(p ecc.Point) (uint64, error) {
	k, ok := t.entries[p.String()]
	if !ok {
		return 0, ErrNotFound
	}
	return k, nil
}

// LookupScalar is like Lookup but returns the scalar as a big.Int, matching
// the signature callers use when re-encoding the count.
func (t *Table) LookupScalar(p ecc.Point) (*big.Int, error) {
	k, err := t.Lookup(p)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(k), nil
}
