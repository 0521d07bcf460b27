package dlog

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/anonvote/nullcore/crypto/ecc/curves"
)

func TestTableLookup(t *testing.T) {
	c := qt.New(t)
	curve := curves.NewDefault()
	table := NewTable(curve, 100)
	c.Assert(table.Max(), qt.Equals, uint64(100))

	for k := uint64(0); k <= 100; k++ {
		p := curve.New()
		p.ScalarBaseMult(new(big.Int).SetUint64(k))
		got, err := table.Lookup(p)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, k)
	}
}

func TestTableLookupScalar(t *testing.T) {
	c := qt.New(t)
	curve := curves.NewDefault()
	table := NewTable(curve, 10)

	p := curve.New()
	p.ScalarBaseMult(big.NewInt(7))
	got, err := table.LookupScalar(p)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Cmp(big.NewInt(7)), qt.Equals, 0)
}

func TestTableLookupOutOfBound(t *testing.T) {
	c := qt.New(t)
	curve := curves.NewDefault()
	table := NewTable(curve, 10)

	p := curve.New()
	p.ScalarBaseMult(big.NewInt(11))
	_, err := table.Lookup(p)
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestTableZeroIsIdentity(t *testing.T) {
	c := qt.New(t)
	curve := curves.NewDefault()
	table := NewTable(curve, 1)

	got, err := table.Lookup(curve.New())
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, uint64(0))
}
