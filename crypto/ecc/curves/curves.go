package curves

import (
	"fmt"

	"github.com/anonvote/nullcore/crypto/ecc"
	"github.com/anonvote/nullcore/crypto/ecc/bjj"
)

const (
	// CurveTypeBabyJubJub is the default Baby Jubjub curve type.
	CurveTypeBabyJubJub = bjj.CurveType
)

// NewDefault creates a new point on the default curve, Baby Jubjub.
func NewDefault() ecc.Point {
	return bjj.New()
}

// New creates a new instance of a Point implementation based on the provided
// type string. The supported types are defined as constants in this package.
func New(curveType string) (ecc.Point, error) {
	switch curveType {
	case CurveTypeBabyJubJub:
		return bjj.New(), nil
	default:
		return nil, fmt.Errorf("unsupported curve type: %s", curveType)
	}
}
