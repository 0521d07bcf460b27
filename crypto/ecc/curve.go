package ecc

import (
	"errors"
	"math/big"

	"github.com/anonvote/nullcore/types"
)

// ErrPointNotOnCurve is returned when a point parsed from external bytes or
// coordinates does not satisfy the curve equation. Such a point must be
// rejected before any arithmetic touches it.
var ErrPointNotOnCurve = errors.New("point is not on the curve")

// PointEC is the JSON representation of a curve point, with the affine
// coordinates as decimal strings.
type PointEC struct {
	X types.BigInt `json:"x"`
	Y types.BigInt `json:"y"`
}

// Point defines the common operations that can be performed on elliptic curve
// group elements. It represents the affine coordinates of a point on an
// elliptic curve and provides methods for arithmetic operations,
// serialization, and comparison.
type Point interface {
	// New returns a new elliptic curve point of the same curve.
	New() Point

	// Order returns the order of the elliptic curve subgroup.
	Order() *big.Int

	// Add adds two elliptic curve group elements and stores the result in
	// the receiver.
	Add(a, b Point)

	// SafeAdd adds two elliptic curve group elements and stores the result
	// in the receiver. It is thread-safe, ensuring exclusive access to the
	// receiver during the operation.
	SafeAdd(a, b Point)

	// ScalarMult multiplies the group element a by the scalar value and
	// stores the result in the receiver. The scalar may be a secret key, so
	// the implementation must not branch on its bit values.
	ScalarMult(a Point, scalar *big.Int)

	// ScalarBaseMult multiplies the generator point by a scalar value and
	// stores the result in the receiver.
	ScalarBaseMult(scalar *big.Int)

	// Neg negates an elliptic curve element, effectively computing its
	// inverse, and stores it in the receiver.
	Neg(a Point)

	// IsOnCurve reports whether the point satisfies the curve equation.
	IsOnCurve() bool

	// Marshal serializes the elliptic curve element into a byte slice.
	Marshal() []byte

	// Unmarshal deserializes a byte slice into an elliptic curve element.
	// The input must represent a valid point on the curve, or
	// ErrPointNotOnCurve is returned.
	Unmarshal(buf []byte) error

	// Equal checks if two elliptic curve elements are equal.
	Equal(a Point) bool

	// SetZero sets the elliptic curve element to the identity element of
	// the group.
	SetZero()

	// Set sets the value of the receiver to be equal to another elliptic
	// curve element.
	Set(a Point)

	// SetGenerator sets the elliptic curve element to the generator point.
	SetGenerator()

	// String returns a human readable representation of the element.
	String() string

	// Point returns the X and Y affine coordinates of the element.
	Point() (*big.Int, *big.Int)

	// SetPoint sets the X and Y affine coordinates of the element. The
	// coordinates are not validated; use IsOnCurve on any point built from
	// untrusted input.
	SetPoint(x, y *big.Int) Point

	// Type returns the identifier of the curve implementation.
	Type() string
}
