package elgamal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/arbo"
	gelgamal "github.com/vocdoni/gnark-crypto-primitives/elgamal"

	"github.com/anonvote/nullcore/crypto/ecc"
	"github.com/anonvote/nullcore/crypto/ecc/curves"
	"github.com/anonvote/nullcore/types"
)

// sizes in bytes needed to serialize a Ciphertext
const (
	sizeCoord      = 32
	sizePoint      = 2 * sizeCoord
	SizeCiphertext = 2 * sizePoint
)

// Ciphertext represents an ElGamal encrypted message with homomorphic
// properties. It is a wrapper for convenience of the elGamal ciphersystem
// that encapsulates the two points of a ciphertext.
type Ciphertext struct {
	C1 ecc.Point
	C2 ecc.Point
}

// NewCiphertext creates a new Ciphertext on the same curve as the given
// Point. The Point must be on one of the curves supported by the
// crypto/ecc/curves package, and can be created with curves.New(type).
func NewCiphertext(curve ecc.Point) *Ciphertext {
	return &Ciphertext{C1: curve.New(), C2: curve.New()}
}

// Encrypt encrypts a message using the public key provided as elliptic curve
// point. The randomness k can be provided or nil to generate a new one.
func (z *Ciphertext) Encrypt(message *big.Int, publicKey ecc.Point, k *big.Int) (*Ciphertext, error) {
	var err error
	if k == nil {
		k, err = RandK()
		if err != nil {
			return nil, fmt.Errorf("elgamal encryption failed: %w", err)
		}
	}
	c1, c2, err := EncryptWithK(publicKey, message, k)
	if err != nil {
		return nil, fmt.Errorf("elgamal encryption failed: %w", err)
	}
	z.C1 = c1
	z.C2 = c2
	return z, nil
}

// Add adds two Ciphertext and stores the result in z, which is also returned.
func (z *Ciphertext) Add(x, y *Ciphertext) *Ciphertext {
	z.C1.SafeAdd(x.C1, y.C1)
	z.C2.SafeAdd(x.C2, y.C2)
	return z
}

// Serialize returns a slice of len 4*32 bytes,
// representing the C1.X, C1.Y, C2.X, C2.Y as little-endian,
// in reduced twisted edwards form.
func (z *Ciphertext) Serialize() []byte {
	var buf bytes.Buffer
	c1x, c1y := z.C1.Point()
	c2x, c2y := z.C2.Point()
	for _, bi := range []*big.Int{c1x, c1y, c2x, c2y} {
		buf.Write(arbo.BigIntToBytes(sizeCoord, bi))
	}
	return buf.Bytes()
}

// Deserialize reconstructs a Ciphertext from a slice of bytes.
// The input must be of len 4*32 bytes (otherwise it returns an error),
// representing the C1.X, C1.Y, C2.X, C2.Y as little-endian,
// in reduced twisted edwards form. Both points are validated to be on the
// curve.
func (z *Ciphertext) Deserialize(data []byte) error {
	if len(data) != SizeCiphertext {
		return fmt.Errorf("invalid input length: got %d bytes, expected %d bytes", len(data), SizeCiphertext)
	}

	readBigInt := func(offset int) *big.Int {
		return arbo.BytesToBigInt(data[offset : offset+sizeCoord])
	}
	if z.C1 == nil || z.C2 == nil {
		curve := curves.NewDefault()
		z.C1, z.C2 = curve.New(), curve.New()
	}
	z.C1 = z.C1.SetPoint(readBigInt(0*sizeCoord), readBigInt(1*sizeCoord))
	z.C2 = z.C2.SetPoint(readBigInt(2*sizeCoord), readBigInt(3*sizeCoord))
	if !z.C1.IsOnCurve() || !z.C2.IsOnCurve() {
		return ecc.ErrPointNotOnCurve
	}
	return nil
}

// coords flattens the ciphertext to [c1.x, c1.y, c2.x, c2.y], the canonical
// form used for both JSON and CBOR.
func (z *Ciphertext) coords() [4]*types.BigInt {
	c1x, c1y := z.C1.Point()
	c2x, c2y := z.C2.Point()
	return [4]*types.BigInt{
		(*types.BigInt)(c1x),
		(*types.BigInt)(c1y),
		(*types.BigInt)(c2x),
		(*types.BigInt)(c2y),
	}
}

func (z *Ciphertext) setCoords(coords [4]*types.BigInt) error {
	for _, c := range coords {
		if c == nil {
			return fmt.Errorf("ciphertext coordinate missing")
		}
	}
	curve := curves.NewDefault()
	z.C1 = curve.SetPoint(coords[0].MathBigInt(), coords[1].MathBigInt())
	z.C2 = curve.SetPoint(coords[2].MathBigInt(), coords[3].MathBigInt())
	if !z.C1.IsOnCurve() || !z.C2.IsOnCurve() {
		return ecc.ErrPointNotOnCurve
	}
	return nil
}

// MarshalJSON encodes the ciphertext as [c1.x, c1.y, c2.x, c2.y] with the
// coordinates as decimal strings.
func (z *Ciphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(z.coords())
}

// UnmarshalJSON decodes the ciphertext from [c1.x, c1.y, c2.x, c2.y],
// rejecting coordinates that are not points on the curve.
func (z *Ciphertext) UnmarshalJSON(data []byte) error {
	var coords [4]*types.BigInt
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	return z.setCoords(coords)
}

// MarshalCBOR encodes the ciphertext as [c1.x, c1.y, c2.x, c2.y] with the
// coordinates as decimal strings.
func (z *Ciphertext) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(z.coords())
}

// UnmarshalCBOR decodes the ciphertext from [c1.x, c1.y, c2.x, c2.y],
// rejecting coordinates that are not points on the curve.
func (z *Ciphertext) UnmarshalCBOR(data []byte) error {
	var coords [4]*types.BigInt
	if err := cbor.Unmarshal(data, &coords); err != nil {
		return err
	}
	return z.setCoords(coords)
}

// String returns a string representation of the Ciphertext.
func (z *Ciphertext) String() string {
	if z == nil || z.C1 == nil || z.C2 == nil {
		return "{C1: nil, C2: nil}"
	}
	return fmt.Sprintf("{C1: %s, C2: %s}", z.C1.String(), z.C2.String())
}

// ToGnark returns z as the struct used by gnark,
// with the points in reduced twisted edwards format.
func (z *Ciphertext) ToGnark() *gelgamal.Ciphertext {
	c1x, c1y := z.C1.Point()
	c2x, c2y := z.C2.Point()
	return &gelgamal.Ciphertext{
		C1: twistededwards.Point{X: c1x, Y: c1y},
		C2: twistededwards.Point{X: c2x, Y: c2y},
	}
}
