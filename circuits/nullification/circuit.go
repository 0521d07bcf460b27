// Package nullification defines the zkSNARK circuit proving that a
// nullification ciphertext is well formed: it encrypts a boolean flag under
// the authority key, and when the flag is set the prover knows the secret
// behind the voter key the ciphertext is attributed to. A dummy submission
// (flag 0) satisfies the circuit without any key binding.
package nullification

import (
	"math/big"

	ecc_tweds "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	gelgamal "github.com/vocdoni/gnark-crypto-primitives/elgamal"

	"github.com/anonvote/nullcore/circuits"
	"github.com/anonvote/nullcore/crypto/ecc"
	"github.com/anonvote/nullcore/crypto/elgamal"
)

// Circuit is the constraint system for a single nullification submission.
// All points are in reduced twisted Edwards form.
type Circuit struct {
	// AuthorityKey is the tally authority encryption key.
	AuthorityKey twistededwards.Point `gnark:",public"`
	// VoterKey is the nullification public key the submission targets.
	VoterKey twistededwards.Point `gnark:",public"`
	// Ciphertext is the ElGamal encryption of the flag under AuthorityKey.
	Ciphertext gelgamal.Ciphertext `gnark:",public"`

	// Flag is the revocation flag, 0 or 1.
	Flag frontend.Variable `gnark:",secret"`
	// Randomness is the encryption randomness of the ciphertext.
	Randomness frontend.Variable `gnark:",secret"`
	// VoterSecret is the scalar behind VoterKey. Only bound when Flag is 1.
	VoterSecret frontend.Variable `gnark:",secret"`
}

// Define declares the circuit constraints:
//  1. Flag is boolean.
//  2. Encrypt(AuthorityKey, Randomness, Flag) equals Ciphertext.
//  3. Flag * ([VoterSecret]*G - VoterKey) == 0, so a revocation (Flag 1)
//     requires knowledge of the voter secret while a dummy does not.
func (c *Circuit) Define(api frontend.API) error {
	curve, err := twistededwards.NewEdCurve(api, ecc_tweds.BN254)
	if err != nil {
		return err
	}
	api.AssertIsBoolean(c.Flag)
	curve.AssertIsOnCurve(c.AuthorityKey)
	curve.AssertIsOnCurve(c.VoterKey)
	curve.AssertIsOnCurve(c.Ciphertext.C1)
	curve.AssertIsOnCurve(c.Ciphertext.C2)

	recomputed, err := new(gelgamal.Ciphertext).Encrypt(api, c.AuthorityKey, c.Randomness, c.Flag)
	if err != nil {
		return err
	}
	api.AssertIsEqual(recomputed.C1.X, c.Ciphertext.C1.X)
	api.AssertIsEqual(recomputed.C1.Y, c.Ciphertext.C1.Y)
	api.AssertIsEqual(recomputed.C2.X, c.Ciphertext.C2.X)
	api.AssertIsEqual(recomputed.C2.Y, c.Ciphertext.C2.Y)

	base := curve.Params().Base
	g := twistededwards.Point{X: base[0], Y: base[1]}
	pk := curve.ScalarMul(g, c.VoterSecret)
	api.AssertIsEqual(api.Mul(c.Flag, api.Sub(pk.X, c.VoterKey.X)), 0)
	api.AssertIsEqual(api.Mul(c.Flag, api.Sub(pk.Y, c.VoterKey.Y)), 0)
	return nil
}

func toGnarkPoint(p ecc.Point) twistededwards.Point {
	x, y := p.Point()
	return twistededwards.Point{X: x, Y: y}
}

// Assignment builds the full witness for the circuit from native values.
// For a dummy submission flag is false and secret can be zero.
func Assignment(authorityKey, voterKey ecc.Point, ct *elgamal.Ciphertext,
	flag bool, k, secret *big.Int,
) *Circuit {
	if secret == nil {
		secret = big.NewInt(0)
	}
	return &Circuit{
		AuthorityKey: toGnarkPoint(authorityKey),
		VoterKey:     toGnarkPoint(voterKey),
		Ciphertext:   *ct.ToGnark(),
		Flag:         circuits.BoolToBigInt(flag),
		Randomness:   k,
		VoterSecret:  secret,
	}
}

// PublicAssignment builds the public part of the witness, as used for
// verification. The secret fields are left at zero, they are ignored when
// the witness is built with frontend.PublicOnly().
func PublicAssignment(authorityKey, voterKey ecc.Point, ct *elgamal.Ciphertext) *Circuit {
	return &Circuit{
		AuthorityKey: toGnarkPoint(authorityKey),
		VoterKey:     toGnarkPoint(voterKey),
		Ciphertext:   *ct.ToGnark(),
		Flag:         big.NewInt(0),
		Randomness:   big.NewInt(0),
		VoterSecret:  big.NewInt(0),
	}
}
