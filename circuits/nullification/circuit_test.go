package nullification

import (
	"crypto/sha256"
	"math/big"
	"testing"

	gecc "github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"

	"github.com/anonvote/nullcore/crypto/ecc"
	"github.com/anonvote/nullcore/crypto/ecc/curves"
	"github.com/anonvote/nullcore/crypto/elgamal"
	"github.com/anonvote/nullcore/crypto/voterkey"
)

func testKeys(t *testing.T) (ecc.Point, *voterkey.Keypair) {
	t.Helper()
	c := qt.New(t)
	authKey, _, err := elgamal.GenerateKey(curves.NewDefault())
	c.Assert(err, qt.IsNil)
	secret := sha256.Sum256([]byte("voter secret"))
	kp, err := voterkey.Derive(secret[:])
	c.Assert(err, qt.IsNil)
	return authKey, kp
}

func TestCircuitRevocation(t *testing.T) {
	c := qt.New(t)
	authKey, kp := testKeys(t)

	k, err := elgamal.DeterministicK(kp.Secret, kp.Public)
	c.Assert(err, qt.IsNil)
	ct, err := elgamal.NewCiphertext(curves.NewDefault()).Encrypt(big.NewInt(1), authKey, k)
	c.Assert(err, qt.IsNil)

	assignment := Assignment(authKey, kp.Public, ct, true, k, kp.Secret)
	err = test.IsSolved(&Circuit{}, assignment, gecc.BN254.ScalarField())
	c.Assert(err, qt.IsNil)
}

func TestCircuitDummy(t *testing.T) {
	c := qt.New(t)
	authKey, kp := testKeys(t)

	k, err := elgamal.RandK()
	c.Assert(err, qt.IsNil)
	ct, err := elgamal.NewCiphertext(curves.NewDefault()).Encrypt(big.NewInt(0), authKey, k)
	c.Assert(err, qt.IsNil)

	// a dummy needs no voter secret at all
	assignment := Assignment(authKey, kp.Public, ct, false, k, nil)
	err = test.IsSolved(&Circuit{}, assignment, gecc.BN254.ScalarField())
	c.Assert(err, qt.IsNil)
}

func TestCircuitRejectsWrongSecret(t *testing.T) {
	c := qt.New(t)
	authKey, kp := testKeys(t)

	k, err := elgamal.DeterministicK(kp.Secret, kp.Public)
	c.Assert(err, qt.IsNil)
	ct, err := elgamal.NewCiphertext(curves.NewDefault()).Encrypt(big.NewInt(1), authKey, k)
	c.Assert(err, qt.IsNil)

	// a revocation with a secret that does not match the voter key must fail
	wrongSecret := new(big.Int).Add(kp.Secret, big.NewInt(1))
	assignment := Assignment(authKey, kp.Public, ct, true, k, wrongSecret)
	err = test.IsSolved(&Circuit{}, assignment, gecc.BN254.ScalarField())
	c.Assert(err, qt.IsNotNil)
}

func TestCircuitRejectsNonBooleanFlag(t *testing.T) {
	c := qt.New(t)
	authKey, kp := testKeys(t)

	k, err := elgamal.RandK()
	c.Assert(err, qt.IsNil)
	ct, err := elgamal.NewCiphertext(curves.NewDefault()).Encrypt(big.NewInt(2), authKey, k)
	c.Assert(err, qt.IsNil)

	assignment := Assignment(authKey, kp.Public, ct, false, k, kp.Secret)
	assignment.Flag = big.NewInt(2)
	err = test.IsSolved(&Circuit{}, assignment, gecc.BN254.ScalarField())
	c.Assert(err, qt.IsNotNil)
}

func TestCircuitRejectsMismatchedCiphertext(t *testing.T) {
	c := qt.New(t)
	authKey, kp := testKeys(t)

	k, err := elgamal.DeterministicK(kp.Secret, kp.Public)
	c.Assert(err, qt.IsNil)
	// encrypt with a different randomness than the witness claims
	otherK, err := elgamal.RandK()
	c.Assert(err, qt.IsNil)
	ct, err := elgamal.NewCiphertext(curves.NewDefault()).Encrypt(big.NewInt(1), authKey, otherK)
	c.Assert(err, qt.IsNil)

	assignment := Assignment(authKey, kp.Public, ct, true, k, kp.Secret)
	err = test.IsSolved(&Circuit{}, assignment, gecc.BN254.ScalarField())
	c.Assert(err, qt.IsNotNil)
}
