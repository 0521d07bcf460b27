package voterkey

import (
	"bytes"
	"crypto/sha256"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/anonvote/nullcore/crypto/ecc/bjj"
)

func TestDeriveDeterminism(t *testing.T) {
	c := qt.New(t)
	secret := sha256.Sum256([]byte("credential"))

	kp1, err := Derive(secret[:])
	c.Assert(err, qt.IsNil)
	kp2, err := Derive(secret[:])
	c.Assert(err, qt.IsNil)

	c.Assert(kp1.Secret.Cmp(kp2.Secret), qt.Equals, 0)
	c.Assert(kp1.Public.Equal(kp2.Public), qt.IsTrue)
	c.Assert(bytes.Equal(kp1.Public.Marshal(), kp2.Public.Marshal()), qt.IsTrue)
}

func TestDerivePublicMatchesSecret(t *testing.T) {
	c := qt.New(t)
	secret := sha256.Sum256([]byte("another credential"))

	kp, err := Derive(secret[:])
	c.Assert(err, qt.IsNil)

	expected := bjj.New()
	expected.ScalarBaseMult(kp.Secret)
	c.Assert(kp.Public.Equal(expected), qt.IsTrue)
	c.Assert(kp.Public.IsOnCurve(), qt.IsTrue)
}

func TestDeriveInvalidLength(t *testing.T) {
	c := qt.New(t)
	_, err := Derive([]byte("short"))
	c.Assert(err, qt.Equals, ErrInvalidSecretLength)

	_, err = Derive(make([]byte, 33))
	c.Assert(err, qt.Equals, ErrInvalidSecretLength)
}

func TestDeriveZeroSecret(t *testing.T) {
	c := qt.New(t)
	kp, err := Derive(make([]byte, SecretLength))
	c.Assert(err, qt.IsNil)
	// a zero scalar would produce the identity key; it must be remapped
	c.Assert(kp.Secret.Int64(), qt.Equals, int64(1))

	identity := bjj.New()
	c.Assert(kp.Public.Equal(identity), qt.IsFalse)
}
