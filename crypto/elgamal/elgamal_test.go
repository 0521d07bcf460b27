package elgamal

import (
	"encoding/json"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/anonvote/nullcore/crypto/ecc/curves"
	"github.com/anonvote/nullcore/crypto/voterkey"
)

func TestEncryptDecryptPoint(t *testing.T) {
	c := qt.New(t)
	curve := curves.NewDefault()

	pub, priv, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	msg := big.NewInt(1)
	c1, c2, k, err := Encrypt(pub, msg)
	c.Assert(err, qt.IsNil)
	c.Assert(CheckK(c1, k), qt.IsTrue)

	m := DecryptPoint(priv, c1, c2)
	expected := curve.New()
	expected.ScalarBaseMult(msg)
	c.Assert(m.Equal(expected), qt.IsTrue)
}

func TestDecryptPointZeroMessage(t *testing.T) {
	c := qt.New(t)
	curve := curves.NewDefault()

	pub, priv, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	c1, c2, _, err := Encrypt(pub, big.NewInt(0))
	c.Assert(err, qt.IsNil)

	m := DecryptPoint(priv, c1, c2)
	identity := curve.New()
	c.Assert(m.Equal(identity), qt.IsTrue)
}

func TestHomomorphicAddition(t *testing.T) {
	c := qt.New(t)
	curve := curves.NewDefault()

	pub, priv, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	// encrypt 1, 0 and 1 under the same key and combine the ciphertexts
	sum := NewCiphertext(curve)
	total := int64(0)
	for _, flag := range []int64{1, 0, 1} {
		ct, err := NewCiphertext(curve).Encrypt(big.NewInt(flag), pub, nil)
		c.Assert(err, qt.IsNil)
		sum.Add(sum, ct)
		total += flag
	}

	m := DecryptPoint(priv, sum.C1, sum.C2)
	expected := curve.New()
	expected.ScalarBaseMult(big.NewInt(total))
	c.Assert(m.Equal(expected), qt.IsTrue)
}

func TestDeterministicK(t *testing.T) {
	c := qt.New(t)

	secret := make([]byte, voterkey.SecretLength)
	secret[31] = 7
	kp, err := voterkey.Derive(secret)
	c.Assert(err, qt.IsNil)

	k1, err := DeterministicK(kp.Secret, kp.Public)
	c.Assert(err, qt.IsNil)
	k2, err := DeterministicK(kp.Secret, kp.Public)
	c.Assert(err, qt.IsNil)
	c.Assert(k1.Cmp(k2), qt.Equals, 0)
	c.Assert(k1.Cmp(kp.Public.Order()), qt.Equals, -1)

	// a different keypair yields a different k
	secret[31] = 8
	kp2, err := voterkey.Derive(secret)
	c.Assert(err, qt.IsNil)
	k3, err := DeterministicK(kp2.Secret, kp2.Public)
	c.Assert(err, qt.IsNil)
	c.Assert(k1.Cmp(k3), qt.Not(qt.Equals), 0)
}

func TestCiphertextSerializeRoundTrip(t *testing.T) {
	c := qt.New(t)
	curve := curves.NewDefault()

	pub, _, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)
	ct, err := NewCiphertext(curve).Encrypt(big.NewInt(1), pub, nil)
	c.Assert(err, qt.IsNil)

	data := ct.Serialize()
	c.Assert(len(data), qt.Equals, SizeCiphertext)

	back := NewCiphertext(curve)
	c.Assert(back.Deserialize(data), qt.IsNil)
	c.Assert(back.C1.Equal(ct.C1), qt.IsTrue)
	c.Assert(back.C2.Equal(ct.C2), qt.IsTrue)
}

func TestCiphertextJSONRoundTrip(t *testing.T) {
	c := qt.New(t)
	curve := curves.NewDefault()

	pub, _, err := GenerateKey(curve)
	c.Assert(err, qt.IsNil)
	ct, err := NewCiphertext(curve).Encrypt(big.NewInt(1), pub, nil)
	c.Assert(err, qt.IsNil)

	data, err := json.Marshal(ct)
	c.Assert(err, qt.IsNil)

	back := &Ciphertext{}
	c.Assert(json.Unmarshal(data, back), qt.IsNil)
	c.Assert(back.C1.Equal(ct.C1), qt.IsTrue)
	c.Assert(back.C2.Equal(ct.C2), qt.IsTrue)
}

func TestCiphertextRejectsOffCurve(t *testing.T) {
	c := qt.New(t)
	back := &Ciphertext{}
	// (1, 1) does not satisfy the curve equation
	err := json.Unmarshal([]byte(`["1","1","1","1"]`), back)
	c.Assert(err, qt.IsNotNil)
}
