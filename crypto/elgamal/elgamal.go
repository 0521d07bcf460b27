package elgamal

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/vocdoni/arbo"

	"github.com/anonvote/nullcore/crypto/ecc"
	"github.com/anonvote/nullcore/crypto/hash/poseidon"
)

// RandK function generates a random k value for encryption.
func RandK() (*big.Int, error) {
	kBytes := make([]byte, 20)
	_, err := rand.Read(kBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random k: %v", err)
	}
	k := new(big.Int).SetBytes(kBytes)
	return arbo.BigToFF(arbo.BN254BaseField, k), nil
}

// DeterministicK derives the encryption randomness for a nullification
// ciphertext from the voter keypair itself, as poseidon(secret, pk.x, pk.y)
// reduced to the subgroup order. The same keypair always yields the same k,
// so it never needs to be stored and can be recomputed whenever the voter
// generates a proof. Since k is a pure function of the long-term key, all
// submissions by the same voter share it and are linkable to each other.
func DeterministicK(secret *big.Int, publicKey ecc.Point) (*big.Int, error) {
	x, y := publicKey.Point()
	h, err := poseidon.MultiPoseidon(secret, x, y)
	if err != nil {
		return nil, fmt.Errorf("failed to derive deterministic k: %w", err)
	}
	return ecc.BigToFF(publicKey.Order(), h), nil
}

// Encrypt function encrypts a message using the public key provided as
// elliptic curve point. It generates a random k and returns the two points
// that represent the encrypted message and the random k used to encrypt it.
// It returns an error if any.
func Encrypt(publicKey ecc.Point, msg *big.Int) (ecc.Point, ecc.Point, *big.Int, error) {
	k, err := RandK()
	if err != nil {
		return nil, nil, nil, err
	}
	// encrypt the message using the random k generated
	c1, c2, err := EncryptWithK(publicKey, msg, k)
	if err != nil {
		return nil, nil, nil, err
	}
	return c1, c2, k, nil
}

// EncryptWithK function encrypts a message using the public key provided as
// elliptic curve point and the k value provided. It returns the two points
// that represent the encrypted message and error if any.
func EncryptWithK(pubKey ecc.Point, msg, k *big.Int) (ecc.Point, ecc.Point, error) {
	order := pubKey.Order()
	// ensure the message is within the field
	m := new(big.Int).Mod(msg, order)
	// compute C1 = k * G
	c1 := pubKey.New()
	c1.ScalarBaseMult(k)
	// compute s = k * pubKey
	s := pubKey.New()
	s.ScalarMult(pubKey, k)
	// encode message as point M = message * G
	mPoint := pubKey.New()
	mPoint.ScalarBaseMult(m)
	// compute C2 = M + s
	c2 := pubKey.New()
	c2.Add(mPoint, s)
	return c1, c2, nil
}

// GenerateKey generates a new public/private ElGamal encryption key pair.
// It is used for the tally authority key; voter keys are derived with the
// voterkey package instead.
func GenerateKey(curve ecc.Point) (publicKey ecc.Point, privateKey *big.Int, err error) {
	order := curve.Order()
	d, err := rand.Int(rand.Reader, order)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key scalar: %v", err)
	}
	if d.Sign() == 0 {
		d = big.NewInt(1) // avoid zero private keys
	}
	publicKey = curve.New()
	publicKey.SetGenerator()
	publicKey.ScalarMult(publicKey, d)
	return publicKey, d, nil
}

// DecryptPoint computes M = c2 - d*c1 for the ciphertext (c1, c2) under the
// private key d. The result equals sum*G where sum is the aggregate of the
// encrypted messages; the integer sum is recovered separately with a
// dlog.Table, since only small bounded counts are ever encrypted.
func DecryptPoint(privateKey *big.Int, c1, c2 ecc.Point) ecc.Point {
	dC1 := c1.New()
	dC1.ScalarMult(c1, privateKey)
	dC1.Neg(dC1) // dC1 = -d*c1

	m := c2.New()
	m.Set(c2)
	m.Add(m, dC1) // M = c2 - d*c1
	return m
}

// CheckK checks if a given k was used to produce the ciphertext component c1.
// It returns true if c1 == k * G, false otherwise.
// This does not require decrypting the message or computing the discrete log.
func CheckK(c1 ecc.Point, k *big.Int) bool {
	// Compute KCheck = k * G
	KCheck := c1.New()
	KCheck.ScalarBaseMult(k)

	// Compare KCheck with c1
	return KCheck.Equal(c1)
}
