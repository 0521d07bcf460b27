// Package poseidon hashes arbitrary-length input vectors with the iden3
// Poseidon permutation, folding fixed-size chunks so callers are not limited
// by the permutation width.
package poseidon

import (
	"errors"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// chunkSize is the widest input vector the underlying permutation accepts.
const chunkSize = 16

// maxInputs caps the input vector at one folding level.
const maxInputs = chunkSize * chunkSize

var (
	// ErrNoInputs is returned when the input vector is empty.
	ErrNoInputs = errors.New("poseidon: no inputs provided")
	// ErrTooManyInputs is returned when the input vector exceeds maxInputs.
	ErrTooManyInputs = errors.New("poseidon: too many inputs")
)

// MultiPoseidon hashes the inputs in chunks of up to 16 field elements and,
// when more than one chunk is needed, hashes the chunk digests once more.
func MultiPoseidon(inputs ...*big.Int) (*big.Int, error) {
	switch {
	case len(inputs) == 0:
		return nil, ErrNoInputs
	case len(inputs) > maxInputs:
		return nil, ErrTooManyInputs
	}
	digests := make([]*big.Int, 0, (len(inputs)+chunkSize-1)/chunkSize)
	for start := 0; start < len(inputs); start += chunkSize {
		end := min(start+chunkSize, len(inputs))
		h, err := poseidon.Hash(inputs[start:end])
		if err != nil {
			return nil, err
		}
		digests = append(digests, h)
	}
	if len(digests) == 1 {
		return digests[0], nil
	}
	return poseidon.Hash(digests)
}
