package storage

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Records are stored CBOR-encoded with deterministic options so that
// content-hashed keys stay stable across encodes.
var encMode, encModeErr = cbor.CoreDetEncOptions().EncMode()

func encodeRecord(v any) ([]byte, error) {
	if encModeErr != nil {
		return nil, fmt.Errorf("cbor encoder: %w", encModeErr)
	}
	return encMode.Marshal(v)
}

func decodeRecord(data []byte, out any) error {
	if err := cbor.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// hashKey derives a fixed-size storage key from the record content.
func hashKey(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:maxKeySize]
}
