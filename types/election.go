package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Election lifecycle statuses. Tally execution is gated on these: it is only
// permitted from StatusClosed or StatusExpired, StatusTallyInProgress marks a
// run in flight, and StatusTallied is terminal.
const (
	StatusActive uint8 = iota
	StatusClosed       // closed manually before its end time
	StatusExpired      // reached its end time
	StatusTallyInProgress
	StatusTallied
)

// StatusName returns a human readable name for an election status.
func StatusName(s uint8) string {
	switch s {
	case StatusActive:
		return "active"
	case StatusClosed:
		return "closed"
	case StatusExpired:
		return "expired"
	case StatusTallyInProgress:
		return "tallyInProgress"
	case StatusTallied:
		return "tallied"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// ElectionID is the type to identify an election. It is composed of:
// - ChainID (4 bytes)
// - Address of the organizer (20 bytes)
// - Nonce (8 bytes)
type ElectionID struct {
	Address common.Address
	Nonce   uint64
	ChainID uint32
}

// Marshal encodes ElectionID to its 32 byte representation.
func (e *ElectionID) Marshal() []byte {
	chainID := make([]byte, 4)
	binary.BigEndian.PutUint32(chainID, e.ChainID)

	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, e.Nonce)

	var id bytes.Buffer
	id.Write(chainID[:4])
	id.Write(e.Address.Bytes()[:20])
	id.Write(nonce[:8])
	return id.Bytes()
}

// Unmarshal decodes bytes to ElectionID.
func (e *ElectionID) Unmarshal(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("invalid ElectionID length: %d", len(data))
	}
	e.ChainID = binary.BigEndian.Uint32(data[:4])
	e.Address = common.BytesToAddress(data[4:24])
	e.Nonce = binary.BigEndian.Uint64(data[24:32])
	return nil
}

// MarshalBinary implements the BinaryMarshaler interface.
func (e *ElectionID) MarshalBinary() (data []byte, err error) {
	return e.Marshal(), nil
}

// UnmarshalBinary implements the BinaryUnmarshaler interface.
func (e *ElectionID) UnmarshalBinary(data []byte) error {
	return e.Unmarshal(data)
}

// String returns a human readable representation of the election ID.
func (e *ElectionID) String() string {
	return hex.EncodeToString(e.Marshal())
}
