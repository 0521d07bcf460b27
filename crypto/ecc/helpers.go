package ecc

import "math/big"

// BigToFF reduces v into the field of the given order. It always returns a
// fresh big.Int and leaves v untouched.
func BigToFF(order, v *big.Int) *big.Int {
	return new(big.Int).Mod(v, order)
}
