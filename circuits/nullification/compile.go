package nullification

import (
	gecc "github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// Compile compiles the nullification circuit to an R1CS constraint system
// over the BN254 scalar field.
func Compile() (constraint.ConstraintSystem, error) {
	return frontend.Compile(gecc.BN254.ScalarField(), r1cs.NewBuilder, &Circuit{})
}
