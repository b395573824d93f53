package rsakey

import (
	"math/big"

	"github.com/cronokirby/saferith"
)

// expMod computes base^exp mod n.
//
// Odd moduli go through saferith's constant-time exponentiation. Even
// moduli, n == 1 and a zero exponent use math/big. Both paths return the
// same value.
func expMod(base, exp, n *big.Int) (*big.Int, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	if exp == nil || exp.Sign() < 0 {
		return nil, ErrInvalidExponent
	}
	if base == nil {
		base = new(big.Int)
	}

	reduced := new(big.Int).Mod(base, n)

	if n.Bit(0) == 0 || n.Cmp(one) == 0 || exp.Sign() == 0 {
		return new(big.Int).Exp(reduced, exp, n), nil
	}

	mod := saferith.ModulusFromNat(new(saferith.Nat).SetBig(n, n.BitLen()))
	x := new(saferith.Nat).SetBig(reduced, n.BitLen())
	y := new(saferith.Nat).SetBig(exp, exp.BitLen())
	return new(saferith.Nat).Exp(x, y, mod).Big(), nil
}
