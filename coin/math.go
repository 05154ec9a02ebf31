package coin

import (
	"math/bits"

	"github.com/iov-one/barter/errors"
)

// BasisPoints is the denominator of all fee rates, 10000 bps = 100%.
const BasisPoints = 10000

// Add64 returns a+b or ErrOverflow.
func Add64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return sum, nil
}

// Sub64 returns a-b or ErrUnderflow.
func Sub64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, errors.Wrapf(errors.ErrUnderflow, "%d - %d", a, b)
	}
	return diff, nil
}

// Mul64 returns a*b or ErrOverflow.
func Mul64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d * %d", a, b)
	}
	return lo, nil
}
