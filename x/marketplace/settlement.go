package marketplace

import (
	"github.com/iov-one/barter/coin"
	"github.com/iov-one/barter/errors"
)

// Split divides the price into the fee, rounded down, and the proceeds of
// the seller. fee + proceeds always equals price. A fee rate above
// coin.BasisPoints yields a fee larger than the price and fails with
// ErrUnderflow.
func Split(price uint64, feeBps uint16) (fee, proceeds uint64, err error) {
	product, err := coin.Mul64(price, uint64(feeBps))
	if err != nil {
		return 0, 0, errors.Wrap(err, "fee")
	}
	fee = product / coin.BasisPoints
	proceeds, err = coin.Sub64(price, fee)
	if err != nil {
		return 0, 0, errors.Wrap(err, "proceeds")
	}
	return fee, proceeds, nil
}
