package coin

import (
	"fmt"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// Coin is an amount of a single asset. An asset is identified by its
// address, usually derived from the mint that created it.
type Coin struct {
	Asset  barter.Address `json:"asset"`
	Amount uint64         `json:"amount"`
}

// NewCoin returns a coin of given asset.
func NewCoin(asset barter.Address, amount uint64) Coin {
	return Coin{Asset: asset, Amount: amount}
}

// Validate returns an error if the asset is not a valid address.
func (c Coin) Validate() error {
	if err := c.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	return nil
}

// IsZero returns true if the amount is zero.
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// SameType returns true if both coins are of the same asset.
func (c Coin) SameType(o Coin) bool {
	return c.Asset.Equals(o.Asset)
}

// Add returns the sum of both coins. Coins must be of the same asset.
func (c Coin) Add(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrInput, "adding %s to %s", o.Asset, c.Asset)
	}
	sum, err := Add64(c.Amount, o.Amount)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Asset: c.Asset, Amount: sum}, nil
}

// Subtract returns the difference of both coins. Coins must be of the same
// asset. Going below zero fails with ErrInsufficientAmount.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrInput, "subtracting %s from %s", o.Asset, c.Asset)
	}
	if c.Amount < o.Amount {
		return Coin{}, errors.Wrapf(errors.ErrInsufficientAmount, "%d < %d", c.Amount, o.Amount)
	}
	return Coin{Asset: c.Asset, Amount: c.Amount - o.Amount}, nil
}

func (c Coin) String() string {
	return fmt.Sprintf("%d %s", c.Amount, c.Asset)
}
