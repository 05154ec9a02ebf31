/*
Package amm creates the configuration of a liquidity pool with its two
vaults. Swaps and deposits are not implemented.
*/
package amm

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/coin"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

// BucketName is where we store the pool configurations
const BucketName = "amm_configs"

var (
	configSeed = []byte("config")
	lpSeed     = []byte("lp")
)

// Config describes a pool of two assets. The pool vaults are the wallets of
// both assets held by the config address.
type Config struct {
	Seed uint64 `json:"seed"`
	// Authority and Locked are stored but not enforced by any operation.
	Authority  barter.Address `json:"authority,omitempty"`
	AssetX     barter.Address `json:"asset_x"`
	AssetY     barter.Address `json:"asset_y"`
	FeeBps     uint16         `json:"fee_bps"`
	Locked     bool           `json:"locked"`
	ConfigSalt uint8          `json:"config_salt"`
	LPSalt     uint8          `json:"lp_salt"`
}

var _ orm.Model = (*Config)(nil)

// Validate ensures the config is valid
func (c *Config) Validate() error {
	if len(c.Authority) != 0 {
		if err := c.Authority.Validate(); err != nil {
			return errors.Wrap(err, "authority")
		}
	}
	if err := c.AssetX.Validate(); err != nil {
		return errors.Wrap(err, "asset x")
	}
	if err := c.AssetY.Validate(); err != nil {
		return errors.Wrap(err, "asset y")
	}
	if c.AssetX.Equals(c.AssetY) {
		return errors.Wrap(errors.ErrModel, "pool assets must differ")
	}
	if c.FeeBps > coin.BasisPoints {
		return errors.Wrapf(errors.ErrModel, "fee rate %d basis points", c.FeeBps)
	}
	return nil
}

// LPAsset reconstructs the liquidity provider asset from the stored salt.
func (c *Config) LPAsset(ns barter.Namespace, configAddr barter.Address) (barter.Address, error) {
	return ns.CreateDerived(c.LPSalt, lpSeed, configAddr)
}

// ConfigAddress returns the address of the pool created with given seed.
func ConfigAddress(ns barter.Namespace, seed uint64) (barter.Address, uint8, error) {
	return ns.Derive(configSeed, barter.SeedUint64(seed))
}

// LPAsset returns the asset issued to liquidity providers of the pool.
func LPAsset(ns barter.Namespace, configAddr barter.Address) (barter.Address, uint8, error) {
	return ns.Derive(lpSeed, configAddr)
}

// NewBucket returns a bucket for managing pool configurations.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Config{})
}
