package cash

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
)

// ConfigurationName is the key of the cash configuration.
const ConfigurationName = "cash"

// Configuration of the ledger.
type Configuration struct {
	// Owner may update the configuration. Optional.
	Owner barter.Address `json:"owner"`
	// NativeAsset is used to pay rent and prices.
	NativeAsset barter.Address `json:"native_asset"`
	// AccountRent is the amount of the native asset locked by every
	// explicitly opened wallet.
	AccountRent uint64 `json:"account_rent"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// Validate implements gconf.Configuration.
func (c *Configuration) Validate() error {
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner address")
		}
	}
	if err := c.NativeAsset.Validate(); err != nil {
		return errors.Wrap(err, "native asset")
	}
	return nil
}

// GetOwner implements gconf.Configuration.
func (c *Configuration) GetOwner() barter.Address {
	return c.Owner
}

// LoadConfiguration returns the current ledger configuration.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, ConfigurationName, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
