package amm

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/coin"
	"github.com/iov-one/barter/errors"
	amino "github.com/tendermint/go-amino"
)

const pathInitializeMsg = "amm/initialize"

// RegisterCodec registers all messages of this extension.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&InitializeMsg{}, "amm/InitializeMsg", nil)
}

// InitializeMsg creates a pool configuration and opens its vaults. The
// rent is paid by the main signer.
type InitializeMsg struct {
	Seed      uint64         `json:"seed"`
	FeeBps    uint16         `json:"fee_bps"`
	Authority barter.Address `json:"authority,omitempty"`
	AssetX    barter.Address `json:"asset_x"`
	AssetY    barter.Address `json:"asset_y"`
}

var _ barter.Msg = (*InitializeMsg)(nil)

// Path returns the routing path for this message
func (InitializeMsg) Path() string {
	return pathInitializeMsg
}

// Validate makes sure that this is sensible
func (m *InitializeMsg) Validate() error {
	if m.FeeBps > coin.BasisPoints {
		return errors.Wrapf(errors.ErrMsg, "fee rate %d basis points", m.FeeBps)
	}
	if len(m.Authority) != 0 {
		if err := m.Authority.Validate(); err != nil {
			return errors.Wrap(err, "authority")
		}
	}
	if err := m.AssetX.Validate(); err != nil {
		return errors.Wrap(err, "asset x")
	}
	if err := m.AssetY.Validate(); err != nil {
		return errors.Wrap(err, "asset y")
	}
	if m.AssetX.Equals(m.AssetY) {
		return errors.Wrap(errors.ErrMsg, "pool assets must differ")
	}
	return nil
}
