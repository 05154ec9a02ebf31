package cash

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	amino "github.com/tendermint/go-amino"
)

const (
	pathSendMsg                = "cash/send"
	pathUpdateConfigurationMsg = "cash/update_configuration"

	maxMemoSize = 128
)

// RegisterCodec registers all messages of this extension.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&SendMsg{}, "cash/SendMsg", nil)
	cdc.RegisterConcrete(&UpdateConfigurationMsg{}, "cash/UpdateConfigurationMsg", nil)
}

// SendMsg moves an amount of an asset between two holders.
type SendMsg struct {
	Source      barter.Address `json:"source"`
	Destination barter.Address `json:"destination"`
	Asset       barter.Address `json:"asset"`
	Amount      uint64         `json:"amount"`
	Memo        string         `json:"memo,omitempty"`
}

var _ barter.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return pathSendMsg
}

// Validate makes sure that this is sensible
func (s *SendMsg) Validate() error {
	if err := s.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := s.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := s.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	if s.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if len(s.Memo) > maxMemoSize {
		return errors.Wrapf(errors.ErrMsg, "memo too long: %d", len(s.Memo))
	}
	return nil
}

// UpdateConfigurationMsg changes the ledger configuration. Zero fields of
// the patch are ignored.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var _ barter.Msg = (*UpdateConfigurationMsg)(nil)

// Path returns the routing path for this message
func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

// Validate makes sure that this is sensible
func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if len(m.Patch.Owner) != 0 {
		if err := m.Patch.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if len(m.Patch.NativeAsset) != 0 {
		return errors.Wrap(errors.ErrMsg, "native asset cannot be changed")
	}
	return nil
}
