package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	amino "github.com/tendermint/go-amino"
)

const (
	pathMakeMsg   = "escrow/make"
	pathTakeMsg   = "escrow/take"
	pathRefundMsg = "escrow/refund"
)

// RegisterCodec registers all messages of this extension.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&MakeMsg{}, "escrow/MakeMsg", nil)
	cdc.RegisterConcrete(&TakeMsg{}, "escrow/TakeMsg", nil)
	cdc.RegisterConcrete(&RefundMsg{}, "escrow/RefundMsg", nil)
}

// MakeMsg opens an escrow. Maker defaults to the main signer.
type MakeMsg struct {
	Maker           barter.Address `json:"maker,omitempty"`
	Seed            uint64         `json:"seed"`
	AssetOffered    barter.Address `json:"asset_offered"`
	AssetRequested  barter.Address `json:"asset_requested"`
	RequestedAmount uint64         `json:"requested_amount"`
	DepositAmount   uint64         `json:"deposit_amount"`
}

var _ barter.Msg = (*MakeMsg)(nil)

// Path returns the routing path for this message
func (MakeMsg) Path() string {
	return pathMakeMsg
}

// Validate makes sure that this is sensible
func (m *MakeMsg) Validate() error {
	if len(m.Maker) != 0 {
		if err := m.Maker.Validate(); err != nil {
			return errors.Wrap(err, "maker")
		}
	}
	if err := m.AssetOffered.Validate(); err != nil {
		return errors.Wrap(err, "asset offered")
	}
	if err := m.AssetRequested.Validate(); err != nil {
		return errors.Wrap(err, "asset requested")
	}
	if m.AssetOffered.Equals(m.AssetRequested) {
		return errors.Wrap(errors.ErrMsg, "offered and requested asset must differ")
	}
	if m.RequestedAmount == 0 {
		return errors.Wrap(errors.ErrAmount, "requested amount must be positive")
	}
	if m.DepositAmount == 0 {
		return errors.Wrap(errors.ErrAmount, "deposit amount must be positive")
	}
	return nil
}

// TakeMsg completes an escrow. Taker defaults to the main signer.
type TakeMsg struct {
	Escrow barter.Address `json:"escrow"`
	Taker  barter.Address `json:"taker,omitempty"`
}

var _ barter.Msg = (*TakeMsg)(nil)

// Path returns the routing path for this message
func (TakeMsg) Path() string {
	return pathTakeMsg
}

// Validate makes sure that this is sensible
func (m *TakeMsg) Validate() error {
	if err := m.Escrow.Validate(); err != nil {
		return errors.Wrap(err, "escrow")
	}
	if len(m.Taker) != 0 {
		if err := m.Taker.Validate(); err != nil {
			return errors.Wrap(err, "taker")
		}
	}
	return nil
}

// RefundMsg returns the deposit to the maker and cancels the escrow.
type RefundMsg struct {
	Escrow barter.Address `json:"escrow"`
}

var _ barter.Msg = (*RefundMsg)(nil)

// Path returns the routing path for this message
func (RefundMsg) Path() string {
	return pathRefundMsg
}

// Validate makes sure that this is sensible
func (m *RefundMsg) Validate() error {
	return errors.Wrap(m.Escrow.Validate(), "escrow")
}
