package marketplace

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/coin"
	"github.com/iov-one/barter/errors"
	amino "github.com/tendermint/go-amino"
)

const (
	pathCreateMarketplaceMsg = "marketplace/create"
	pathListMsg              = "marketplace/list"
	pathDelistMsg            = "marketplace/delist"
	pathPurchaseMsg          = "marketplace/purchase"
)

// RegisterCodec registers all messages of this extension.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&CreateMarketplaceMsg{}, "marketplace/CreateMarketplaceMsg", nil)
	cdc.RegisterConcrete(&ListMsg{}, "marketplace/ListMsg", nil)
	cdc.RegisterConcrete(&DelistMsg{}, "marketplace/DelistMsg", nil)
	cdc.RegisterConcrete(&PurchaseMsg{}, "marketplace/PurchaseMsg", nil)
}

// CreateMarketplaceMsg creates a marketplace administrated by the main
// signer.
type CreateMarketplaceMsg struct {
	Name     string         `json:"name"`
	FeeBps   uint16         `json:"fee_bps"`
	Treasury barter.Address `json:"treasury"`
}

var _ barter.Msg = (*CreateMarketplaceMsg)(nil)

// Path returns the routing path for this message
func (CreateMarketplaceMsg) Path() string {
	return pathCreateMarketplaceMsg
}

// Validate makes sure that this is sensible
func (m *CreateMarketplaceMsg) Validate() error {
	if !isMarketplaceName(m.Name) {
		return errors.Wrapf(errors.ErrMsg, "name %q", m.Name)
	}
	if m.FeeBps > coin.BasisPoints {
		return errors.Wrapf(errors.ErrMsg, "fee rate %d basis points", m.FeeBps)
	}
	return errors.Wrap(m.Treasury.Validate(), "treasury")
}

// ListMsg offers an amount of an item for the price, paid in the native
// asset.
type ListMsg struct {
	Marketplace barter.Address `json:"marketplace"`
	Item        barter.Address `json:"item"`
	Amount      uint64         `json:"amount"`
	Price       uint64         `json:"price"`
}

var _ barter.Msg = (*ListMsg)(nil)

// Path returns the routing path for this message
func (ListMsg) Path() string {
	return pathListMsg
}

// Validate makes sure that this is sensible
func (m *ListMsg) Validate() error {
	if err := m.Marketplace.Validate(); err != nil {
		return errors.Wrap(err, "marketplace")
	}
	if err := m.Item.Validate(); err != nil {
		return errors.Wrap(err, "item")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	if m.Price == 0 {
		return errors.Wrap(errors.ErrAmount, "price must be positive")
	}
	return nil
}

// DelistMsg returns the item to the maker.
type DelistMsg struct {
	Listing barter.Address `json:"listing"`
}

var _ barter.Msg = (*DelistMsg)(nil)

// Path returns the routing path for this message
func (DelistMsg) Path() string {
	return pathDelistMsg
}

// Validate makes sure that this is sensible
func (m *DelistMsg) Validate() error {
	return errors.Wrap(m.Listing.Validate(), "listing")
}

// PurchaseMsg buys a listed item for the main signer.
type PurchaseMsg struct {
	Listing barter.Address `json:"listing"`
}

var _ barter.Msg = (*PurchaseMsg)(nil)

// Path returns the routing path for this message
func (PurchaseMsg) Path() string {
	return pathPurchaseMsg
}

// Validate makes sure that this is sensible
func (m *PurchaseMsg) Validate() error {
	return errors.Wrap(m.Listing.Validate(), "listing")
}
