package marketplace

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/cash"
)

const (
	createMarketplaceCost int64 = 500
	listCost              int64 = 200
	delistCost            int64 = 0
	purchaseCost          int64 = 100
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r barter.Registry, ns barter.Namespace, auth x.Authenticator, control cash.Controller) {
	markets := NewMarketplaceBucket()
	listings := NewListingBucket()
	r.Handle(pathCreateMarketplaceMsg, CreateMarketplaceHandler{ns: ns, auth: auth, markets: markets})
	r.Handle(pathListMsg, ListHandler{ns: ns, auth: auth, markets: markets, listings: listings, bank: control})
	r.Handle(pathDelistMsg, DelistHandler{auth: auth, listings: listings, bank: control})
	r.Handle(pathPurchaseMsg, PurchaseHandler{auth: auth, markets: markets, listings: listings, bank: control})
}

// RegisterQuery will register the buckets as "/marketplaces" and "/listings"
func RegisterQuery(qr barter.QueryRouter) {
	NewMarketplaceBucket().Register("marketplaces", qr)
	NewListingBucket().Register("listings", qr)
}

// CreateMarketplaceHandler creates a marketplace.
type CreateMarketplaceHandler struct {
	ns      barter.Namespace
	auth    x.Authenticator
	markets orm.ModelBucket
}

var _ barter.Handler = CreateMarketplaceHandler{}

func (h CreateMarketplaceHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: createMarketplaceCost}, nil
}

func (h CreateMarketplaceHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, admin, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	addr, bump, err := MarketplaceAddress(h.ns, msg.Name)
	if err != nil {
		return nil, errors.Wrap(err, "marketplace address")
	}
	market := &Marketplace{
		Name:     msg.Name,
		Admin:    admin,
		FeeBps:   msg.FeeBps,
		Treasury: msg.Treasury,
		Salt:     bump,
	}
	err = barter.Atomic(db, func(db barter.KVStore) error {
		switch err := h.markets.Has(db, addr); {
		case err == nil:
			return errors.Wrapf(errors.ErrDuplicate, "marketplace %q", msg.Name)
		case !errors.ErrNotFound.Is(err):
			return err
		}
		return h.markets.Put(db, addr, market)
	})
	if err != nil {
		return nil, err
	}
	return &barter.DeliverResult{Data: addr}, nil
}

func (h CreateMarketplaceHandler) validate(ctx barter.Context, tx barter.Tx) (*CreateMarketplaceMsg, barter.Address, error) {
	var msg CreateMarketplaceMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	admin, err := x.SignerOrMain(ctx, h.auth, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "admin")
	}
	return &msg, admin, nil
}

// ListHandler deposits an item into a new listing vault.
type ListHandler struct {
	ns       barter.Namespace
	auth     x.Authenticator
	markets  orm.ModelBucket
	listings orm.ModelBucket
	bank     cash.Controller
}

var _ barter.Handler = ListHandler{}

func (h ListHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: listCost}, nil
}

func (h ListHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, maker, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	addr, bump, err := ListingAddress(h.ns, msg.Marketplace, msg.Item)
	if err != nil {
		return nil, errors.Wrap(err, "listing address")
	}
	listing := &Listing{
		Marketplace: msg.Marketplace,
		Maker:       maker,
		Item:        msg.Item,
		Price:       msg.Price,
		Salt:        bump,
	}
	err = barter.Atomic(db, func(db barter.KVStore) error {
		if err := h.markets.Has(db, msg.Marketplace); err != nil {
			return errors.Wrap(err, "marketplace")
		}
		switch err := h.listings.Has(db, addr); {
		case err == nil:
			return errors.Wrap(errors.ErrDuplicate, "item already listed")
		case !errors.ErrNotFound.Is(err):
			return err
		}
		if err := h.listings.Put(db, addr, listing); err != nil {
			return err
		}
		if _, err := h.bank.Open(db, addr, msg.Item, addr, maker); err != nil {
			return errors.Wrap(err, "open vault")
		}
		return errors.Wrap(h.bank.Move(db, maker, maker, addr, msg.Item, msg.Amount), "deposit item")
	})
	if err != nil {
		return nil, err
	}
	return &barter.DeliverResult{Data: addr}, nil
}

func (h ListHandler) validate(ctx barter.Context, tx barter.Tx) (*ListMsg, barter.Address, error) {
	var msg ListMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	maker, err := x.SignerOrMain(ctx, h.auth, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "maker")
	}
	return &msg, maker, nil
}

// DelistHandler returns the item to the maker.
type DelistHandler struct {
	auth     x.Authenticator
	listings orm.ModelBucket
	bank     cash.Controller
}

var _ barter.Handler = DelistHandler{}

func (h DelistHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	var msg DelistMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if _, err := h.authorize(ctx, db, msg.Listing); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: delistCost}, nil
}

func (h DelistHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	var msg DelistMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	err := barter.Atomic(db, func(db barter.KVStore) error {
		listing, err := h.authorize(ctx, db, msg.Listing)
		if err != nil {
			return err
		}
		return settle(db, h.listings, h.bank, msg.Listing, listing, listing.Maker)
	})
	if err != nil {
		return nil, err
	}
	return &barter.DeliverResult{}, nil
}

// authorize loads the listing and ensures that the maker signed.
func (h DelistHandler) authorize(ctx barter.Context, db barter.ReadOnlyKVStore, addr barter.Address) (*Listing, error) {
	var listing Listing
	if err := h.listings.One(db, addr, &listing); err != nil {
		return nil, errors.Wrap(err, "listing")
	}
	if !h.auth.HasAddress(ctx, listing.Maker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the maker can delist")
	}
	return &listing, nil
}

// PurchaseHandler sells the listed item to the main signer.
type PurchaseHandler struct {
	auth     x.Authenticator
	markets  orm.ModelBucket
	listings orm.ModelBucket
	bank     cash.Controller
}

var _ barter.Handler = PurchaseHandler{}

func (h PurchaseHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	msg, _, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.listings.Has(db, msg.Listing); err != nil {
		return nil, errors.Wrap(err, "listing")
	}
	return &barter.CheckResult{GasAllocated: purchaseCost}, nil
}

// Deliver pays the proceeds to the maker and the fee to the treasury, then
// releases the item to the buyer. All transfers happen or none.
func (h PurchaseHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, buyer, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	err = barter.Atomic(db, func(db barter.KVStore) error {
		var listing Listing
		if err := h.listings.One(db, msg.Listing, &listing); err != nil {
			return errors.Wrap(err, "listing")
		}
		var market Marketplace
		if err := h.markets.One(db, listing.Marketplace, &market); err != nil {
			return errors.Wrap(err, "marketplace")
		}
		conf, err := cash.LoadConfiguration(db)
		if err != nil {
			return err
		}
		fee, proceeds, err := Split(listing.Price, market.FeeBps)
		if err != nil {
			return err
		}
		if proceeds > 0 {
			if err := h.bank.Move(db, buyer, buyer, listing.Maker, conf.NativeAsset, proceeds); err != nil {
				return errors.Wrap(err, "pay maker")
			}
		}
		if fee > 0 {
			if err := h.bank.Move(db, buyer, buyer, market.Treasury, conf.NativeAsset, fee); err != nil {
				return errors.Wrap(err, "pay fee")
			}
		}
		return settle(db, h.listings, h.bank, msg.Listing, &listing, buyer)
	})
	if err != nil {
		return nil, err
	}
	return &barter.DeliverResult{}, nil
}

func (h PurchaseHandler) validate(ctx barter.Context, tx barter.Tx) (*PurchaseMsg, barter.Address, error) {
	var msg PurchaseMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	buyer, err := x.SignerOrMain(ctx, h.auth, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "buyer")
	}
	return &msg, buyer, nil
}

// settle moves the listed item to the recipient, closes the listing vault
// refunding its rent to the maker and deletes the listing.
func settle(
	db barter.KVStore,
	listings orm.ModelBucket,
	bank cash.Controller,
	addr barter.Address,
	listing *Listing,
	recipient barter.Address,
) error {
	vault, err := bank.Wallet(db, addr, listing.Item)
	if err != nil {
		return errors.Wrap(err, "vault")
	}
	if !vault.Authority.Equals(addr) {
		return errors.Wrapf(errors.ErrState, "vault authority %s", vault.Authority)
	}
	if vault.Amount > 0 {
		if err := bank.Move(db, addr, addr, recipient, listing.Item, vault.Amount); err != nil {
			return errors.Wrap(err, "release item")
		}
	}
	if err := bank.Close(db, addr, addr, listing.Item, listing.Maker); err != nil {
		return errors.Wrap(err, "close vault")
	}
	return errors.Wrap(listings.Delete(db, addr), "delete listing")
}
