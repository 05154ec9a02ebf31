package marketplace

import (
	"regexp"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/coin"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

const (
	// MarketplaceBucketName is where we store the marketplaces
	MarketplaceBucketName = "marketplaces"
	// ListingBucketName is where we store the listings
	ListingBucketName = "listings"
)

var (
	isMarketplaceName = regexp.MustCompile(`^[a-zA-Z0-9_\-]{1,32}$`).MatchString

	marketplaceSeed = []byte("marketplace")
	listingSeed     = []byte("listing")
)

// Marketplace charges a fee on every purchase of its listings.
type Marketplace struct {
	Name     string         `json:"name"`
	Admin    barter.Address `json:"admin"`
	FeeBps   uint16         `json:"fee_bps"`
	Treasury barter.Address `json:"treasury"`
	Salt     uint8          `json:"salt"`
}

var _ orm.Model = (*Marketplace)(nil)

// Validate ensures the marketplace is valid
func (m *Marketplace) Validate() error {
	if !isMarketplaceName(m.Name) {
		return errors.Wrapf(errors.ErrModel, "name %q", m.Name)
	}
	if err := m.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	if err := m.Treasury.Validate(); err != nil {
		return errors.Wrap(err, "treasury")
	}
	if m.FeeBps > coin.BasisPoints {
		return errors.Wrapf(errors.ErrModel, "fee rate %d basis points", m.FeeBps)
	}
	return nil
}

// MarketplaceAddress returns the address of the marketplace with given name.
func MarketplaceAddress(ns barter.Namespace, name string) (barter.Address, uint8, error) {
	return ns.Derive(marketplaceSeed, []byte(name))
}

// Listing is an item offered for sale. The item is held by the listing
// address until the listing is purchased or delisted.
type Listing struct {
	Marketplace barter.Address `json:"marketplace"`
	Maker       barter.Address `json:"maker"`
	Item        barter.Address `json:"item"`
	Price       uint64         `json:"price"`
	Salt        uint8          `json:"salt"`
}

var _ orm.Model = (*Listing)(nil)

// Validate ensures the listing is valid
func (l *Listing) Validate() error {
	if err := l.Marketplace.Validate(); err != nil {
		return errors.Wrap(err, "marketplace")
	}
	if err := l.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := l.Item.Validate(); err != nil {
		return errors.Wrap(err, "item")
	}
	if l.Price == 0 {
		return errors.Wrap(errors.ErrModel, "price must be positive")
	}
	return nil
}

// ListingAddress returns the address of the listing of an item in the
// marketplace. An item can be listed once per marketplace.
func ListingAddress(ns barter.Namespace, marketplace, item barter.Address) (barter.Address, uint8, error) {
	return ns.Derive(listingSeed, marketplace, item)
}

// NewMarketplaceBucket returns a bucket for managing marketplaces.
func NewMarketplaceBucket() orm.ModelBucket {
	return orm.NewModelBucket(MarketplaceBucketName, &Marketplace{})
}

// NewListingBucket returns a bucket for managing listings, indexed by the
// marketplace and the maker.
func NewListingBucket() orm.ModelBucket {
	return orm.NewModelBucket(ListingBucketName, &Listing{},
		orm.WithIndex("marketplace", marketplaceIndexer, false),
		orm.WithIndex("maker", makerIndexer, false))
}

func marketplaceIndexer(obj orm.Model) ([]byte, error) {
	l, ok := obj.(*Listing)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj)
	}
	return l.Marketplace, nil
}

func makerIndexer(obj orm.Model) ([]byte, error) {
	l, ok := obj.(*Listing)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj)
	}
	return l.Maker, nil
}
