package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

const (
	// BucketName is where we store the escrows
	BucketName = "escrows"

	// MakerIndex is the name of the index listing escrows by maker.
	MakerIndex = "maker"
)

var (
	escrowSeed = []byte("escrow")
	vaultSeed  = []byte("vault")
)

// Escrow is an open offer. Existence of the record means the offer is open,
// it is never updated.
type Escrow struct {
	Seed            uint64         `json:"seed"`
	Maker           barter.Address `json:"maker"`
	AssetOffered    barter.Address `json:"asset_offered"`
	AssetRequested  barter.Address `json:"asset_requested"`
	RequestedAmount uint64         `json:"requested_amount"`
	// AddressSalt is the bump of the escrow address derivation.
	AddressSalt uint8 `json:"address_salt"`
}

var _ orm.Model = (*Escrow)(nil)

// Validate ensures the escrow is valid
func (e *Escrow) Validate() error {
	if err := e.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := e.AssetOffered.Validate(); err != nil {
		return errors.Wrap(err, "asset offered")
	}
	if err := e.AssetRequested.Validate(); err != nil {
		return errors.Wrap(err, "asset requested")
	}
	if e.AssetOffered.Equals(e.AssetRequested) {
		return errors.Wrap(errors.ErrModel, "offered and requested asset must differ")
	}
	if e.RequestedAmount == 0 {
		return errors.Wrap(errors.ErrModel, "requested amount must be positive")
	}
	return nil
}

// Address reconstructs the escrow address from the stored salt.
func (e *Escrow) Address(ns barter.Namespace) (barter.Address, error) {
	return ns.CreateDerived(e.AddressSalt, escrowSeed, e.Maker, barter.SeedUint64(e.Seed))
}

// EscrowAddress returns the address an escrow of the maker with given seed
// is stored under, together with the derivation bump.
func EscrowAddress(ns barter.Namespace, maker barter.Address, seed uint64) (barter.Address, uint8, error) {
	return ns.Derive(escrowSeed, maker, barter.SeedUint64(seed))
}

// VaultAddress returns the holder of the wallet keeping the offered funds
// of the escrow of the maker with given seed.
func VaultAddress(ns barter.Namespace, maker barter.Address, seed uint64) (barter.Address, error) {
	addr, _, err := ns.Derive(vaultSeed, maker, barter.SeedUint64(seed))
	return addr, err
}

func makerIndexer(obj orm.Model) ([]byte, error) {
	e, ok := obj.(*Escrow)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj)
	}
	return e.Maker, nil
}

// NewBucket returns a bucket for managing escrows, indexed by maker.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Escrow{},
		orm.WithIndex(MakerIndex, makerIndexer, false))
}
