package cash

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

// BucketName is where we store the wallets
const BucketName = "wallets"

// Wallet holds the balance of a single asset.
type Wallet struct {
	Holder    barter.Address `json:"holder"`
	Asset     barter.Address `json:"asset"`
	Amount    uint64         `json:"amount"`
	Authority barter.Address `json:"authority"`
	// Rent is the amount of the native asset locked when the wallet was
	// opened. It is refunded on close.
	Rent uint64 `json:"rent"`
}

var _ orm.Model = (*Wallet)(nil)

// Validate implements orm.Model.
func (w *Wallet) Validate() error {
	if err := w.Holder.Validate(); err != nil {
		return errors.Wrap(err, "holder")
	}
	if err := w.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	if err := w.Authority.Validate(); err != nil {
		return errors.Wrap(err, "authority")
	}
	return nil
}

// WalletKey returns the key a wallet is stored under.
func WalletKey(holder, asset barter.Address) []byte {
	key := make([]byte, 0, len(holder)+len(asset))
	key = append(key, holder...)
	return append(key, asset...)
}

// NewBucket returns a bucket for managing wallets. Prefix queries with the
// holder address list all wallets of a holder.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}
