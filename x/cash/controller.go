package cash

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/coin"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

// Controller is the functionality needed by other extensions to move
// assets. Authorization of the debit is checked against the wallet
// authority, the caller is responsible for proving that the authority
// approved the operation (a signer, or the extension owning a derived
// address).
type Controller interface {
	// Balance returns the amount held, zero if there is no wallet.
	Balance(db barter.ReadOnlyKVStore, holder, asset barter.Address) (uint64, error)

	// Wallet returns the wallet or ErrNotFound.
	Wallet(db barter.ReadOnlyKVStore, holder, asset barter.Address) (*Wallet, error)

	// Open creates an empty wallet debitable only by authority. The rent
	// is paid by payer from its native asset wallet.
	Open(db barter.KVStore, holder, asset, authority, payer barter.Address) (*Wallet, error)

	// Move transfers amount of an asset between two holders. Destination
	// wallet is created if missing.
	Move(db barter.KVStore, authority, src, dest, asset barter.Address, amount uint64) error

	// Close removes an empty wallet and refunds its rent.
	Close(db barter.KVStore, authority, holder, asset, rentRecipient barter.Address) error

	// Issue creates new units of an asset.
	Issue(db barter.KVStore, holder, asset barter.Address, amount uint64) error

	// Supply returns the total amount of an asset in existence.
	Supply(db barter.ReadOnlyKVStore, asset barter.Address) (uint64, error)
}

// BaseController is the default ledger implementation.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the wallets bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

func (c BaseController) Balance(db barter.ReadOnlyKVStore, holder, asset barter.Address) (uint64, error) {
	w, err := c.Wallet(db, holder, asset)
	switch {
	case err == nil:
		return w.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

func (c BaseController) Wallet(db barter.ReadOnlyKVStore, holder, asset barter.Address) (*Wallet, error) {
	var w Wallet
	if err := c.bucket.One(db, WalletKey(holder, asset), &w); err != nil {
		return nil, errors.Wrapf(err, "wallet %s of %s", asset, holder)
	}
	return &w, nil
}

func (c BaseController) Open(db barter.KVStore, holder, asset, authority, payer barter.Address) (*Wallet, error) {
	switch err := c.bucket.Has(db, WalletKey(holder, asset)); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "wallet %s of %s", asset, holder)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}

	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	if conf.AccountRent > 0 {
		if err := c.debit(db, payer, conf.NativeAsset, conf.AccountRent); err != nil {
			return nil, errors.Wrap(err, "rent")
		}
	}

	w := &Wallet{
		Holder:    holder,
		Asset:     asset,
		Authority: authority,
		Rent:      conf.AccountRent,
	}
	if err := c.bucket.Put(db, WalletKey(holder, asset), w); err != nil {
		return nil, err
	}
	return w, nil
}

func (c BaseController) Move(db barter.KVStore, authority, src, dest, asset barter.Address, amount uint64) error {
	w, err := c.Wallet(db, src, asset)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(errors.ErrInsufficientAmount, "no %s wallet of %s", asset, src)
		}
		return err
	}
	if !authority.Equals(w.Authority) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s cannot debit wallet of %s", authority, src)
	}
	if err := c.debit(db, src, asset, amount); err != nil {
		return err
	}
	return c.credit(db, dest, asset, amount)
}

func (c BaseController) Close(db barter.KVStore, authority, holder, asset, rentRecipient barter.Address) error {
	w, err := c.Wallet(db, holder, asset)
	if err != nil {
		return err
	}
	if !authority.Equals(w.Authority) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s cannot close wallet of %s", authority, holder)
	}
	if w.Amount != 0 {
		return errors.Wrapf(errors.ErrState, "wallet holds %d", w.Amount)
	}
	if err := c.bucket.Delete(db, WalletKey(holder, asset)); err != nil {
		return err
	}
	if w.Rent == 0 {
		return nil
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return err
	}
	return c.credit(db, rentRecipient, conf.NativeAsset, w.Rent)
}

func (c BaseController) Issue(db barter.KVStore, holder, asset barter.Address, amount uint64) error {
	return c.credit(db, holder, asset, amount)
}

// debit takes amount from the wallet without checking the authority.
func (c BaseController) debit(db barter.KVStore, holder, asset barter.Address, amount uint64) error {
	var w Wallet
	err := c.bucket.One(db, WalletKey(holder, asset), &w)
	switch {
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(errors.ErrInsufficientAmount, "no %s wallet of %s", asset, holder)
	case err != nil:
		return err
	}
	if w.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s holds %d, need %d", holder, w.Amount, amount)
	}
	w.Amount -= amount
	return c.bucket.Put(db, WalletKey(holder, asset), &w)
}

// credit adds amount to the wallet, creating a user wallet if missing.
func (c BaseController) credit(db barter.KVStore, holder, asset barter.Address, amount uint64) error {
	var w Wallet
	err := c.bucket.One(db, WalletKey(holder, asset), &w)
	switch {
	case errors.ErrNotFound.Is(err):
		w = Wallet{Holder: holder, Asset: asset, Authority: holder}
	case err != nil:
		return err
	}
	sum, err := coin.Add64(w.Amount, amount)
	if err != nil {
		return errors.Wrapf(err, "wallet %s of %s", asset, holder)
	}
	w.Amount = sum
	return c.bucket.Put(db, WalletKey(holder, asset), &w)
}

// Supply returns the total amount of an asset held in all wallets. Rent
// locked in wallets counts toward the native asset supply.
func (c BaseController) Supply(db barter.ReadOnlyKVStore, asset barter.Address) (uint64, error) {
	conf, err := LoadConfiguration(db)
	if err != nil {
		return 0, err
	}
	models, err := c.bucket.Query(db, barter.PrefixQueryMod, nil)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, m := range models {
		var w Wallet
		if err := orm.Unmarshal(m.Value, &w); err != nil {
			return 0, err
		}
		if w.Asset.Equals(asset) {
			if total, err = coin.Add64(total, w.Amount); err != nil {
				return 0, err
			}
		}
		if conf.NativeAsset.Equals(asset) {
			if total, err = coin.Add64(total, w.Rent); err != nil {
				return 0, err
			}
		}
	}
	return total, nil
}
