package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/cash"
)

const (
	// gas reported by Check
	makeEscrowCost   int64 = 300
	takeEscrowCost   int64 = 100
	refundEscrowCost int64 = 0
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r barter.Registry, ns barter.Namespace, auth x.Authenticator, control cash.Controller) {
	bucket := NewBucket()
	r.Handle(pathMakeMsg, MakeHandler{ns: ns, auth: auth, bucket: bucket, bank: control})
	r.Handle(pathTakeMsg, TakeHandler{ns: ns, auth: auth, bucket: bucket, bank: control})
	r.Handle(pathRefundMsg, RefundHandler{ns: ns, auth: auth, bucket: bucket, bank: control})
}

// RegisterQuery will register this bucket as "/escrows"
func RegisterQuery(qr barter.QueryRouter) {
	NewBucket().Register("escrows", qr)
}

// MakeHandler opens an escrow and deposits the offered funds.
type MakeHandler struct {
	ns     barter.Namespace
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ barter.Handler = MakeHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h MakeHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: makeEscrowCost}, nil
}

// Deliver stores the escrow, opens the vault and moves the deposit into it.
// Nothing is written unless all three steps succeed.
func (h MakeHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, maker, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}

	escrowAddr, bump, err := EscrowAddress(h.ns, maker, msg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "escrow address")
	}
	vaultAddr, err := VaultAddress(h.ns, maker, msg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "vault address")
	}

	escrow := &Escrow{
		Seed:            msg.Seed,
		Maker:           maker,
		AssetOffered:    msg.AssetOffered,
		AssetRequested:  msg.AssetRequested,
		RequestedAmount: msg.RequestedAmount,
		AddressSalt:     bump,
	}
	err = barter.Atomic(db, func(db barter.KVStore) error {
		switch err := h.bucket.Has(db, escrowAddr); {
		case err == nil:
			return errors.Wrapf(errors.ErrDuplicate, "escrow %s", escrowAddr)
		case !errors.ErrNotFound.Is(err):
			return err
		}
		if err := h.bucket.Put(db, escrowAddr, escrow); err != nil {
			return errors.Wrap(err, "cannot store escrow")
		}
		if _, err := h.bank.Open(db, vaultAddr, escrow.AssetOffered, escrowAddr, maker); err != nil {
			return errors.Wrap(err, "open vault")
		}
		if err := h.bank.Move(db, maker, maker, vaultAddr, escrow.AssetOffered, msg.DepositAmount); err != nil {
			return errors.Wrap(err, "deposit")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	barter.GetLogger(ctx).Debug("escrow made",
		"escrow", escrowAddr, "maker", maker, "deposit", msg.DepositAmount)
	return &barter.DeliverResult{Data: escrowAddr}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h MakeHandler) validate(ctx barter.Context, tx barter.Tx) (*MakeMsg, barter.Address, error) {
	var msg MakeMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	maker, err := x.SignerOrMain(ctx, h.auth, msg.Maker)
	if err != nil {
		return nil, nil, errors.Wrap(err, "maker")
	}
	return &msg, maker, nil
}

// TakeHandler pays the maker and releases the vault to the taker.
type TakeHandler struct {
	ns     barter.Namespace
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ barter.Handler = TakeHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h TakeHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	msg, _, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Has(db, msg.Escrow); err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	return &barter.CheckResult{GasAllocated: takeEscrowCost}, nil
}

// Deliver moves the requested amount from the taker to the maker, the
// whole vault balance to the taker, closes the vault and deletes the escrow.
func (h TakeHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, taker, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}

	var released uint64
	err = barter.Atomic(db, func(db barter.KVStore) error {
		escrow, vault, err := loadOpen(db, h.ns, h.bucket, h.bank, msg.Escrow)
		if err != nil {
			return err
		}
		if err := h.bank.Move(db, taker, taker, escrow.Maker, escrow.AssetRequested, escrow.RequestedAmount); err != nil {
			return errors.Wrap(err, "pay maker")
		}
		released = vault.Amount
		return release(db, h.bucket, h.bank, msg.Escrow, escrow, vault, taker)
	})
	if err != nil {
		return nil, err
	}

	barter.GetLogger(ctx).Debug("escrow taken",
		"escrow", msg.Escrow, "taker", taker, "released", released)
	return &barter.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h TakeHandler) validate(ctx barter.Context, tx barter.Tx) (*TakeMsg, barter.Address, error) {
	var msg TakeMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	taker, err := x.SignerOrMain(ctx, h.auth, msg.Taker)
	if err != nil {
		return nil, nil, errors.Wrap(err, "taker")
	}
	return &msg, taker, nil
}

// RefundHandler returns the vault balance to the maker.
type RefundHandler struct {
	ns     barter.Namespace
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ barter.Handler = RefundHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h RefundHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	msg, err := h.loadMsg(tx)
	if err != nil {
		return nil, err
	}
	var escrow Escrow
	if err := h.bucket.One(db, msg.Escrow, &escrow); err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	if !h.auth.HasAddress(ctx, escrow.Maker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the maker can refund")
	}
	return &barter.CheckResult{GasAllocated: refundEscrowCost}, nil
}

// Deliver moves the whole vault balance back to the maker, closes the
// vault and deletes the escrow.
func (h RefundHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, err := h.loadMsg(tx)
	if err != nil {
		return nil, err
	}

	err = barter.Atomic(db, func(db barter.KVStore) error {
		var escrow Escrow
		if err := h.bucket.One(db, msg.Escrow, &escrow); err != nil {
			return errors.Wrap(err, "escrow")
		}
		// Authorization is verified before the vault is looked at.
		if !h.auth.HasAddress(ctx, escrow.Maker) {
			return errors.Wrap(errors.ErrUnauthorized, "only the maker can refund")
		}
		_, vault, err := loadOpen(db, h.ns, h.bucket, h.bank, msg.Escrow)
		if err != nil {
			return err
		}
		return release(db, h.bucket, h.bank, msg.Escrow, &escrow, vault, escrow.Maker)
	})
	if err != nil {
		return nil, err
	}

	barter.GetLogger(ctx).Debug("escrow refunded", "escrow", msg.Escrow)
	return &barter.DeliverResult{}, nil
}

func (h RefundHandler) loadMsg(tx barter.Tx) (*RefundMsg, error) {
	var msg RefundMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &msg, nil
}

// loadOpen returns the escrow stored under given address together with its
// vault. The vault must be debitable by the escrow address only.
func loadOpen(
	db barter.ReadOnlyKVStore,
	ns barter.Namespace,
	bucket orm.ModelBucket,
	bank cash.Controller,
	escrowAddr barter.Address,
) (*Escrow, *cash.Wallet, error) {
	var escrow Escrow
	if err := bucket.One(db, escrowAddr, &escrow); err != nil {
		return nil, nil, errors.Wrap(err, "escrow")
	}
	expected, err := escrow.Address(ns)
	if err != nil {
		return nil, nil, errors.Wrap(err, "escrow address")
	}
	if !expected.Equals(escrowAddr) {
		return nil, nil, errors.Wrapf(errors.ErrState, "escrow stored under %s, derived %s", escrowAddr, expected)
	}
	vaultAddr, err := VaultAddress(ns, escrow.Maker, escrow.Seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "vault address")
	}
	vault, err := bank.Wallet(db, vaultAddr, escrow.AssetOffered)
	if err != nil {
		return nil, nil, errors.Wrap(err, "vault")
	}
	if !vault.Authority.Equals(escrowAddr) {
		return nil, nil, errors.Wrapf(errors.ErrState, "vault authority %s", vault.Authority)
	}
	return &escrow, vault, nil
}

// release moves the whole vault balance to the recipient, closes the vault
// refunding its rent to the maker and deletes the escrow.
func release(
	db barter.KVStore,
	bucket orm.ModelBucket,
	bank cash.Controller,
	escrowAddr barter.Address,
	escrow *Escrow,
	vault *cash.Wallet,
	recipient barter.Address,
) error {
	if vault.Amount > 0 {
		if err := bank.Move(db, escrowAddr, vault.Holder, recipient, vault.Asset, vault.Amount); err != nil {
			return errors.Wrap(err, "release vault")
		}
	}
	if err := bank.Close(db, escrowAddr, vault.Holder, vault.Asset, escrow.Maker); err != nil {
		return errors.Wrap(err, "close vault")
	}
	if err := bucket.Delete(db, escrowAddr); err != nil {
		return errors.Wrap(err, "delete escrow")
	}
	return nil
}
