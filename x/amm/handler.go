package amm

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/cash"
)

const initializeCost int64 = 400

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r barter.Registry, ns barter.Namespace, auth x.Authenticator, control cash.Controller) {
	r.Handle(pathInitializeMsg, InitializeHandler{ns: ns, auth: auth, bucket: NewBucket(), bank: control})
}

// RegisterQuery will register this bucket as "/amm/configs"
func RegisterQuery(qr barter.QueryRouter) {
	NewBucket().Register("amm/configs", qr)
}

// InitializeHandler creates a pool.
type InitializeHandler struct {
	ns     barter.Namespace
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ barter.Handler = InitializeHandler{}

func (h InitializeHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: initializeCost}, nil
}

// Deliver saves the configuration and opens one vault for each pool asset.
func (h InitializeHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, admin, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	configAddr, configBump, err := ConfigAddress(h.ns, msg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "config address")
	}
	_, lpBump, err := LPAsset(h.ns, configAddr)
	if err != nil {
		return nil, errors.Wrap(err, "lp asset")
	}
	conf := &Config{
		Seed:       msg.Seed,
		Authority:  msg.Authority,
		AssetX:     msg.AssetX,
		AssetY:     msg.AssetY,
		FeeBps:     msg.FeeBps,
		Locked:     false,
		ConfigSalt: configBump,
		LPSalt:     lpBump,
	}
	err = barter.Atomic(db, func(db barter.KVStore) error {
		switch err := h.bucket.Has(db, configAddr); {
		case err == nil:
			return errors.Wrapf(errors.ErrDuplicate, "pool %d", msg.Seed)
		case !errors.ErrNotFound.Is(err):
			return err
		}
		if err := h.bucket.Put(db, configAddr, conf); err != nil {
			return err
		}
		for _, asset := range []barter.Address{conf.AssetX, conf.AssetY} {
			if _, err := h.bank.Open(db, configAddr, asset, configAddr, admin); err != nil {
				return errors.Wrapf(err, "open vault of %s", asset)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &barter.DeliverResult{Data: configAddr}, nil
}

func (h InitializeHandler) validate(ctx barter.Context, tx barter.Tx) (*InitializeMsg, barter.Address, error) {
	var msg InitializeMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	admin, err := x.SignerOrMain(ctx, h.auth, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "admin")
	}
	return &msg, admin, nil
}
