package gconf

import (
	"reflect"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x"
)

const updateConfigurationCost = 100

// UpdateConfigurationHandler patches the stored configuration of one
// package. Only the owner recorded in the current configuration may do it.
type UpdateConfigurationHandler struct {
	pkg  string
	auth x.Authenticator
	// typ is the pointer type of the configuration, used to allocate
	// instances to load into.
	typ reflect.Type
}

var _ barter.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a handler for messages with a
// "Patch" field of the same pointer type as config. Non zero fields of the
// patch replace the stored values.
//
// A configuration without an owner is frozen.
func NewUpdateConfigurationHandler(pkg string, config Configuration, auth x.Authenticator) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:  pkg,
		auth: auth,
		typ:  reflect.TypeOf(config),
	}
}

func (h UpdateConfigurationHandler) Check(ctx barter.Context, store barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if err := h.update(ctx, store, tx); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: updateConfigurationCost}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx barter.Context, store barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	err := barter.Atomic(store, func(db barter.KVStore) error {
		return h.update(ctx, db, tx)
	})
	if err != nil {
		return nil, err
	}
	return &barter.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) update(ctx barter.Context, store barter.KVStore, tx barter.Tx) error {
	current := reflect.New(h.typ.Elem()).Interface().(Configuration)
	if err := Load(store, h.pkg, current); err != nil {
		return errors.Wrap(err, "load configuration")
	}
	switch owner := current.GetOwner(); {
	case len(owner) == 0:
		return errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
	case !h.auth.HasAddress(ctx, owner):
		return errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}

	p, err := patchOf(tx, h.typ)
	if err != nil {
		return err
	}
	applyPatch(reflect.ValueOf(current).Elem(), reflect.ValueOf(p).Elem())
	return errors.Wrap(Save(store, h.pkg, current), "save configuration")
}

// applyPatch copies every non zero field of src into dst.
func applyPatch(dst, src reflect.Value) {
	for i := 0; i < src.NumField(); i++ {
		f := src.Field(i)
		if reflect.DeepEqual(f.Interface(), reflect.Zero(f.Type()).Interface()) {
			continue
		}
		dst.Field(i).Set(f)
	}
}

// patchOf returns the validated "Patch" field of the message carried by tx.
func patchOf(tx barter.Tx, typ reflect.Type) (Configuration, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrMsg, "%T is not a pointer to a struct", msg)
	}
	f := v.Elem().FieldByName("Patch")
	switch {
	case !f.IsValid():
		return nil, errors.Wrapf(errors.ErrMsg, "%T has no patch", msg)
	case f.Type() != typ:
		return nil, errors.Wrapf(errors.ErrMsg, "patch of type %s, want %s", f.Type(), typ)
	case f.IsNil():
		return nil, errors.Wrap(errors.ErrEmpty, "patch")
	}
	return f.Interface().(Configuration), nil
}
