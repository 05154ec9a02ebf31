package app

import (
	"reflect"

	"github.com/iov-one/barter"
)

// Decorators is an ordered stack of decorators waiting for the handler they
// wrap. The first decorator of the stack runs first.
//
//	app.ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		sigs.NewDecorator(),
//	).WithHandler(router)
type Decorators struct {
	chain []barter.Decorator
}

// ChainDecorators returns a stack of the given decorators. Nil values,
// including typed nil pointers, are skipped so optional decorators can be
// passed unconditionally.
func ChainDecorators(chain ...barter.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain returns a new stack with the given decorators appended.
func (d Decorators) Chain(chain ...barter.Decorator) Decorators {
	out := make([]barter.Decorator, 0, len(d.chain)+len(chain))
	out = append(out, d.chain...)
	for _, dec := range chain {
		if !isNilDecorator(dec) {
			out = append(out, dec)
		}
	}
	return Decorators{chain: out}
}

func isNilDecorator(d barter.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler wraps h with the whole stack.
func (d Decorators) WithHandler(h barter.Handler) barter.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = wrapped{decorator: d.chain[i], next: h}
	}
	return h
}

// wrapped runs one decorator around the rest of the stack.
type wrapped struct {
	decorator barter.Decorator
	next      barter.Handler
}

var _ barter.Handler = wrapped{}

func (w wrapped) Check(ctx barter.Context, store barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	return w.decorator.Check(ctx, store, tx, w.next)
}

func (w wrapped) Deliver(ctx barter.Context, store barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	return w.decorator.Deliver(ctx, store, tx, w.next)
}
