package utils

import (
	"github.com/iov-one/barter"
	"github.com/tendermint/tendermint/libs/common"
)

// Tag keys appended by ActionTagger.
const (
	ActionKey  = "action"
	CreatedKey = "created"
)

// ActionTagger tags every delivered transaction with the path of its
// message. When the handler returns an address as result data, ie. of a
// made escrow or a new listing, it is tagged as well. Clients use the tags
// to search or subscribe to eg. the resolution of an escrow.
type ActionTagger struct{}

var _ barter.Decorator = ActionTagger{}

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check just passes the request along
func (ActionTagger) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Checker) (*barter.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver tags a successful result.
func (ActionTagger) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Deliverer) (*barter.DeliverResult, error) {
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{
		Key:   []byte(ActionKey),
		Value: []byte(barter.GetPath(tx)),
	})
	if addr := barter.Address(res.Data); addr.Validate() == nil {
		res.Tags = append(res.Tags, common.KVPair{
			Key:   []byte(CreatedKey),
			Value: []byte(addr.String()),
		})
	}
	return res, nil
}
