package app

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/coin"
	"github.com/iov-one/barter/commands/server"
	"github.com/iov-one/barter/crypto"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x/cash"
	"github.com/iov-one/barter/x/utils"
	"github.com/mr-tron/base58"
	abci "github.com/tendermint/tendermint/abci/types"
)

const (
	appName = "barter"

	// DefaultNamespaceName is used when no genesis file is available.
	DefaultNamespaceName = "barter"

	paramsKey          = "params"
	defaultAccountRent = 10
	defaultSupply      = 123456789
)

// DefaultNamespace returns the namespace of a deployment without genesis
// parameters.
func DefaultNamespace() barter.Namespace {
	return barter.MustNewNamespace(DefaultNamespaceName, 1)
}

// NativeAsset returns the asset used for rent and prices in given namespace.
func NativeAsset(ns barter.Namespace) (barter.Address, error) {
	addr, _, err := ns.Derive([]byte("asset"), []byte("native"))
	return addr, err
}

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode. The first argument is the base58 address
// of the account, a new key is generated and printed when missing.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ns := DefaultNamespace()
	native, err := NativeAsset(ns)
	if err != nil {
		return nil, err
	}

	var addr barter.Address
	if len(args) > 0 {
		addr, err = barter.ParseAddress(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "account address")
		}
	} else {
		// if no address provided, auto-generate one
		// and print out the private key
		key := crypto.GenPrivKeyEd25519()
		addr = key.PublicKey().Address()
		fmt.Printf("Generated account %s, private key: %s\n", addr, base58.Encode(key))
	}

	type dict map[string]interface{}
	return json.Marshal(dict{
		paramsKey: barter.GenesisParams{
			Namespace: barter.NamespaceParams{Name: DefaultNamespaceName, Version: 1},
		},
		"cash": []cash.GenesisAccount{
			{Address: addr, Coins: []coin.Coin{coin.NewCoin(native, defaultSupply)}},
		},
		"conf": dict{
			cash.ConfigurationName: cash.Configuration{
				Owner:       addr,
				NativeAsset: native,
				AccountRent: defaultAccountRent,
			},
		},
	})
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	ns, err := loadNamespace(options.Home)
	if err != nil {
		return nil, err
	}

	var metrics *utils.Metrics
	if options.Registry != nil {
		if metrics, err = utils.NewMetrics(options.Registry); err != nil {
			return nil, err
		}
	}

	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "abci.db")
	}

	application, err := Application(appName, Stack(ns, metrics), TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(Initializers(ns))
	if options.Logger != nil {
		application.WithLogger(options.Logger.With("namespace", ns.String()))
	}
	return application, nil
}

// Initializers returns all genesis initializers, in order.
func Initializers(ns barter.Namespace) barter.Initializer {
	return barter.ChainInitializers{
		paramsInitializer{ns: ns},
		cash.Initializer{},
	}
}

// loadNamespace reads the namespace from the genesis file in home.
func loadNamespace(home string) (barter.Namespace, error) {
	if home == "" {
		return DefaultNamespace(), nil
	}
	return NamespaceOf(server.GenesisFile(home))
}

// NamespaceOf reads the namespace from the params of a genesis file.
func NamespaceOf(genesisPath string) (barter.Namespace, error) {
	bz, err := ioutil.ReadFile(genesisPath)
	if err != nil {
		return barter.Namespace{}, errors.Wrap(errors.ErrNotFound, err.Error())
	}
	var genesis struct {
		State barter.Options `json:"app_state"`
	}
	if err := json.Unmarshal(bz, &genesis); err != nil {
		return barter.Namespace{}, errors.Wrapf(errors.ErrInput, "genesis: %s", err)
	}
	return readNamespace(genesis.State)
}

func readNamespace(opts barter.Options) (barter.Namespace, error) {
	var params barter.GenesisParams
	if err := opts.ReadOptions(paramsKey, &params); err != nil {
		return barter.Namespace{}, err
	}
	if params.Namespace.Name == "" {
		return DefaultNamespace(), nil
	}
	return params.Namespace.Namespace()
}

// paramsInitializer refuses a genesis describing another namespace than
// the one the handlers were built with.
type paramsInitializer struct {
	ns barter.Namespace
}

func (i paramsInitializer) FromGenesis(opts barter.Options, db barter.KVStore) error {
	ns, err := readNamespace(opts)
	if err != nil {
		return errors.Wrap(err, "namespace")
	}
	if ns.String() != i.ns.String() {
		return errors.Wrapf(errors.ErrState, "genesis namespace %s, running %s", ns, i.ns)
	}
	return nil
}
