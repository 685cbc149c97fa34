package cash

import (
	"github.com/iov-one/crowdfund"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use crowdfund.Address, so address in hex, not base64
type GenesisAccount struct {
	Address crowdfund.Address `json:"address"`
	Balance uint64            `json:"balance"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ crowdfund.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts crowdfund.Options, kv crowdfund.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	bucket := NewBucket()
	for _, acct := range accts {
		wallet, err := WalletWith(acct.Address, acct.Balance)
		if err != nil {
			return err
		}
		if err := bucket.Save(kv, wallet); err != nil {
			return err
		}
	}
	return nil
}
