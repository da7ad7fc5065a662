// Package ledger implements the core ledger engine: the mutable projection
// of accounts and assets, the state-transition function that applies
// transaction batches to it, and the append-only hash-linked chain of
// blocks that records every mutation.
package ledger

import (
	"sort"
	"time"

	"assetmarket.mini/dam/internal/types"
)

// State is the mutable projection of accounts and assets. It is always
// fully reconstructible by replaying the chain from genesis. Invariants the
// applier preserves: addresses and usernames are unique across live
// accounts, balances never go negative, every asset's owner references a
// live account, and an asset is never for sale at a non-positive price.
type State struct {
	accounts  map[string]types.Account // by address
	assets    map[string]types.Asset   // by id
	usernames map[string]string        // username -> address
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		accounts:  make(map[string]types.Account),
		assets:    make(map[string]types.Asset),
		usernames: make(map[string]string),
	}
}

// clone returns a deep copy. The applier mutates the copy and commits it
// only when the whole batch validates.
func (s *State) clone() *State {
	c := &State{
		accounts:  make(map[string]types.Account, len(s.accounts)),
		assets:    make(map[string]types.Asset, len(s.assets)),
		usernames: make(map[string]string, len(s.usernames)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.assets {
		c.assets[k] = v
	}
	for k, v := range s.usernames {
		c.usernames[k] = v
	}
	return c
}

// Account looks up an account by address.
func (s *State) Account(address string) (types.Account, bool) {
	a, ok := s.accounts[address]
	return a, ok
}

// AccountByUsername looks up an account by its unique username.
func (s *State) AccountByUsername(username string) (types.Account, bool) {
	addr, ok := s.usernames[username]
	if !ok {
		return types.Account{}, false
	}
	return s.Account(addr)
}

// Accounts returns all live accounts ordered by address.
func (s *State) Accounts() []types.Account {
	out := make([]types.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Asset looks up an asset by id.
func (s *State) Asset(id string) (types.Asset, bool) {
	a, ok := s.assets[id]
	return a, ok
}

// Assets returns all assets ordered by id.
func (s *State) Assets() []types.Asset {
	out := make([]types.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AssetsOwnedBy returns the assets owned by the given address, ordered by id.
func (s *State) AssetsOwnedBy(address string) []types.Asset {
	var out []types.Asset
	for _, a := range s.assets {
		if a.Owner == address {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AssetsForSale returns the assets currently listed on the market, ordered
// by id.
func (s *State) AssetsForSale() []types.Asset {
	var out []types.Asset
	for _, a := range s.assets {
		if a.ForSale {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ownsAssets reports whether any asset is owned by address.
func (s *State) ownsAssets(address string) bool {
	for _, a := range s.assets {
		if a.Owner == address {
			return true
		}
	}
	return false
}

// Equal reports whether two states hold the same accounts and assets. Used
// to check a stored projection against the replay of its chain.
func (s *State) Equal(o *State) bool {
	if len(s.accounts) != len(o.accounts) || len(s.assets) != len(o.assets) {
		return false
	}
	for k, v := range s.accounts {
		if ov, ok := o.accounts[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range s.assets {
		ov, ok := o.assets[k]
		if !ok || !ov.Minted.Equal(v.Minted) {
			return false
		}
		// time.Time is not comparable with == across locations
		ov.Minted, v.Minted = time.Time{}, time.Time{}
		if ov != v {
			return false
		}
	}
	return true
}
