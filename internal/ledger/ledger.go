package ledger

import (
	"fmt"
	"sync"
	"time"

	"assetmarket.mini/dam/internal/types"
)

// Ledger owns the append-only chain of blocks and the current state
// projection. All access is serialized through one mutex: Append runs its
// validate-then-mutate sequence with exclusive access, reads take the read
// lock. The chain always holds at least the genesis block and blocks are
// never edited or removed once appended.
type Ledger struct {
	mu     sync.RWMutex
	blocks []types.Block
	state  *State
}

// New returns a ledger initialized with a genesis block.
func New() *Ledger {
	l := &Ledger{state: NewState()}
	genesis := types.Block{
		Index:     0,
		Timestamp: types.Timestamp(time.Now()),
		Txs:       []types.Transaction{NewGenesisTx()},
		PrevHash:  types.GenesisPrevHash,
	}
	genesis.Hash = BlockHash(genesis)
	l.blocks = []types.Block{genesis}
	return l
}

// Append validates the batch against current state and, only if every
// transaction succeeds, commits the new state and appends a block recording
// the batch. On failure the ledger is unchanged and the error identifies
// the precondition that failed.
func (l *Ledger) Append(txs []types.Transaction) (types.BlockRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := types.Timestamp(time.Now())
	next, err := applyBatch(l.state, ts, txs, false)
	if err != nil {
		return types.BlockRef{}, err
	}

	// Blocks own their transactions; the caller keeps no alias.
	batch := make([]types.Transaction, len(txs))
	copy(batch, txs)

	prev := l.blocks[len(l.blocks)-1]
	block := types.Block{
		Index:     len(l.blocks),
		Timestamp: ts,
		Txs:       batch,
		PrevHash:  prev.Hash,
	}
	block.Hash = BlockHash(block)
	l.blocks = append(l.blocks, block)
	l.state = next
	return types.BlockRef{Index: block.Index, Hash: block.Hash}, nil
}

// Verify walks the chain from genesis, recomputing each block's hash and
// checking the previous-hash linkage. It fails with a BrokenLinkError at
// the first block whose stored hash or prevHash does not match.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return verifyChain(l.blocks)
}

func verifyChain(blocks []types.Block) error {
	for i, b := range blocks {
		if b.Index != i {
			return &BrokenLinkError{Index: i}
		}
		if i == 0 {
			if b.PrevHash != types.GenesisPrevHash {
				return &BrokenLinkError{Index: 0}
			}
		} else if b.PrevHash != blocks[i-1].Hash {
			return &BrokenLinkError{Index: i}
		}
		if b.Hash != BlockHash(b) {
			return &BrokenLinkError{Index: i}
		}
	}
	return nil
}

// Replay reconstructs ledger state from scratch by applying every block's
// transactions in order. The result must match the live state exactly;
// callers use it to validate stored snapshots against derivable state.
func (l *Ledger) Replay() (*State, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return replayChain(l.blocks)
}

func replayChain(blocks []types.Block) (*State, error) {
	st := NewState()
	for _, b := range blocks {
		next, err := applyBatch(st, b.Timestamp, b.Txs, b.Index == 0)
		if err != nil {
			return nil, fmt.Errorf("replay block %d: %w", b.Index, err)
		}
		st = next
	}
	return st, nil
}

// Length returns the number of blocks in the chain, always >= 1.
func (l *Ledger) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// Block returns the block at the given index.
func (l *Ledger) Block(index int) (types.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.blocks) {
		return types.Block{}, false
	}
	return l.blocks[index], true
}

// Blocks returns a deep copy of the full chain, genesis first.
func (l *Ledger) Blocks() []types.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyBlocks(l.blocks)
}

func copyBlocks(blocks []types.Block) []types.Block {
	out := make([]types.Block, len(blocks))
	copy(out, blocks)
	for i := range out {
		txs := make([]types.Transaction, len(out[i].Txs))
		copy(txs, out[i].Txs)
		out[i].Txs = txs
	}
	return out
}

// Account returns the live account with the given address.
func (l *Ledger) Account(address string) (types.Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Account(address)
}

// AccountByUsername returns the live account with the given username.
func (l *Ledger) AccountByUsername(username string) (types.Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.AccountByUsername(username)
}

// Accounts returns all live accounts ordered by address.
func (l *Ledger) Accounts() []types.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Accounts()
}

// Asset returns the asset with the given id.
func (l *Ledger) Asset(id string) (types.Asset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Asset(id)
}

// Assets returns all assets ordered by id.
func (l *Ledger) Assets() []types.Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Assets()
}

// AssetsOwnedBy returns the assets owned by the given address.
func (l *Ledger) AssetsOwnedBy(address string) []types.Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.AssetsOwnedBy(address)
}

// AssetsForSale returns the assets currently listed on the market.
func (l *Ledger) AssetsForSale() []types.Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.AssetsForSale()
}

// Stats summarizes the ledger for dashboards.
type Stats struct {
	Accounts int `json:"accounts"`
	Assets   int `json:"assets"`
	Blocks   int `json:"blocks"`
}

// Stats returns current account, asset and block counts.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats{
		Accounts: len(l.state.accounts),
		Assets:   len(l.state.assets),
		Blocks:   len(l.blocks),
	}
}

// Export returns the full chain and state as a serializable snapshot.
func (l *Ledger) Export() types.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return types.Snapshot{
		Accounts: l.state.Accounts(),
		Assets:   l.state.Assets(),
		Chain:    copyBlocks(l.blocks),
	}
}

// FromSnapshot builds a ledger from a snapshot. The chain is verified and
// replayed before anything is accepted; the snapshot's stored projection
// must match the replayed state or the import is rejected.
func FromSnapshot(snap types.Snapshot) (*Ledger, error) {
	if len(snap.Chain) == 0 {
		return nil, fmt.Errorf("snapshot has no chain")
	}
	if err := verifyChain(snap.Chain); err != nil {
		return nil, fmt.Errorf("verify snapshot chain: %w", err)
	}
	st, err := replayChain(snap.Chain)
	if err != nil {
		return nil, err
	}
	stored := stateFromSnapshot(snap)
	if !st.Equal(stored) {
		return nil, fmt.Errorf("snapshot state does not match chain replay")
	}
	return &Ledger{blocks: copyBlocks(snap.Chain), state: st}, nil
}

// Import replaces the ledger's contents wholesale with a verified snapshot.
// On any failure the current in-memory ledger is untouched.
func (l *Ledger) Import(snap types.Snapshot) error {
	imported, err := FromSnapshot(snap)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blocks = imported.blocks
	l.state = imported.state
	return nil
}

func stateFromSnapshot(snap types.Snapshot) *State {
	st := NewState()
	for _, a := range snap.Accounts {
		st.accounts[a.Address] = a
		st.usernames[a.Username] = a.Address
	}
	for _, a := range snap.Assets {
		st.assets[a.ID] = a
	}
	return st
}
