package ledger

import (
	"errors"
	"testing"

	"assetmarket.mini/dam/internal/types"
)

func mustAppend(t *testing.T, l *Ledger, txs ...types.Transaction) types.BlockRef {
	t.Helper()
	ref, err := l.Append(txs)
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	return ref
}

func coins(t *testing.T, s string) types.Amount {
	t.Helper()
	a, err := types.ParseAmount(s)
	if err != nil {
		t.Fatalf("parse amount %q: %v", s, err)
	}
	return a
}

func TestGenesisInitialization(t *testing.T) {
	l := New()

	if l.Length() != 1 {
		t.Fatalf("expected genesis-only chain, got length %d", l.Length())
	}
	genesis, ok := l.Block(0)
	if !ok {
		t.Fatalf("genesis block missing")
	}
	if genesis.PrevHash != types.GenesisPrevHash {
		t.Errorf("genesis prevHash = %q, want %q", genesis.PrevHash, types.GenesisPrevHash)
	}
	if len(genesis.Txs) != 1 || genesis.Txs[0].Type != types.TxGenesis {
		t.Errorf("genesis block should hold a single GENESIS tx, got %+v", genesis.Txs)
	}
	if genesis.Hash != BlockHash(genesis) {
		t.Errorf("genesis hash does not match its content")
	}
	if err := l.Verify(); err != nil {
		t.Errorf("fresh chain failed verification: %v", err)
	}
}

// The marketplace scenario: create A with 100, mint and list an asset at
// 25, create B with 100, B buys. Balances and ownership must come out
// exactly and the chain must grow by 4 blocks past genesis.
func TestMarketplaceScenario(t *testing.T) {
	l := New()

	mustAppend(t, l, NewCreateAccountTx("0xA11CE", "alice", "", coins(t, "100.00")))
	mustAppend(t, l, NewMintTx("0xA11CE", "asset_1", "Sunset", "oil on canvas", "", types.CategoryArt, types.RarityRare))
	mustAppend(t, l, NewListTx("0xA11CE", "asset_1", coins(t, "25.00")))
	mustAppend(t, l, NewCreateAccountTx("0xB0B", "bob", "", coins(t, "100.00")))
	mustAppend(t, l, NewBuyTx("0xB0B", "0xA11CE", "asset_1", coins(t, "25.00")))

	if l.Length() != 6 {
		t.Fatalf("chain length = %d, want 6 (genesis + 5)", l.Length())
	}

	alice, _ := l.Account("0xA11CE")
	if alice.Balance != coins(t, "125.00") {
		t.Errorf("alice balance = %s, want 125.00", alice.Balance)
	}
	bob, _ := l.Account("0xB0B")
	if bob.Balance != coins(t, "75.00") {
		t.Errorf("bob balance = %s, want 75.00", bob.Balance)
	}
	asset, _ := l.Asset("asset_1")
	if asset.Owner != "0xB0B" {
		t.Errorf("asset owner = %s, want 0xB0B", asset.Owner)
	}
	if asset.ForSale {
		t.Errorf("asset still for sale after purchase")
	}
	if err := l.Verify(); err != nil {
		t.Errorf("chain failed verification: %v", err)
	}
}

func TestAppendRejectionLeavesLedgerUnchanged(t *testing.T) {
	l := New()
	mustAppend(t, l, NewCreateAccountTx("0xA", "alice", "", coins(t, "10.00")))
	mustAppend(t, l, NewCreateAccountTx("0xB", "bob", "", coins(t, "100.00")))
	mustAppend(t, l, NewMintTx("0xB", "asset_1", "Relic", "", "", types.CategoryOther, types.RarityEpic))
	mustAppend(t, l, NewListTx("0xB", "asset_1", coins(t, "25.00")))

	lengthBefore := l.Length()

	// A batch mixing one valid and one invalid tx must have no effect.
	_, err := l.Append([]types.Transaction{
		NewFaucetTx("0xA", coins(t, "50.00")),
		NewBuyTx("0xA", "0xB", "asset_1", coins(t, "25.00")),
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if l.Length() != lengthBefore {
		t.Errorf("chain grew on a rejected batch: %d -> %d", lengthBefore, l.Length())
	}
	a, _ := l.Account("0xA")
	if a.Balance != coins(t, "10.00") {
		t.Errorf("balance changed on rejected batch: %s", a.Balance)
	}
	asset, _ := l.Asset("asset_1")
	if asset.Owner != "0xB" || !asset.ForSale {
		t.Errorf("asset changed on rejected batch: %+v", asset)
	}
}

func TestIntraBatchOrdering(t *testing.T) {
	l := New()
	mustAppend(t, l, NewCreateAccountTx("0xA", "alice", "", coins(t, "100.00")))
	mustAppend(t, l, NewCreateAccountTx("0xB", "bob", "", coins(t, "100.00")))
	mustAppend(t, l, NewMintTx("0xA", "asset_1", "Orb", "", "", types.CategoryGame, types.RarityLegendary))

	// A LIST followed by a BUY in the same batch is legal: the BUY
	// observes the LIST's effect.
	mustAppend(t, l,
		NewListTx("0xA", "asset_1", coins(t, "10.00")),
		NewBuyTx("0xB", "0xA", "asset_1", coins(t, "10.00")),
	)

	asset, _ := l.Asset("asset_1")
	if asset.Owner != "0xB" {
		t.Errorf("asset owner = %s, want 0xB", asset.Owner)
	}
}

func TestGenesisTxRejectedAfterBlockZero(t *testing.T) {
	l := New()
	_, err := l.Append([]types.Transaction{NewGenesisTx()})
	if !errors.Is(err, ErrUnexpectedGenesis) {
		t.Fatalf("expected ErrUnexpectedGenesis, got %v", err)
	}
}

func TestReplayMatchesLiveState(t *testing.T) {
	l := New()
	mustAppend(t, l, NewCreateAccountTx("0xA", "alice", "cred-a", coins(t, "100.00")))
	mustAppend(t, l, NewCreateAccountTx("0xB", "bob", "cred-b", coins(t, "40.00")))
	mustAppend(t, l, NewMintTx("0xA", "asset_1", "Mask", "", "", types.CategoryCollectible, types.RarityCommon))
	mustAppend(t, l, NewListTx("0xA", "asset_1", coins(t, "12.50")))
	mustAppend(t, l, NewBuyTx("0xB", "0xA", "asset_1", coins(t, "12.50")))
	mustAppend(t, l, NewFaucetTx("0xB", coins(t, "50.00")))
	mustAppend(t, l, NewBurnTx("0xB", "asset_1"))

	replayed, err := l.Replay()
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	live := stateFromSnapshot(l.Export())
	if !replayed.Equal(live) {
		t.Errorf("replayed state differs from live state")
	}
}

func TestVerifyDetectsTamperedBlock(t *testing.T) {
	l := New()
	mustAppend(t, l, NewCreateAccountTx("0xA", "alice", "", coins(t, "100.00")))
	mustAppend(t, l, NewFaucetTx("0xA", coins(t, "50.00")))
	mustAppend(t, l, NewFaucetTx("0xA", coins(t, "50.00")))

	if err := l.Verify(); err != nil {
		t.Fatalf("untampered chain failed verification: %v", err)
	}

	// Tamper with block 2's transactions post-hoc.
	snap := l.Export()
	snap.Chain[2].Txs[0].Amount = coins(t, "5000.00")

	err := verifyChain(snap.Chain)
	var broken *BrokenLinkError
	if !errors.As(err, &broken) {
		t.Fatalf("expected BrokenLinkError, got %v", err)
	}
	if broken.Index != 2 {
		t.Errorf("broken link index = %d, want 2", broken.Index)
	}
}

func TestVerifyDetectsBrokenLinkage(t *testing.T) {
	l := New()
	mustAppend(t, l, NewCreateAccountTx("0xA", "alice", "", coins(t, "100.00")))
	mustAppend(t, l, NewFaucetTx("0xA", coins(t, "50.00")))

	snap := l.Export()
	snap.Chain[2].PrevHash = "0000000000000000"
	// Rehash so only the linkage is wrong, not the block's own digest.
	snap.Chain[2].Hash = BlockHash(snap.Chain[2])

	err := verifyChain(snap.Chain)
	var broken *BrokenLinkError
	if !errors.As(err, &broken) {
		t.Fatalf("expected BrokenLinkError, got %v", err)
	}
	if broken.Index != 2 {
		t.Errorf("broken link index = %d, want 2", broken.Index)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := New()
	mustAppend(t, l, NewCreateAccountTx("0xA", "alice", "cred", coins(t, "100.00")))
	mustAppend(t, l, NewMintTx("0xA", "asset_1", "Coin", "", "", types.CategoryOther, types.RarityCommon))
	mustAppend(t, l, NewListTx("0xA", "asset_1", coins(t, "3.00")))

	imported, err := FromSnapshot(l.Export())
	if err != nil {
		t.Fatalf("import of exported snapshot failed: %v", err)
	}
	if imported.Length() != l.Length() {
		t.Errorf("imported length = %d, want %d", imported.Length(), l.Length())
	}
	if err := imported.Verify(); err != nil {
		t.Errorf("imported chain failed verification: %v", err)
	}
	if !imported.state.Equal(l.state) {
		t.Errorf("imported state differs from original")
	}
}

func TestImportFailureLeavesLedgerUntouched(t *testing.T) {
	l := New()
	mustAppend(t, l, NewCreateAccountTx("0xA", "alice", "", coins(t, "100.00")))
	lengthBefore := l.Length()

	bad := l.Export()
	bad.Chain[1].Txs[0].Balance = coins(t, "999.00")

	if err := l.Import(bad); err == nil {
		t.Fatalf("expected import of tampered snapshot to fail")
	}
	if l.Length() != lengthBefore {
		t.Errorf("ledger changed after failed import")
	}
	a, ok := l.Account("0xA")
	if !ok || a.Balance != coins(t, "100.00") {
		t.Errorf("state changed after failed import: %+v", a)
	}
}

func TestImportRejectsMismatchedProjection(t *testing.T) {
	l := New()
	mustAppend(t, l, NewCreateAccountTx("0xA", "alice", "", coins(t, "100.00")))

	snap := l.Export()
	snap.Accounts[0].Balance = coins(t, "1.00") // stored projection lies

	if err := l.Import(snap); err == nil {
		t.Fatalf("expected mismatched projection to be rejected")
	}
}
