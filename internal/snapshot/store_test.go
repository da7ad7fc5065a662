package snapshot

import (
	"path/filepath"
	"testing"

	"assetmarket.mini/dam/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot(balance types.Amount) types.Snapshot {
	return types.Snapshot{
		Accounts: []types.Account{{Address: "0xA", Username: "alice", Balance: balance}},
		Assets:   []types.Asset{{ID: "asset_1", Name: "Idol", Owner: "0xA"}},
		Chain: []types.Block{{
			Index:     0,
			Timestamp: "2026-02-01T10:30:00Z",
			Txs:       []types.Transaction{{Type: types.TxGenesis}},
			PrevHash:  types.GenesisPrevHash,
			Hash:      "deadbeef",
		}},
	}
}

func TestSaveAndLoadLatest(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.LoadLatest(); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	if err := s.Save(sampleSnapshot(100)); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := s.Save(sampleSnapshot(250)); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	snap, ok, err := s.LoadLatest()
	if err != nil || !ok {
		t.Fatalf("LoadLatest: ok=%v err=%v", ok, err)
	}
	if snap.Accounts[0].Balance != 250 {
		t.Errorf("got balance %d, want the most recent snapshot (250)", snap.Accounts[0].Balance)
	}
	if len(snap.Chain) != 1 || snap.Chain[0].PrevHash != types.GenesisPrevHash {
		t.Errorf("chain did not round-trip: %+v", snap.Chain)
	}
}

func TestRetentionPrunesOldSnapshots(t *testing.T) {
	s := newTestStore(t)
	s.keep = 3

	for i := 0; i < 10; i++ {
		if err := s.Save(sampleSnapshot(types.Amount(i))); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 3 {
		t.Errorf("retained %d snapshots, want 3", n)
	}

	snap, ok, err := s.LoadLatest()
	if err != nil || !ok {
		t.Fatalf("LoadLatest: ok=%v err=%v", ok, err)
	}
	if snap.Accounts[0].Balance != 9 {
		t.Errorf("latest snapshot has balance %d, want 9", snap.Accounts[0].Balance)
	}
}

func TestStoreReopens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	if err := s.Save(sampleSnapshot(42)); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	snap, ok, err := reopened.LoadLatest()
	if err != nil || !ok {
		t.Fatalf("LoadLatest after reopen: ok=%v err=%v", ok, err)
	}
	if snap.Accounts[0].Balance != 42 {
		t.Errorf("got balance %d after reopen, want 42", snap.Accounts[0].Balance)
	}
}
