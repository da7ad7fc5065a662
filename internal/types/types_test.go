package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{"25.50", 2550, false},
		{"100", 10000, false},
		{"0.05", 5, false},
		{"0", 0, false},
		{" 12.30 ", 1230, false},
		{"-3.25", -325, false},
		{"1.234", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAmountString(t *testing.T) {
	if got := Amount(2550).String(); got != "25.50" {
		t.Errorf("Amount(2550).String() = %q, want \"25.50\"", got)
	}
	if got := Amount(5).String(); got != "0.05" {
		t.Errorf("Amount(5).String() = %q, want \"0.05\"", got)
	}
	if got := Amount(0).String(); got != "0.00" {
		t.Errorf("Amount(0).String() = %q, want \"0.00\"", got)
	}
}

func TestNewAddress(t *testing.T) {
	addr := NewAddress("alice")
	if !strings.HasPrefix(addr, "0xALIC") {
		t.Errorf("address %q should start with 0xALIC", addr)
	}
	if NewAddress("alice") == NewAddress("alice") {
		t.Errorf("two addresses for the same username collided")
	}
	if short := NewAddress("al"); !strings.HasPrefix(short, "0xAL") {
		t.Errorf("short username address %q should start with 0xAL", short)
	}
}

func TestNewAssetID(t *testing.T) {
	id := NewAssetID()
	if !strings.HasPrefix(id, "asset_") {
		t.Errorf("asset id %q should start with asset_", id)
	}
	if NewAssetID() == NewAssetID() {
		t.Errorf("asset ids collided")
	}
}

// A serialized transaction must carry only its variant's fields, so the
// canonical block encoding stays compact and stable.
func TestTransactionJSONOmitsUnsetFields(t *testing.T) {
	tx := Transaction{Type: TxFaucet, To: "0xA", Amount: 5000}
	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	if got != `{"type":"FAUCET","to":"0xA","amount":5000}` {
		t.Errorf("unexpected encoding: %s", got)
	}
}

func TestGenesisTransactionEncoding(t *testing.T) {
	data, err := json.Marshal(Transaction{Type: TxGenesis})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"type":"GENESIS"}` {
		t.Errorf("unexpected encoding: %s", data)
	}
}
