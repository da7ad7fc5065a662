package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"assetmarket.mini/dam/internal/config"
	"assetmarket.mini/dam/internal/ledger"
	"assetmarket.mini/dam/internal/logger"
	"assetmarket.mini/dam/internal/types"
)

// memoryPersister records snapshot saves so tests can assert persistence
// happened without touching SQLite.
type memoryPersister struct {
	saves int
	last  types.Snapshot
}

func (m *memoryPersister) Save(snap types.Snapshot) error {
	m.saves++
	m.last = snap
	return nil
}

func setupTest(t *testing.T) (*Service, *memoryPersister) {
	t.Helper()
	cfg, _ := config.LoadConfig("")
	store := &memoryPersister{}
	svc, err := NewService(ledger.New(), store, logger.New(cfg.LogBuffer), cfg)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc, store
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func getJSON(t *testing.T, handler http.HandlerFunc, path string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if out != nil {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// createAccount registers an account through the API and returns it.
func createAccount(t *testing.T, svc *Service, username, password, balance string) types.Account {
	t.Helper()
	w := postJSON(t, svc.HandleCreateAccount, "/api/accounts/create", map[string]string{
		"username": username,
		"password": password,
		"balance":  balance,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create account %q: status %d body %s", username, w.Code, w.Body.String())
	}
	var acct types.Account
	decode(t, w, &acct)
	return acct
}

// mintAsset mints an asset for the owner and returns it.
func mintAsset(t *testing.T, svc *Service, minter, name string) types.Asset {
	t.Helper()
	w := postJSON(t, svc.HandleMint, "/api/assets/mint", map[string]string{
		"minter": minter,
		"name":   name,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("mint %q: status %d body %s", name, w.Code, w.Body.String())
	}
	var asset types.Asset
	decode(t, w, &asset)
	return asset
}
