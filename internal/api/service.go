// Package api implements the HTTP JSON boundary of the marketplace. Every
// mutating endpoint builds ledger transactions and submits them to Append;
// query endpoints read the resulting state. Handlers carry @Title/@Route
// comments consumed by cmd/docgen.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"assetmarket.mini/dam/internal/config"
	"assetmarket.mini/dam/internal/ledger"
	"assetmarket.mini/dam/internal/logger"
	"assetmarket.mini/dam/internal/snapshot"
	"assetmarket.mini/dam/internal/types"
)

// Persister saves ledger snapshots between appends. *snapshot.Store
// implements it; tests can substitute their own.
type Persister interface {
	Save(types.Snapshot) error
}

// Service handles API requests.
type Service struct {
	ledger *ledger.Ledger
	store  Persister
	logger *logger.Logger

	defaultBalance types.Amount
	faucetAmount   types.Amount

	// OnAppend is an optional callback invoked after every successful
	// append. The web server uses it to broadcast block events.
	OnAppend func(types.BlockRef)
}

// NewService creates a new API service. store may be nil when persistence
// is disabled (tests).
func NewService(l *ledger.Ledger, store Persister, log *logger.Logger, cfg *config.Config) (*Service, error) {
	defBal, err := types.ParseAmount(cfg.DefaultBalance)
	if err != nil {
		return nil, err
	}
	faucet, err := types.ParseAmount(cfg.FaucetAmount)
	if err != nil {
		return nil, err
	}
	return &Service{
		ledger:         l,
		store:          store,
		logger:         log,
		defaultBalance: defBal,
		faucetAmount:   faucet,
	}, nil
}

// writeJSON writes a JSON response
func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// append submits a batch, persists the snapshot and notifies listeners.
// On rejection it writes the error response and returns false.
func (s *Service) append(w http.ResponseWriter, txs []types.Transaction) (types.BlockRef, bool) {
	ref, err := s.ledger.Append(txs)
	if err != nil {
		s.logger.Warningf("batch rejected: %v", err)
		s.writeError(w, statusFor(err), err.Error())
		return types.BlockRef{}, false
	}
	if s.store != nil {
		if err := s.store.Save(s.ledger.Export()); err != nil {
			// The in-memory ledger is still authoritative.
			s.logger.Errorf("persist snapshot: %v", err)
		}
	}
	if s.OnAppend != nil {
		s.OnAppend(ref)
	}
	return ref, true
}

// statusFor maps applier errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnknownAccount), errors.Is(err, ledger.ErrUnknownAsset):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateAddress),
		errors.Is(err, ledger.ErrDuplicateUsername),
		errors.Is(err, ledger.ErrDuplicateAsset):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	default:
		return http.StatusBadRequest
	}
}

// sanitize strips the credential verifier before an account leaves the API.
func sanitize(a types.Account) types.Account {
	a.Credential = ""
	return a
}

func sanitizeAll(accounts []types.Account) []types.Account {
	out := make([]types.Account, len(accounts))
	for i, a := range accounts {
		out[i] = sanitize(a)
	}
	return out
}

var _ Persister = (*snapshot.Store)(nil)
