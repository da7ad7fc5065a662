package api

import (
	"encoding/json"
	"net/http"

	"assetmarket.mini/dam/internal/auth"
	"assetmarket.mini/dam/internal/ledger"
	"assetmarket.mini/dam/internal/types"
)

// @Title: Get All Accounts
// @Route: GET /api/accounts
// @Description: List all live accounts, credential verifiers stripped
// @Response: Array of Account objects
func (s *Service) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, sanitizeAll(s.ledger.Accounts()))
}

// @Title: Get Account
// @Route: GET /api/accounts/get?address=0x...
// @Description: Get a single account by address
// @Response: Account object
func (s *Service) HandleAccount(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	acct, ok := s.ledger.Account(address)
	if !ok {
		s.writeError(w, http.StatusNotFound, "account not found")
		return
	}
	s.writeJSON(w, http.StatusOK, sanitize(acct))
}

// @Title: Create Account
// @Route: POST /api/accounts/create
// @Description: Create a new account with a username, password and optional starting balance
// @Response: Account object
func (s *Service) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Balance  string `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	balance := s.defaultBalance
	if req.Balance != "" {
		b, err := types.ParseAmount(req.Balance)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		balance = b
	}

	credential, err := auth.NewCredential(req.Password)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	address := types.NewAddress(req.Username)
	if _, ok := s.append(w, []types.Transaction{
		ledger.NewCreateAccountTx(address, req.Username, credential, balance),
	}); !ok {
		return
	}
	s.logger.Infof("account created: %s (%s)", address, req.Username)

	acct, _ := s.ledger.Account(address)
	s.writeJSON(w, http.StatusCreated, sanitize(acct))
}

// @Title: Delete Account
// @Route: POST /api/accounts/delete
// @Description: Delete an account; owned assets are burned, or transferred when a recipient is given
// @Response: BlockRef of the recorded batch
func (s *Service) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Address   string `json:"address"`
		Recipient string `json:"recipient"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acct, ok := s.ledger.Account(req.Address)
	if !ok {
		s.writeError(w, http.StatusNotFound, "account not found")
		return
	}

	// Resolve owned assets inside the same batch so the delete is atomic
	// with their disposal.
	var txs []types.Transaction
	for _, a := range s.ledger.AssetsOwnedBy(req.Address) {
		if req.Recipient != "" {
			txs = append(txs, ledger.NewTransferTx(req.Address, req.Recipient, a.ID))
		} else {
			txs = append(txs, ledger.NewBurnTx(req.Address, a.ID))
		}
	}
	txs = append(txs, ledger.NewDeleteAccountTx(acct.Address, acct.Username))

	ref, ok := s.append(w, txs)
	if !ok {
		return
	}
	s.logger.Infof("account deleted: %s (%s)", acct.Address, acct.Username)
	s.writeJSON(w, http.StatusOK, ref)
}

// @Title: Faucet
// @Route: POST /api/accounts/faucet
// @Description: Grant the configured faucet amount to an account
// @Response: Updated Account object
func (s *Service) HandleFaucet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, ok := s.append(w, []types.Transaction{
		ledger.NewFaucetTx(req.Address, s.faucetAmount),
	}); !ok {
		return
	}
	s.logger.Infof("faucet: %s +%s", req.Address, s.faucetAmount)

	acct, _ := s.ledger.Account(req.Address)
	s.writeJSON(w, http.StatusOK, sanitize(acct))
}

// @Title: Login
// @Route: POST /api/auth/login
// @Description: Check a username/password pair against the stored credential verifier
// @Response: Account object on success
func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acct, ok := s.ledger.AccountByUsername(req.Username)
	if !ok || !auth.Verify(acct.Credential, req.Password) {
		s.logger.Warningf("failed login for %q", req.Username)
		s.writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	s.logger.Infof("login: %s", acct.Address)
	s.writeJSON(w, http.StatusOK, sanitize(acct))
}
