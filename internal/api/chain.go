package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"assetmarket.mini/dam/internal/ledger"
	"assetmarket.mini/dam/internal/types"
)

// @Title: Get Chain
// @Route: GET /api/chain
// @Description: Get the full block chain, genesis first
// @Response: Array of Block objects
func (s *Service) HandleChain(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ledger.Blocks())
}

// @Title: Get Block
// @Route: GET /api/chain/block?index=N
// @Description: Get a single block by index
// @Response: Block object
func (s *Service) HandleBlock(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid block index")
		return
	}
	block, ok := s.ledger.Block(index)
	if !ok {
		s.writeError(w, http.StatusNotFound, "block not found")
		return
	}
	s.writeJSON(w, http.StatusOK, block)
}

// @Title: Verify Chain
// @Route: GET /api/chain/verify
// @Description: Recompute every block hash and check the previous-hash linkage
// @Response: {"ok": true} or the index of the first broken link
func (s *Service) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Verify(); err != nil {
		var broken *ledger.BrokenLinkError
		if errors.As(err, &broken) {
			s.logger.Errorf("chain verification failed at block %d", broken.Index)
			s.writeJSON(w, http.StatusConflict, map[string]interface{}{
				"ok":    false,
				"index": broken.Index,
				"error": err.Error(),
			})
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// @Title: Get Stats
// @Route: GET /api/stats
// @Description: Account, asset and block counts for the dashboard
// @Response: Stats object
func (s *Service) HandleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ledger.Stats())
}

// @Title: Export Snapshot
// @Route: GET /api/snapshot/export
// @Description: Export the full chain and state as a snapshot document
// @Response: Snapshot object
func (s *Service) HandleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="dam_state.json"`)
	s.writeJSON(w, http.StatusOK, s.ledger.Export())
}

// @Title: Import Snapshot
// @Route: POST /api/snapshot/import
// @Description: Replace the ledger wholesale with a snapshot after verifying its chain
// @Response: Stats object for the imported ledger
func (s *Service) HandleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var snap types.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid snapshot document")
		return
	}

	// Import verifies and replays before replacing anything; a failed
	// import leaves the in-memory ledger untouched.
	if err := s.ledger.Import(snap); err != nil {
		s.logger.Errorf("snapshot import rejected: %v", err)
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Infof("snapshot imported: %d blocks", s.ledger.Length())

	if s.store != nil {
		if err := s.store.Save(s.ledger.Export()); err != nil {
			s.logger.Errorf("persist imported snapshot: %v", err)
		}
	}
	s.writeJSON(w, http.StatusOK, s.ledger.Stats())
}

// @Title: Get Activity Log
// @Route: GET /api/logs?n=50
// @Description: Recent marketplace activity, newest first
// @Response: Array of log messages
func (s *Service) HandleLogs(w http.ResponseWriter, r *http.Request) {
	n := 50
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid message count")
			return
		}
		n = parsed
	}
	s.writeJSON(w, http.StatusOK, s.logger.Recent(n))
}

// @Title: Health
// @Route: GET /api/health
// @Description: Service version and chain length
// @Response: Health object
func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":   types.Version,
		"buildTime": types.BuildTime,
		"blocks":    s.ledger.Length(),
	})
}
