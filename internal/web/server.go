// Package web wires the HTTP surface of dam: the JSON API, the rendered
// operator docs and a websocket feed that notifies dashboard clients when a
// block is appended. Rendering the dashboard itself is left to the client.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"assetmarket.mini/dam/internal/api"
	"assetmarket.mini/dam/internal/config"
	"assetmarket.mini/dam/internal/docs"
	"assetmarket.mini/dam/internal/ledger"
	"assetmarket.mini/dam/internal/logger"
	"assetmarket.mini/dam/internal/types"
)

// Server is the HTTP server for the marketplace API.
type Server struct {
	port       int
	apiService *api.Service
	docService *docs.Service
	logger     *logger.Logger
	broker     *wsBroker
	httpServer *http.Server
}

// NewServer creates a new web server around a ledger and snapshot store.
func NewServer(l *ledger.Ledger, store api.Persister, cfg *config.Config) (*Server, error) {
	activity := logger.New(cfg.LogBuffer)
	apiService, err := api.NewService(l, store, activity, cfg)
	if err != nil {
		return nil, fmt.Errorf("create api service: %w", err)
	}

	s := &Server{
		port:       cfg.Port,
		apiService: apiService,
		docService: docs.NewService(cfg.DocsDir),
		logger:     activity,
		broker:     newWSBroker(),
	}

	// Push every appended block to connected dashboards.
	apiService.OnAppend = func(ref types.BlockRef) {
		data, _ := json.Marshal(map[string]interface{}{
			"event": "block_appended",
			"index": ref.Index,
			"hash":  ref.Hash,
		})
		s.broker.broadcast(data)
	}

	activity.Infof("dam server initialized")
	return s, nil
}

// Start begins serving in the background and returns a channel that
// receives the terminal server error, if any.
func (s *Server) Start() <-chan error {
	mux := http.NewServeMux()

	// Accounts and auth
	mux.HandleFunc("/api/accounts", s.apiService.HandleAccounts)
	mux.HandleFunc("/api/accounts/get", s.apiService.HandleAccount)
	mux.HandleFunc("/api/accounts/create", s.apiService.HandleCreateAccount)
	mux.HandleFunc("/api/accounts/delete", s.apiService.HandleDeleteAccount)
	mux.HandleFunc("/api/accounts/faucet", s.apiService.HandleFaucet)
	mux.HandleFunc("/api/auth/login", s.apiService.HandleLogin)

	// Assets and market
	mux.HandleFunc("/api/assets", s.apiService.HandleAssets)
	mux.HandleFunc("/api/assets/mint", s.apiService.HandleMint)
	mux.HandleFunc("/api/assets/list", s.apiService.HandleListAsset)
	mux.HandleFunc("/api/assets/delist", s.apiService.HandleDelistAsset)
	mux.HandleFunc("/api/assets/buy", s.apiService.HandleBuy)
	mux.HandleFunc("/api/assets/transfer", s.apiService.HandleTransfer)
	mux.HandleFunc("/api/assets/burn", s.apiService.HandleBurn)

	// Chain and snapshots
	mux.HandleFunc("/api/chain", s.apiService.HandleChain)
	mux.HandleFunc("/api/chain/block", s.apiService.HandleBlock)
	mux.HandleFunc("/api/chain/verify", s.apiService.HandleVerify)
	mux.HandleFunc("/api/stats", s.apiService.HandleStats)
	mux.HandleFunc("/api/snapshot/export", s.apiService.HandleExport)
	mux.HandleFunc("/api/snapshot/import", s.apiService.HandleImport)
	mux.HandleFunc("/api/logs", s.apiService.HandleLogs)
	mux.HandleFunc("/api/health", s.apiService.HandleHealth)

	// Docs and events
	mux.HandleFunc("/docs", s.handleDocs)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()
	return errs
}

// Shutdown stops the HTTP server and drops websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broker.closeAll()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleWS upgrades the connection and keeps it registered until the
// client goes away. Clients only receive; inbound messages are discarded.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	s.broker.register(conn)
	go func() {
		defer s.broker.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// handleDocs renders an asciidoc manual page to HTML.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("doc")
	if name == "" {
		s.writeDocList(w)
		return
	}
	html, err := s.docService.GetDoc(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func (s *Server) writeDocList(w http.ResponseWriter) {
	list, err := s.docService.ListDocs()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}
