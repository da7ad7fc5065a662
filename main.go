// Package main is the entry point for the digital asset marketplace ledger
// (dam). It loads the latest persisted snapshot, seeds demo accounts on a
// fresh chain, and serves the HTTP API.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"assetmarket.mini/dam/internal/auth"
	"assetmarket.mini/dam/internal/config"
	"assetmarket.mini/dam/internal/ledger"
	"assetmarket.mini/dam/internal/snapshot"
	"assetmarket.mini/dam/internal/types"
	"assetmarket.mini/dam/internal/web"
)

func main() {
	log.Println("dam starting...")

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := snapshot.NewStore(cfg.DBFile)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer store.Close()

	l, fresh, err := openLedger(store)
	if err != nil {
		log.Fatalf("Failed to initialize ledger: %v", err)
	}
	log.Printf("Ledger ready: %d block(s)", l.Length())

	if fresh && cfg.SeedDemoAccounts {
		if err := seedDemoAccounts(l, cfg); err != nil {
			log.Printf("Warning: failed to seed demo accounts: %v", err)
		} else if err := store.Save(l.Export()); err != nil {
			log.Printf("Warning: failed to persist seeded state: %v", err)
		}
	}

	port := resolvePort(cfg.Port)
	if err := ensurePortAvailable(port); err != nil {
		log.Fatalf("Port %d unavailable: %v", port, err)
	}
	cfg.Port = port

	server, err := web.NewServer(l, store, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize web server: %v", err)
	}

	serverErrors := server.Start()
	go func() {
		if err := <-serverErrors; err != nil {
			log.Fatalf("Web server exited: %v", err)
		}
	}()
	log.Printf("Marketplace API available at http://localhost:%d", port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Warning: shutdown: %v", err)
	}
	if err := store.Save(l.Export()); err != nil {
		log.Printf("Warning: final snapshot save failed: %v", err)
	}
}

// openLedger restores the ledger from the most recent snapshot, falling
// back to a fresh genesis-only chain. A snapshot that fails verification
// is rejected rather than silently repaired.
func openLedger(store *snapshot.Store) (*ledger.Ledger, bool, error) {
	snap, ok, err := store.LoadLatest()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return ledger.New(), true, nil
	}
	l, err := ledger.FromSnapshot(snap)
	if err != nil {
		return nil, false, fmt.Errorf("stored snapshot rejected: %w", err)
	}
	return l, false, nil
}

// seedDemoAccounts creates the demo accounts on a brand-new chain. Their
// passwords are username + "123", demo only.
func seedDemoAccounts(l *ledger.Ledger, cfg *config.Config) error {
	balance, err := types.ParseAmount(cfg.DefaultBalance)
	if err != nil {
		return err
	}

	var txs []types.Transaction
	for _, username := range []string{"alice", "bob", "cara"} {
		credential, err := auth.NewCredential(username + "123")
		if err != nil {
			return err
		}
		txs = append(txs, ledger.NewCreateAccountTx(types.NewAddress(username), username, credential, balance))
	}
	if _, err := l.Append(txs); err != nil {
		return err
	}
	log.Println("Seeded demo accounts: alice, bob, cara")
	return nil
}

// resolvePort prefers the PORT env var over the configured port.
func resolvePort(def int) int {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			return p
		}
		log.Printf("Warning: ignoring invalid PORT=%q", v)
	}
	return def
}

// ensurePortAvailable fails fast when something else already listens.
func ensurePortAvailable(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	return ln.Close()
}
