package api

import (
	"encoding/json"
	"net/http"

	"assetmarket.mini/dam/internal/ledger"
	"assetmarket.mini/dam/internal/types"
)

// @Title: Get Assets
// @Route: GET /api/assets?owner=0x...&forSale=true
// @Description: List assets, optionally filtered by owner or for-sale status
// @Response: Array of Asset objects
func (s *Service) HandleAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("owner") != "":
		s.writeJSON(w, http.StatusOK, s.ledger.AssetsOwnedBy(q.Get("owner")))
	case q.Get("forSale") == "true":
		s.writeJSON(w, http.StatusOK, s.ledger.AssetsForSale())
	default:
		s.writeJSON(w, http.StatusOK, s.ledger.Assets())
	}
}

// @Title: Mint Asset
// @Route: POST /api/assets/mint
// @Description: Mint a new asset owned by the minter
// @Response: Asset object
func (s *Service) HandleMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Minter   string `json:"minter"`
		Name     string `json:"name"`
		Desc     string `json:"desc"`
		Image    string `json:"image"`
		Category string `json:"category"`
		Rarity   string `json:"rarity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "Asset name is required")
		return
	}
	if req.Category == "" {
		req.Category = types.CategoryArt
	}
	if req.Rarity == "" {
		req.Rarity = types.RarityCommon
	}

	id := types.NewAssetID()
	if _, ok := s.append(w, []types.Transaction{
		ledger.NewMintTx(req.Minter, id, req.Name, req.Desc, req.Image, req.Category, req.Rarity),
	}); !ok {
		return
	}
	s.logger.Infof("minted %s (%q) for %s", id, req.Name, req.Minter)

	asset, _ := s.ledger.Asset(id)
	s.writeJSON(w, http.StatusCreated, asset)
}

// @Title: List Asset
// @Route: POST /api/assets/list
// @Description: Put an owned asset up for sale at a price
// @Response: Asset object
func (s *Service) HandleListAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Seller  string `json:"seller"`
		AssetID string `json:"assetId"`
		Price   string `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	price, err := types.ParseAmount(req.Price)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := s.append(w, []types.Transaction{
		ledger.NewListTx(req.Seller, req.AssetID, price),
	}); !ok {
		return
	}
	s.logger.Infof("listed %s at %s", req.AssetID, price)

	asset, _ := s.ledger.Asset(req.AssetID)
	s.writeJSON(w, http.StatusOK, asset)
}

// @Title: Delist Asset
// @Route: POST /api/assets/delist
// @Description: Take an owned asset off the market
// @Response: Asset object
func (s *Service) HandleDelistAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Seller  string `json:"seller"`
		AssetID string `json:"assetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, ok := s.append(w, []types.Transaction{
		ledger.NewDelistTx(req.Seller, req.AssetID),
	}); !ok {
		return
	}
	s.logger.Infof("delisted %s", req.AssetID)

	asset, _ := s.ledger.Asset(req.AssetID)
	s.writeJSON(w, http.StatusOK, asset)
}

// @Title: Buy Asset
// @Route: POST /api/assets/buy
// @Description: Buy a listed asset at its listed price
// @Response: Asset object with the new owner
func (s *Service) HandleBuy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Buyer   string `json:"buyer"`
		AssetID string `json:"assetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The agreed price is the listed price at the time the buy is built.
	asset, ok := s.ledger.Asset(req.AssetID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	if _, ok := s.append(w, []types.Transaction{
		ledger.NewBuyTx(req.Buyer, asset.Owner, asset.ID, asset.Price),
	}); !ok {
		return
	}
	s.logger.Infof("sold %s to %s for %s", asset.ID, req.Buyer, asset.Price)

	sold, _ := s.ledger.Asset(req.AssetID)
	s.writeJSON(w, http.StatusOK, sold)
}

// @Title: Transfer Asset
// @Route: POST /api/assets/transfer
// @Description: Transfer an owned asset to another account without payment
// @Response: Asset object with the new owner
func (s *Service) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		From    string `json:"from"`
		To      string `json:"to"`
		AssetID string `json:"assetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, ok := s.append(w, []types.Transaction{
		ledger.NewTransferTx(req.From, req.To, req.AssetID),
	}); !ok {
		return
	}
	s.logger.Infof("transferred %s from %s to %s", req.AssetID, req.From, req.To)

	asset, _ := s.ledger.Asset(req.AssetID)
	s.writeJSON(w, http.StatusOK, asset)
}

// @Title: Burn Asset
// @Route: POST /api/assets/burn
// @Description: Permanently remove an asset
// @Response: BlockRef of the recorded batch
func (s *Service) HandleBurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Owner   string `json:"owner"`
		AssetID string `json:"assetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ref, ok := s.append(w, []types.Transaction{
		ledger.NewBurnTx(req.Owner, req.AssetID),
	})
	if !ok {
		return
	}
	s.logger.Infof("burned %s", req.AssetID)
	s.writeJSON(w, http.StatusOK, ref)
}
