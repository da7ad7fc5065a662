package ledger

import (
	"fmt"
	"time"

	"assetmarket.mini/dam/internal/types"
)

// applyBatch runs the state-transition function over an ordered batch. It
// validates and applies against a clone of st, so the caller's state is
// untouched unless every transaction succeeds: the batch is all-or-nothing.
// Transactions apply left to right; a later transaction observes the
// effects of earlier ones in the same batch. blockTime is the enclosing
// block's timestamp and genesis permits the GENESIS variant (block 0 only).
func applyBatch(st *State, blockTime string, txs []types.Transaction, genesis bool) (*State, error) {
	if len(txs) == 0 {
		return nil, ErrEmptyBatch
	}
	next := st.clone()
	for i, tx := range txs {
		if err := applyTx(next, blockTime, tx, genesis); err != nil {
			return nil, fmt.Errorf("tx %d (%s): %w", i, tx.Type, err)
		}
	}
	return next, nil
}

func applyTx(st *State, blockTime string, tx types.Transaction, genesis bool) error {
	switch tx.Type {
	case types.TxCreateAccount:
		return applyCreateAccount(st, tx)
	case types.TxDeleteAccount:
		return applyDeleteAccount(st, tx)
	case types.TxMint:
		return applyMint(st, blockTime, tx)
	case types.TxList:
		return applyList(st, tx)
	case types.TxDelist:
		return applyDelist(st, tx)
	case types.TxBuy:
		return applyBuy(st, tx)
	case types.TxTransfer:
		return applyTransfer(st, tx)
	case types.TxBurn:
		return applyBurn(st, tx)
	case types.TxFaucet:
		return applyFaucet(st, tx)
	case types.TxGenesis:
		if !genesis {
			return ErrUnexpectedGenesis
		}
		// Marks the chain start, no state effect.
		return nil
	default:
		return fmt.Errorf("unknown transaction type %q", tx.Type)
	}
}

func applyCreateAccount(st *State, tx types.Transaction) error {
	if _, ok := st.accounts[tx.Address]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAddress, tx.Address)
	}
	if _, ok := st.usernames[tx.Username]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUsername, tx.Username)
	}
	if tx.Balance < 0 {
		return fmt.Errorf("%w: starting balance %s", ErrInvalidAmount, tx.Balance)
	}
	st.accounts[tx.Address] = types.Account{
		Address:    tx.Address,
		Username:   tx.Username,
		Credential: tx.Credential,
		Balance:    tx.Balance,
	}
	st.usernames[tx.Username] = tx.Address
	return nil
}

func applyDeleteAccount(st *State, tx types.Transaction) error {
	acct, ok := st.accounts[tx.Address]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, tx.Address)
	}
	if st.ownsAssets(tx.Address) {
		return fmt.Errorf("%w: %s", ErrAccountOwnsAssets, tx.Address)
	}
	delete(st.accounts, tx.Address)
	delete(st.usernames, acct.Username)
	return nil
}

func applyMint(st *State, blockTime string, tx types.Transaction) error {
	if _, ok := st.accounts[tx.Minter]; !ok {
		return fmt.Errorf("%w: minter %s", ErrUnknownAccount, tx.Minter)
	}
	if _, ok := st.assets[tx.AssetID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAsset, tx.AssetID)
	}
	// The mint time comes from the block timestamp so that replay
	// reproduces it exactly.
	minted, _ := time.Parse(time.RFC3339Nano, blockTime)
	st.assets[tx.AssetID] = types.Asset{
		ID:          tx.AssetID,
		Name:        tx.Name,
		Description: tx.Description,
		Image:       tx.Image,
		Category:    tx.Category,
		Rarity:      tx.Rarity,
		Owner:       tx.Minter,
		ForSale:     false,
		Price:       0,
		Minted:      minted,
	}
	return nil
}

func applyList(st *State, tx types.Transaction) error {
	asset, ok := st.assets[tx.AssetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, tx.AssetID)
	}
	if asset.Owner != tx.Seller {
		return fmt.Errorf("%w: %s is not owned by %s", ErrNotOwner, tx.AssetID, tx.Seller)
	}
	if tx.Price <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, tx.Price)
	}
	asset.ForSale = true
	asset.Price = tx.Price
	st.assets[tx.AssetID] = asset
	return nil
}

func applyDelist(st *State, tx types.Transaction) error {
	asset, ok := st.assets[tx.AssetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, tx.AssetID)
	}
	if asset.Owner != tx.Seller {
		return fmt.Errorf("%w: %s is not owned by %s", ErrNotOwner, tx.AssetID, tx.Seller)
	}
	asset.ForSale = false
	asset.Price = 0
	st.assets[tx.AssetID] = asset
	return nil
}

func applyBuy(st *State, tx types.Transaction) error {
	asset, ok := st.assets[tx.AssetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, tx.AssetID)
	}
	if !asset.ForSale {
		return fmt.Errorf("%w: %s", ErrNotForSale, tx.AssetID)
	}
	if asset.Owner != tx.Seller {
		return fmt.Errorf("%w: %s is not owned by %s", ErrNotOwner, tx.AssetID, tx.Seller)
	}
	if tx.Buyer == tx.Seller {
		return fmt.Errorf("%w: %s", ErrSelfTrade, tx.Buyer)
	}
	if tx.Price != asset.Price {
		return fmt.Errorf("%w: agreed %s, listed %s", ErrInvalidPrice, tx.Price, asset.Price)
	}
	buyer, ok := st.accounts[tx.Buyer]
	if !ok {
		return fmt.Errorf("%w: buyer %s", ErrUnknownAccount, tx.Buyer)
	}
	seller, ok := st.accounts[tx.Seller]
	if !ok {
		return fmt.Errorf("%w: seller %s", ErrUnknownAccount, tx.Seller)
	}
	if buyer.Balance < tx.Price {
		return fmt.Errorf("%w: balance %s, price %s", ErrInsufficientBalance, buyer.Balance, tx.Price)
	}
	buyer.Balance -= tx.Price
	seller.Balance += tx.Price
	st.accounts[tx.Buyer] = buyer
	st.accounts[tx.Seller] = seller
	asset.Owner = tx.Buyer
	asset.ForSale = false
	st.assets[tx.AssetID] = asset
	return nil
}

func applyTransfer(st *State, tx types.Transaction) error {
	asset, ok := st.assets[tx.AssetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, tx.AssetID)
	}
	if asset.Owner != tx.From {
		return fmt.Errorf("%w: %s is not owned by %s", ErrNotOwner, tx.AssetID, tx.From)
	}
	if _, ok := st.accounts[tx.To]; !ok {
		return fmt.Errorf("%w: recipient %s", ErrUnknownAccount, tx.To)
	}
	asset.Owner = tx.To
	st.assets[tx.AssetID] = asset
	return nil
}

func applyBurn(st *State, tx types.Transaction) error {
	asset, ok := st.assets[tx.AssetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, tx.AssetID)
	}
	if asset.Owner != tx.Owner {
		return fmt.Errorf("%w: %s is not owned by %s", ErrNotOwner, tx.AssetID, tx.Owner)
	}
	delete(st.assets, tx.AssetID)
	return nil
}

func applyFaucet(st *State, tx types.Transaction) error {
	acct, ok := st.accounts[tx.To]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, tx.To)
	}
	if tx.Amount <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, tx.Amount)
	}
	acct.Balance += tx.Amount
	st.accounts[tx.To] = acct
	return nil
}
