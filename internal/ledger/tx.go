package ledger

import "assetmarket.mini/dam/internal/types"

// Transaction constructors. Each returns an immutable value object carrying
// only the fields its variant needs; none of them validates anything, that
// is the applier's job.

// NewCreateAccountTx records a new account. Credential is the opaque
// verifier produced by the auth package, never a plaintext password.
func NewCreateAccountTx(address, username, credential string, balance types.Amount) types.Transaction {
	return types.Transaction{
		Type:       types.TxCreateAccount,
		Address:    address,
		Username:   username,
		Credential: credential,
		Balance:    balance,
	}
}

// NewDeleteAccountTx records removal of an account.
func NewDeleteAccountTx(address, username string) types.Transaction {
	return types.Transaction{Type: types.TxDeleteAccount, Address: address, Username: username}
}

// NewMintTx records creation of a new asset owned by minter.
func NewMintTx(minter, assetID, name, desc, image, category, rarity string) types.Transaction {
	return types.Transaction{
		Type:        types.TxMint,
		Minter:      minter,
		AssetID:     assetID,
		Name:        name,
		Description: desc,
		Image:       image,
		Category:    category,
		Rarity:      rarity,
	}
}

// NewListTx records putting an asset up for sale at the given price.
func NewListTx(seller, assetID string, price types.Amount) types.Transaction {
	return types.Transaction{Type: types.TxList, Seller: seller, AssetID: assetID, Price: price}
}

// NewDelistTx records taking an asset off the market.
func NewDelistTx(seller, assetID string) types.Transaction {
	return types.Transaction{Type: types.TxDelist, Seller: seller, AssetID: assetID}
}

// NewBuyTx records a purchase at the agreed price.
func NewBuyTx(buyer, seller, assetID string, price types.Amount) types.Transaction {
	return types.Transaction{Type: types.TxBuy, Buyer: buyer, Seller: seller, AssetID: assetID, Price: price}
}

// NewTransferTx records a change of ownership without payment.
func NewTransferTx(from, to, assetID string) types.Transaction {
	return types.Transaction{Type: types.TxTransfer, From: from, To: to, AssetID: assetID}
}

// NewBurnTx records permanent removal of an asset.
func NewBurnTx(owner, assetID string) types.Transaction {
	return types.Transaction{Type: types.TxBurn, Owner: owner, AssetID: assetID}
}

// NewFaucetTx records free coins granted to an account.
func NewFaucetTx(to string, amount types.Amount) types.Transaction {
	return types.Transaction{Type: types.TxFaucet, To: to, Amount: amount}
}

// NewGenesisTx marks the start of the chain. It is only valid inside
// block 0.
func NewGenesisTx() types.Transaction {
	return types.Transaction{Type: types.TxGenesis}
}
