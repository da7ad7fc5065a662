// Package types defines the core domain models for the digital asset
// marketplace ledger (dam). It contains the Account, Asset, Transaction and
// Block models shared across the application. All mutations of ledger state
// are expressed as Transactions and recorded inside hash-linked Blocks.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Version is the current version of dam
const Version = "0.3.0"

// BuildTime is set at build time via -ldflags
var BuildTime = "dev"

// GenesisPrevHash is the sentinel previous-hash of the genesis block.
const GenesisPrevHash = "NONE"

// Amount is a coin amount with two fractional digits, stored as an integer
// count of cents. Integer cents keep balance arithmetic exact and make the
// JSON encoding of a transaction byte-stable for hashing.
type Amount int64

// ParseAmount converts a decimal coin string such as "25.50" into an Amount.
// More than two fractional digits is an error, not a rounding.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return Amount(d.Shift(2).IntPart()), nil
}

// Decimal returns the amount as an exact decimal value in coins.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String formats the amount with exactly two fractional digits, e.g. "25.50".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// Account holds a fungible coin balance and owns assets. The address is
// assigned at creation and never changes. Credential is an opaque salted-hash
// verifier produced by the auth package; the plaintext password is never
// stored anywhere in the system.
type Account struct {
	Address    string `json:"address"`
	Username   string `json:"username"`
	Credential string `json:"credential,omitempty"`
	Balance    Amount `json:"balance"`
}

// Asset categories and rarities accepted by the mint form. The ledger engine
// treats both as opaque metadata.
const (
	CategoryArt         = "art"
	CategoryMusic       = "music"
	CategoryGame        = "game"
	CategoryCollectible = "collectible"
	CategoryOther       = "other"

	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Asset is a unique item owned by exactly one live account at any time.
type Asset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"desc,omitempty"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	Rarity      string    `json:"rarity,omitempty"`
	Owner       string    `json:"owner"`
	ForSale     bool      `json:"forSale"`
	Price       Amount    `json:"price"`
	Minted      time.Time `json:"minted"`
}

// TxType tags a transaction variant.
type TxType string

const (
	TxCreateAccount TxType = "CREATE_ACCOUNT"
	TxDeleteAccount TxType = "DELETE_ACCOUNT"
	TxMint          TxType = "MINT"
	TxList          TxType = "LIST"
	TxDelist        TxType = "DELIST"
	TxBuy           TxType = "BUY"
	TxTransfer      TxType = "TRANSFER"
	TxBurn          TxType = "BURN"
	TxFaucet        TxType = "FAUCET"
	TxGenesis       TxType = "GENESIS"
)

// Transaction is an immutable, tagged record of one ledger mutation. It is a
// closed union: Type selects the variant and only that variant's fields are
// set, everything else stays at its zero value and is omitted from JSON.
// Constructors live in the ledger package; validation is the applier's job.
type Transaction struct {
	Type TxType `json:"type"`

	// CREATE_ACCOUNT / DELETE_ACCOUNT
	Address    string `json:"address,omitempty"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
	Balance    Amount `json:"balance,omitempty"`

	// MINT
	Minter      string `json:"minter,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"desc,omitempty"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`
	Rarity      string `json:"rarity,omitempty"`

	// LIST / DELIST / BUY / TRANSFER / BURN
	AssetID string `json:"assetId,omitempty"`
	Seller  string `json:"seller,omitempty"`
	Buyer   string `json:"buyer,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Owner   string `json:"owner,omitempty"`
	Price   Amount `json:"price,omitempty"`

	// FAUCET
	Amount Amount `json:"amount,omitempty"`
}

// Block is a batch of transactions plus linkage metadata. Blocks are
// immutable once appended; Hash covers every preceding field.
type Block struct {
	Index     int           `json:"index"`
	Timestamp string        `json:"timestamp"`
	Txs       []Transaction `json:"txs"`
	PrevHash  string        `json:"prevHash"`
	Hash      string        `json:"hash"`
}

// BlockRef identifies an appended block.
type BlockRef struct {
	Index int    `json:"index"`
	Hash  string `json:"hash"`
}

// Snapshot is the serialized export of the full ledger: the chain plus the
// account/asset projection derivable from it. Round-tripping a snapshot
// through export and import must reproduce identical state.
type Snapshot struct {
	Accounts []Account `json:"accounts"`
	Assets   []Asset   `json:"assets"`
	Chain    []Block   `json:"chain"`
}

// NewAddress derives a fresh account address from a username: "0x", an
// uppercased prefix of the username, and a random suffix for uniqueness.
func NewAddress(username string) string {
	prefix := strings.ToUpper(username)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return "0x" + prefix + suffix
}

// NewAssetID returns a fresh unique asset identifier.
func NewAssetID() string {
	return "asset_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// Timestamp returns the canonical textual timestamp used in blocks.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
