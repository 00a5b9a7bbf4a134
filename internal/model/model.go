// Package model defines domain entities shared by the ledger stores and the
// sync subsystem. All timestamps are unix milliseconds, matching the persisted
// JSON documents.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// AccountType enumerates the supported wallet account kinds.
type AccountType string

const (
	AccountCash         AccountType = "cash"
	AccountOnlineWallet AccountType = "online wallet"
	AccountBank         AccountType = "bank account"
	AccountCreditCard   AccountType = "credit card"
)

// TransactionType enumerates ledger entry directions.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// SchemaVersion tags persisted documents for future migrations.
type SchemaVersion string

// SchemaV1 is the only schema in use.
const SchemaV1 SchemaVersion = "V1"

// NowMillis returns the current time as unix milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// Account is a single wallet account with its cached balance.
type Account struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Type              AccountType `json:"type"`
	Balance           float64     `json:"balance"`
	Currency          string      `json:"currency"`
	CreatedAt         int64       `json:"createdAt"`
	UpdatedAt         int64       `json:"updatedAt"`
	TransactionsCount int         `json:"transactionsCount"`
	TransactionsID    []string    `json:"transactionsId"`
}

// WalletStore is the persisted wallet ledger document.
// Invariant: TotalBalance == sum of all account balances.
type WalletStore struct {
	TotalBalance  float64            `json:"totalBalance"`
	Accounts      map[string]Account `json:"accounts"`
	SchemaVersion SchemaVersion      `json:"schemaVersion"`
}

// EmptyWallet returns the default wallet document.
func EmptyWallet() *WalletStore {
	return &WalletStore{
		Accounts:      map[string]Account{},
		SchemaVersion: SchemaV1,
	}
}

// TransactionItemRef links a transaction line to a catalog item. ItemID is
// empty when the submitting device could not resolve the item.
type TransactionItemRef struct {
	ItemID   string  `json:"itemId,omitempty"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

// Transaction is a single ledger entry.
type Transaction struct {
	ID             string               `json:"id"`
	Amount         float64              `json:"amount"`
	Date           int64                `json:"date"`
	CreatedAt      int64                `json:"createdAt"`
	UpdatedAt      int64                `json:"updatedAt"`
	Details        string               `json:"details"`
	Type           TransactionType      `json:"type"`
	AffectsBalance bool                 `json:"affectsBalance"`
	AccountID      string               `json:"accountId"`
	Category       string               `json:"category"`
	StoreName      string               `json:"storeName,omitempty"`
	Items          []TransactionItemRef `json:"items,omitempty"`
	Job            string               `json:"job,omitempty"`
	Employer       string               `json:"employer,omitempty"`
	ExtraDetails   string               `json:"extraDetails,omitempty"`
	Client         string               `json:"client,omitempty"`
	Project        string               `json:"project,omitempty"`
}

// IsIncome reports whether the transaction adds to an account balance.
func (t *Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// TransactionStore is the persisted transaction ledger document.
// Invariant: NetBalance == TotalIncome - TotalExpenses.
type TransactionStore struct {
	Data          map[string]Transaction `json:"data"`
	NetBalance    float64                `json:"netBalance"`
	TotalIncome   float64                `json:"totalIncome"`
	TotalExpenses float64                `json:"totalExpenses"`
	SchemaVersion SchemaVersion          `json:"schemaVersion"`
}

// EmptyTransactions returns the default transaction ledger document.
func EmptyTransactions() *TransactionStore {
	return &TransactionStore{
		Data:          map[string]Transaction{},
		SchemaVersion: SchemaV1,
	}
}

// CreateTransaction is the input for a new ledger entry. Identity and
// timestamps are assigned by the pipeline.
type CreateTransaction struct {
	Amount         float64              `json:"amount"`
	Date           int64                `json:"date"`
	Details        string               `json:"details"`
	Type           TransactionType      `json:"type"`
	AffectsBalance bool                 `json:"affectsBalance"`
	AccountID      string               `json:"accountId"`
	Category       string               `json:"category"`
	StoreName      string               `json:"storeName,omitempty"`
	Items          []TransactionItemRef `json:"items,omitempty"`
	Job            string               `json:"job,omitempty"`
	Employer       string               `json:"employer,omitempty"`
	ExtraDetails   string               `json:"extraDetails,omitempty"`
	Client         string               `json:"client,omitempty"`
	Project        string               `json:"project,omitempty"`
}

// Build materializes the request into a transaction with fresh identity.
func (r CreateTransaction) Build() Transaction {
	now := NowMillis()
	return Transaction{
		ID:             NewID(),
		Amount:         r.Amount,
		Date:           r.Date,
		CreatedAt:      now,
		UpdatedAt:      now,
		Details:        r.Details,
		Type:           r.Type,
		AffectsBalance: r.AffectsBalance,
		AccountID:      r.AccountID,
		Category:       r.Category,
		StoreName:      r.StoreName,
		Items:          r.Items,
		Job:            r.Job,
		Employer:       r.Employer,
		ExtraDetails:   r.ExtraDetails,
		Client:         r.Client,
		Project:        r.Project,
	}
}

// EditTransaction carries the mutable fields of a ledger entry.
type EditTransaction struct {
	Amount       float64              `json:"amount"`
	Date         int64                `json:"date"`
	Details      string               `json:"details"`
	StoreName    string               `json:"storeName,omitempty"`
	Items        []TransactionItemRef `json:"items,omitempty"`
	Job          string               `json:"job,omitempty"`
	Employer     string               `json:"employer,omitempty"`
	ExtraDetails string               `json:"extraDetails,omitempty"`
	Client       string               `json:"client,omitempty"`
	Project      string               `json:"project,omitempty"`
}

// ApplyTo overwrites the mutable fields and bumps the updated timestamp.
func (e EditTransaction) ApplyTo(t *Transaction) {
	t.Amount = e.Amount
	t.Date = e.Date
	t.Details = e.Details
	t.StoreName = e.StoreName
	t.Items = e.Items
	t.Job = e.Job
	t.Employer = e.Employer
	t.ExtraDetails = e.ExtraDetails
	t.Client = e.Client
	t.Project = e.Project
	t.UpdatedAt = NowMillis()
}

// PurchaseHistoryInfo records one purchase of a catalog item.
type PurchaseHistoryInfo struct {
	ID              string  `json:"id"`
	Price           float64 `json:"price"`
	Date            int64   `json:"date"`
	TransactionName string  `json:"transactionName"`
	Quantity        int     `json:"quantity"`
}

// Item is a catalog entry with its purchase history.
type Item struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Brand           string                `json:"brand,omitempty"`
	HasWarranty     bool                  `json:"hasWarranty,omitempty"`
	PurchaseHistory []PurchaseHistoryInfo `json:"purchaseHistory"`
	CreatedAt       int64                 `json:"createdAt"`
	UpdatedAt       int64                 `json:"updatedAt"`
}

// AddPurchase appends a purchase record and bumps the updated timestamp.
func (i *Item) AddPurchase(p PurchaseHistoryInfo) {
	i.PurchaseHistory = append(i.PurchaseHistory, p)
	i.UpdatedAt = NowMillis()
}

// ItemStore is the persisted item catalog document.
type ItemStore struct {
	Data map[string]Item `json:"data"`
}

// EmptyItems returns the default item catalog document.
func EmptyItems() *ItemStore {
	return &ItemStore{Data: map[string]Item{}}
}
