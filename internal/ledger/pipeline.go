package ledger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/model"
	"github.com/orbitapp/orbit/internal/store"
)

// Pipeline applies single transactions to the ledger. Batch approval and the
// local CRUD surface both go through it, so invariants cannot drift between
// local and synced writes.
type Pipeline interface {
	// AddTransaction creates a ledger entry, syncs the item catalog and, for
	// balance-affecting entries, updates the wallet through the dual-document
	// commit.
	AddTransaction(req model.CreateTransaction) (*model.Transaction, error)
	// EditTransaction replaces a transaction's mutable fields, adjusting
	// wallet and totals by the amount delta.
	EditTransaction(id string, req model.EditTransaction) (*model.Transaction, error)
	// DeleteTransaction removes a transaction and reverses its effects.
	DeleteTransaction(id string) (*model.Transaction, error)
}

// Service is the store-backed Pipeline.
type Service struct {
	store *store.Store
	log   *zap.Logger
}

var _ Pipeline = (*Service)(nil)

// NewService constructs the pipeline over the given document store.
func NewService(st *store.Store, log *zap.Logger) *Service {
	return &Service{store: st, log: log}
}

// AddTransaction implements Pipeline. All new state is computed in memory
// first; a rejected change (unknown account, insufficient funds) performs no
// write at all.
func (s *Service) AddTransaction(req model.CreateTransaction) (*model.Transaction, error) {
	txs, err := s.store.ReadTransactions()
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.ReadItems()
	if err != nil {
		return nil, err
	}

	tx := req.Build()

	var wallet *model.WalletStore
	if tx.AffectsBalance {
		wallet, err = s.store.ReadWallet()
		if err != nil {
			return nil, err
		}
		if err := applyToWallet(wallet, &tx); err != nil {
			return nil, err
		}
	}

	addToTotals(txs, &tx)
	txs.Data[tx.ID] = tx
	syncItems(catalog, &tx)

	if err := s.store.WriteItems(catalog); err != nil {
		return nil, err
	}
	if err := s.persistLedger(txs, wallet); err != nil {
		return nil, err
	}

	s.log.Info("transaction added",
		zap.String("id", tx.ID),
		zap.String("type", string(tx.Type)),
		zap.Float64("amount", tx.Amount),
		zap.Bool("affectsBalance", tx.AffectsBalance),
	)
	return &tx, nil
}

// EditTransaction implements Pipeline. Totals and the wallet are adjusted by
// the delta between the old and new amounts, never by rescanning the store.
func (s *Service) EditTransaction(id string, req model.EditTransaction) (*model.Transaction, error) {
	txs, err := s.store.ReadTransactions()
	if err != nil {
		return nil, err
	}
	old, ok := txs.Data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrTransactionNotFound, id)
	}

	var wallet *model.WalletStore
	if old.AffectsBalance {
		wallet, err = s.store.ReadWallet()
		if err != nil {
			return nil, err
		}
		if err := adjustForEdit(wallet, &old, req.Amount); err != nil {
			return nil, err
		}
	}

	removeFromTotals(txs, &old)
	updated := old
	req.ApplyTo(&updated)
	addToTotals(txs, &updated)
	txs.Data[id] = updated

	if err := s.persistLedger(txs, wallet); err != nil {
		return nil, err
	}

	s.log.Info("transaction edited", zap.String("id", id), zap.Float64("amount", updated.Amount))
	return &updated, nil
}

// DeleteTransaction implements Pipeline.
func (s *Service) DeleteTransaction(id string) (*model.Transaction, error) {
	txs, err := s.store.ReadTransactions()
	if err != nil {
		return nil, err
	}
	tx, ok := txs.Data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrTransactionNotFound, id)
	}

	var wallet *model.WalletStore
	if tx.AffectsBalance {
		wallet, err = s.store.ReadWallet()
		if err != nil {
			return nil, err
		}
		if err := revertFromWallet(wallet, &tx); err != nil {
			return nil, err
		}
	}

	removeFromTotals(txs, &tx)
	delete(txs.Data, id)

	if err := s.persistLedger(txs, wallet); err != nil {
		return nil, err
	}

	s.log.Info("transaction deleted", zap.String("id", id))
	return &tx, nil
}

// persistLedger commits both ledger documents when the wallet changed, or just
// the transaction ledger otherwise.
func (s *Service) persistLedger(txs *model.TransactionStore, wallet *model.WalletStore) error {
	if wallet != nil {
		return s.store.CommitLedger(txs, wallet)
	}
	return s.store.WriteTransactions(txs)
}

func addToTotals(txs *model.TransactionStore, tx *model.Transaction) {
	if tx.IsIncome() {
		txs.TotalIncome += tx.Amount
	} else {
		txs.TotalExpenses += tx.Amount
	}
	txs.NetBalance = txs.TotalIncome - txs.TotalExpenses
}

func removeFromTotals(txs *model.TransactionStore, tx *model.Transaction) {
	if tx.IsIncome() {
		txs.TotalIncome -= tx.Amount
	} else {
		txs.TotalExpenses -= tx.Amount
	}
	txs.NetBalance = txs.TotalIncome - txs.TotalExpenses
}
