package store

import (
	"fmt"
	"os"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/model"
)

// CommitLedger persists one logical change across the transaction ledger and
// the wallet ledger. The transaction document is written first: it is the
// source of truth for what happened, while the wallet balance is a derived
// projection. If the wallet write fails, the transaction document is restored
// to its pre-write content so the change is not observable at all; a rollback
// that itself fails is surfaced as ErrRollbackFailed, which callers must treat
// as a possible ledger inconsistency.
//
// Callers compute both new in-memory states up front and reject invalid
// changes (e.g. an expense overdrawing an account) before calling; no partial
// application is attempted for a rejected change.
func (s *Store) CommitLedger(txs *model.TransactionStore, wallet *model.WalletStore) error {
	prev, err := os.ReadFile(s.path(transactionsFile))
	hadPrev := err == nil
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %s: %v", errs.ErrReadFailure, transactionsFile, err)
	}

	if err := s.WriteTransactions(txs); err != nil {
		// nothing has changed on disk yet
		return err
	}

	if err := s.WriteWallet(wallet); err != nil {
		if rbErr := s.rollbackTransactions(prev, hadPrev); rbErr != nil {
			return fmt.Errorf("%w: wallet write failed (%v), then: %v", errs.ErrRollbackFailed, err, rbErr)
		}
		return err
	}
	return nil
}

// rollbackTransactions restores the transaction document to its pre-commit
// content. When the document did not exist before, the freshly written file is
// removed instead.
func (s *Store) rollbackTransactions(prev []byte, hadPrev bool) error {
	if !hadPrev {
		return os.Remove(s.path(transactionsFile))
	}
	return atomicReplace(s.path(transactionsFile), prev)
}
