// Package ledger implements the single-transaction application pipeline: one
// path that updates the transaction ledger totals, the wallet balances and the
// item catalog for every transaction, whether created locally or merged from a
// synced batch.
package ledger

import (
	"fmt"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/model"
)

// applyToWallet applies a balance-affecting transaction to its account and the
// wallet total. An expense exceeding the account balance is rejected before
// any mutation.
func applyToWallet(w *model.WalletStore, tx *model.Transaction) error {
	if !tx.AffectsBalance {
		return nil
	}
	acc, ok := w.Accounts[tx.AccountID]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrAccountNotFound, tx.AccountID)
	}
	if !tx.IsIncome() && tx.Amount > acc.Balance {
		return fmt.Errorf("%w: account %q balance %.2f, required %.2f",
			errs.ErrInsufficientFunds, acc.Name, acc.Balance, tx.Amount)
	}

	if tx.IsIncome() {
		acc.Balance += tx.Amount
		w.TotalBalance += tx.Amount
	} else {
		acc.Balance -= tx.Amount
		w.TotalBalance -= tx.Amount
	}
	acc.TransactionsCount++
	acc.TransactionsID = append(acc.TransactionsID, tx.ID)
	acc.UpdatedAt = model.NowMillis()
	w.Accounts[tx.AccountID] = acc
	return nil
}

// revertFromWallet reverses a previously applied transaction.
func revertFromWallet(w *model.WalletStore, tx *model.Transaction) error {
	if !tx.AffectsBalance {
		return nil
	}
	acc, ok := w.Accounts[tx.AccountID]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrAccountNotFound, tx.AccountID)
	}

	if tx.IsIncome() {
		acc.Balance -= tx.Amount
		w.TotalBalance -= tx.Amount
	} else {
		acc.Balance += tx.Amount
		w.TotalBalance += tx.Amount
	}
	if acc.TransactionsCount > 0 {
		acc.TransactionsCount--
	}
	acc.TransactionsID = deleteString(acc.TransactionsID, tx.ID)
	acc.UpdatedAt = model.NowMillis()
	w.Accounts[tx.AccountID] = acc
	return nil
}

// adjustForEdit replaces the old amount's effect with the new amount's,
// as a delta against the same account. An edit that would overdraw the
// account is rejected.
func adjustForEdit(w *model.WalletStore, old *model.Transaction, newAmount float64) error {
	if !old.AffectsBalance {
		return nil
	}
	acc, ok := w.Accounts[old.AccountID]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrAccountNotFound, old.AccountID)
	}

	delta := newAmount - old.Amount
	if !old.IsIncome() {
		delta = -delta
	}
	if acc.Balance+delta < 0 {
		return fmt.Errorf("%w: account %q would be overdrawn by %.2f",
			errs.ErrInsufficientFunds, acc.Name, -(acc.Balance + delta))
	}
	acc.Balance += delta
	w.TotalBalance += delta
	acc.UpdatedAt = model.NowMillis()
	w.Accounts[old.AccountID] = acc
	return nil
}

func deleteString(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
