package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/model"
)

func TestCommitLedger_WritesBothDocuments(t *testing.T) {
	t.Parallel()

	s, err := Open(t.TempDir())
	require.NoError(t, err)

	txs := model.EmptyTransactions()
	txs.Data["tx1"] = model.Transaction{ID: "tx1", Amount: 10, Type: model.TypeExpense}
	txs.TotalExpenses = 10
	txs.NetBalance = -10

	wallet := model.EmptyWallet()
	wallet.Accounts["a1"] = model.Account{ID: "a1", Balance: 90}
	wallet.TotalBalance = 90

	require.NoError(t, s.CommitLedger(txs, wallet))

	gotTxs, err := s.ReadTransactions()
	require.NoError(t, err)
	require.Contains(t, gotTxs.Data, "tx1")

	gotWallet, err := s.ReadWallet()
	require.NoError(t, err)
	require.Equal(t, 90.0, gotWallet.TotalBalance)
}

// A wallet write that fails after the transaction document is already on disk
// must restore the transaction document to its pre-commit content.
func TestCommitLedger_RollsBackTransactionsOnWalletFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	before := model.EmptyTransactions()
	before.Data["old"] = model.Transaction{ID: "old", Amount: 5, Type: model.TypeIncome}
	before.TotalIncome = 5
	before.NetBalance = 5
	require.NoError(t, s.WriteTransactions(before))
	prevRaw, err := os.ReadFile(filepath.Join(dir, "wallet.json"))
	require.True(t, os.IsNotExist(err), "wallet must not exist yet: %v", prevRaw)

	// a directory at the wallet path makes the rename step fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "wallet.json"), 0o755))

	after := model.EmptyTransactions()
	after.Data["old"] = before.Data["old"]
	after.Data["new"] = model.Transaction{ID: "new", Amount: 7, Type: model.TypeExpense}
	after.TotalIncome = 5
	after.TotalExpenses = 7
	after.NetBalance = -2

	err = s.CommitLedger(after, model.EmptyWallet())
	require.ErrorIs(t, err, errs.ErrWriteFailure)
	require.NotErrorIs(t, err, errs.ErrRollbackFailed)

	// the transaction document is back to its pre-commit content
	got, err := s.ReadTransactions()
	require.NoError(t, err)
	require.Contains(t, got.Data, "old")
	require.NotContains(t, got.Data, "new")
	require.Equal(t, 0.0, got.TotalExpenses)
}

func TestCommitLedger_RollbackRemovesFreshTransactionDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "wallet.json"), 0o755))

	txs := model.EmptyTransactions()
	txs.Data["tx1"] = model.Transaction{ID: "tx1", Amount: 1, Type: model.TypeExpense}

	err = s.CommitLedger(txs, model.EmptyWallet())
	require.ErrorIs(t, err, errs.ErrWriteFailure)

	// no transaction document existed before the commit, so none may remain
	_, statErr := os.Stat(filepath.Join(dir, "transactions.json"))
	require.True(t, os.IsNotExist(statErr), "transactions.json should have been removed")
}
