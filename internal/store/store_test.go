package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/model"
)

func TestRead_MissingFilesReturnEmptyDefaults(t *testing.T) {
	t.Parallel()

	s, err := Open(t.TempDir())
	require.NoError(t, err)

	w, err := s.ReadWallet()
	require.NoError(t, err)
	require.Empty(t, w.Accounts)
	require.Zero(t, w.TotalBalance)

	txs, err := s.ReadTransactions()
	require.NoError(t, err)
	require.Empty(t, txs.Data)

	items, err := s.ReadItems()
	require.NoError(t, err)
	require.Empty(t, items.Data)
}

func TestWriteRead_Roundtrip(t *testing.T) {
	t.Parallel()

	s, err := Open(t.TempDir())
	require.NoError(t, err)

	w := model.EmptyWallet()
	w.Accounts["a1"] = model.Account{ID: "a1", Name: "Cash", Type: model.AccountCash, Balance: 42.5}
	w.TotalBalance = 42.5
	require.NoError(t, s.WriteWallet(w))

	got, err := s.ReadWallet()
	require.NoError(t, err)
	require.Equal(t, 42.5, got.TotalBalance)
	require.Equal(t, "Cash", got.Accounts["a1"].Name)
}

func TestRead_CorruptDocumentIsParseFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "wallet.json"), []byte("{nope"), 0o644))

	_, err = s.ReadWallet()
	require.ErrorIs(t, err, errs.ErrParseFailure)
}

func TestAtomicReplace_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "doc.json")

	require.NoError(t, atomicReplace(target, []byte(`{"v":1}`)))
	require.NoError(t, atomicReplace(target, []byte(`{"v":2}`)))

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	require.JSONEq(t, `{"v":2}`, string(raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files left behind")
}
