// Package store persists the ledger documents as whole JSON files in a single
// data directory. Every write goes through an atomic replace (temp file in the
// same directory, then rename) so no reader ever observes a partial document.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/model"
)

// Document file names inside the data directory.
const (
	walletFile       = "wallet.json"
	transactionsFile = "transactions.json"
	itemsFile        = "items.json"
)

// Store reads and writes the three ledger documents.
type Store struct {
	dir string
}

// Open returns a store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// ReadWallet loads the wallet document, or an empty default when absent.
func (s *Store) ReadWallet() (*model.WalletStore, error) {
	w := model.EmptyWallet()
	if err := s.readDoc(walletFile, w); err != nil {
		return nil, err
	}
	if w.Accounts == nil {
		w.Accounts = map[string]model.Account{}
	}
	return w, nil
}

// WriteWallet rewrites the wallet document in full.
func (s *Store) WriteWallet(w *model.WalletStore) error {
	return s.writeDoc(walletFile, w)
}

// ReadTransactions loads the transaction ledger, or an empty default when absent.
func (s *Store) ReadTransactions() (*model.TransactionStore, error) {
	t := model.EmptyTransactions()
	if err := s.readDoc(transactionsFile, t); err != nil {
		return nil, err
	}
	if t.Data == nil {
		t.Data = map[string]model.Transaction{}
	}
	return t, nil
}

// WriteTransactions rewrites the transaction ledger in full.
func (s *Store) WriteTransactions(t *model.TransactionStore) error {
	return s.writeDoc(transactionsFile, t)
}

// ReadItems loads the item catalog, or an empty default when absent.
func (s *Store) ReadItems() (*model.ItemStore, error) {
	i := model.EmptyItems()
	if err := s.readDoc(itemsFile, i); err != nil {
		return nil, err
	}
	if i.Data == nil {
		i.Data = map[string]model.Item{}
	}
	return i, nil
}

// WriteItems rewrites the item catalog in full.
func (s *Store) WriteItems(i *model.ItemStore) error {
	return s.writeDoc(itemsFile, i)
}

func (s *Store) readDoc(name string, out any) error {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %s: %v", errs.ErrReadFailure, name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrParseFailure, name, err)
	}
	return nil
}

func (s *Store) writeDoc(name string, in any) error {
	raw, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrWriteFailure, name, err)
	}
	if err := atomicReplace(s.path(name), raw); err != nil {
		return fmt.Errorf("%w: %s: %v", errs.ErrWriteFailure, name, err)
	}
	return nil
}

// atomicReplace writes data to a temporary file in the target's directory and
// renames it over the destination.
func atomicReplace(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
