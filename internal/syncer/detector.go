package syncer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/orbitapp/orbit/internal/model"
)

// Candidate filtering bounds for unknown-item matching.
const (
	similarityThreshold = 0.6
	maxItemMatches      = 5
)

// Snapshot is the read-only ledger state a batch is validated against.
type Snapshot struct {
	Wallet *model.WalletStore
	Items  *model.ItemStore
}

// Detect reconciles an incoming batch against the ledger snapshot and returns
// every detected conflict. It is a pure function of its inputs: the same batch
// and snapshot always produce the same conflicts in the same order.
func Detect(payload model.SyncDataPayload, snap Snapshot) []model.Conflict {
	var conflicts []model.Conflict
	for i := range payload.Transactions {
		tx := &payload.Transactions[i]
		if c := checkBalance(tx, snap.Wallet); c != nil {
			conflicts = append(conflicts, *c)
		}
		conflicts = append(conflicts, checkItems(tx, snap.Items)...)
		if c := checkDuplicate(tx); c != nil {
			conflicts = append(conflicts, *c)
		}
		if c := checkAccount(tx, snap.Wallet); c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	return conflicts
}

// checkBalance flags a balance-affecting expense that exceeds the referenced
// account's current balance.
func checkBalance(tx *model.Transaction, wallet *model.WalletStore) *model.Conflict {
	if !tx.AffectsBalance || tx.IsIncome() {
		return nil
	}
	acc, ok := wallet.Accounts[tx.AccountID]
	if !ok {
		return nil
	}
	if tx.Amount <= acc.Balance {
		return nil
	}
	return &model.Conflict{
		Type:          model.ConflictInsufficientBalance,
		TransactionID: tx.ID,
		Description: fmt.Sprintf("Transaction amount $%.2f exceeds account '%s' balance $%.2f",
			tx.Amount, acc.Name, acc.Balance),
		Suggestion: fmt.Sprintf("Reduce amount to $%.2f or select a different account", acc.Balance),
		InsufficientBalance: &model.InsufficientBalanceConflict{
			AccountID:      acc.ID,
			AccountName:    acc.Name,
			CurrentBalance: acc.Balance,
			Required:       tx.Amount,
		},
	}
}

// checkItems flags each unresolved item reference that has at least one fuzzy
// catalog candidate above the similarity threshold. A name with zero similar
// candidates is not flagged; the apply-time item sync creates it as new.
func checkItems(tx *model.Transaction, catalog *model.ItemStore) []model.Conflict {
	var conflicts []model.Conflict
	for _, ref := range tx.Items {
		if ref.ItemID != "" {
			continue
		}
		matches := findSimilarItems(ref.Name, catalog)
		if len(matches) == 0 {
			continue
		}
		conflicts = append(conflicts, model.Conflict{
			Type:          model.ConflictUnknownItem,
			TransactionID: tx.ID,
			Description:   fmt.Sprintf("Item '%s' not found in database. Possible matches found.", ref.Name),
			Suggestion:    "Map to existing item or create new one",
			UnknownItem: &model.UnknownItemConflict{
				ItemName:         ref.Name,
				SuggestedMatches: matches,
			},
		})
	}
	return conflicts
}

// findSimilarItems ranks catalog items by name similarity, keeping scores
// above the threshold, descending, capped at maxItemMatches. Ties break by
// name so the result is deterministic over the map iteration order.
func findSimilarItems(name string, catalog *model.ItemStore) []model.ItemMatch {
	nameLower := strings.ToLower(name)

	var matches []model.ItemMatch
	for _, item := range catalog.Data {
		score := Similarity(nameLower, strings.ToLower(item.Name))
		if score > similarityThreshold {
			matches = append(matches, model.ItemMatch{
				ItemID:          item.ID,
				Name:            item.Name,
				Brand:           item.Brand,
				SimilarityScore: score,
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].SimilarityScore != matches[j].SimilarityScore {
			return matches[i].SimilarityScore > matches[j].SimilarityScore
		}
		return matches[i].Name < matches[j].Name
	})
	if len(matches) > maxItemMatches {
		matches = matches[:maxItemMatches]
	}
	return matches
}

// Similarity returns a normalized Levenshtein score in [0, 1]: identical
// strings score 1.0, an empty string against a non-empty one scores 0.0.
func Similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

// checkDuplicate is an extension point for flagging a transaction already
// present in the ledger; no duplicate heuristic is in use yet.
func checkDuplicate(*model.Transaction) *model.Conflict {
	return nil
}

// checkAccount is an extension point for flagging a reference to an account
// the wallet does not know; today an unknown account surfaces at apply time.
func checkAccount(*model.Transaction, *model.WalletStore) *model.Conflict {
	return nil
}
