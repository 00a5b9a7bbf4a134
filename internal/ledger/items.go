package ledger

import (
	"github.com/orbitapp/orbit/internal/model"
)

// syncItems reconciles a transaction's item references with the catalog:
// a reference carrying a known item id gets a purchase-history entry when
// priced; a reference without an id creates a new catalog item.
func syncItems(catalog *model.ItemStore, tx *model.Transaction) {
	for _, ref := range tx.Items {
		syncItemRef(catalog, tx, ref)
	}
}

func syncItemRef(catalog *model.ItemStore, tx *model.Transaction, ref model.TransactionItemRef) {
	if ref.ItemID != "" {
		item, ok := catalog.Data[ref.ItemID]
		if !ok || ref.Price == 0 {
			return
		}
		item.AddPurchase(purchaseFrom(tx, ref))
		catalog.Data[ref.ItemID] = item
		return
	}

	now := model.NowMillis()
	item := model.Item{
		ID:        model.NewID(),
		Name:      ref.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ref.Price != 0 {
		item.AddPurchase(purchaseFrom(tx, ref))
	}
	catalog.Data[item.ID] = item
}

func purchaseFrom(tx *model.Transaction, ref model.TransactionItemRef) model.PurchaseHistoryInfo {
	qty := ref.Quantity
	if qty == 0 {
		qty = 1
	}
	return model.PurchaseHistoryInfo{
		ID:              model.NewID(),
		Price:           ref.Price,
		Date:            tx.Date,
		TransactionName: tx.Details,
		Quantity:        qty,
	}
}
