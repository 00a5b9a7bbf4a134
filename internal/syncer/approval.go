package syncer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/ledger"
	"github.com/orbitapp/orbit/internal/model"
)

// Approver drains the pending queue. An approved batch is merged one
// transaction at a time through the same ledger pipeline used for locally
// created transactions.
type Approver struct {
	pending  *PendingStore
	pipeline ledger.Pipeline
	log      *zap.Logger
}

// NewApprover constructs an Approver.
func NewApprover(pending *PendingStore, pipeline ledger.Pipeline, log *zap.Logger) *Approver {
	return &Approver{pending: pending, pipeline: pipeline, log: log}
}

// Resolve consumes the batch unconditionally: both approval and rejection
// remove it from the queue. When approved, each transaction not resolved as a
// skip has its resolution applied and is run through the ledger pipeline.
// Processing stops at the first transaction that fails to apply; earlier
// commits remain in place and the result names the failure. A partially
// applied batch is a defined outcome, not an error.
func (a *Approver) Resolve(batchID string, approved bool, resolutions map[string]model.ConflictResolution) (model.ApprovalResult, error) {
	batch, ok := a.pending.Take(batchID)
	if !ok {
		return model.ApprovalResult{}, fmt.Errorf("%w: %s", errs.ErrBatchNotFound, batchID)
	}

	var result model.ApprovalResult
	if !approved {
		a.log.Info("sync batch rejected",
			zap.String("batch", batchID),
			zap.String("device", batch.DeviceName),
		)
		return result, nil
	}

	for i := range batch.Payload.Transactions {
		tx := batch.Payload.Transactions[i]

		req, skip, err := resolveTransaction(tx, resolutions[tx.ID])
		if err != nil {
			result.FailedID = tx.ID
			result.Error = err.Error()
			a.log.Warn("sync batch stopped", zap.String("batch", batchID), zap.String("tx", tx.ID), zap.Error(err))
			return result, nil
		}
		if skip {
			result.Skipped = append(result.Skipped, tx.ID)
			continue
		}

		if _, err := a.pipeline.AddTransaction(req); err != nil {
			result.FailedID = tx.ID
			result.Error = err.Error()
			a.log.Warn("sync batch stopped",
				zap.String("batch", batchID),
				zap.String("tx", tx.ID),
				zap.Int("applied", len(result.Applied)),
				zap.Error(err),
			)
			return result, nil
		}
		result.Applied = append(result.Applied, tx.ID)
	}

	a.log.Info("sync batch applied",
		zap.String("batch", batchID),
		zap.String("device", batch.DeviceName),
		zap.Int("applied", len(result.Applied)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// resolveTransaction turns a foreign transaction plus its resolution into a
// concrete pipeline request. The zero resolution (no entry for this id) means
// apply as submitted. Resolution kinds are handled exhaustively; an unknown
// kind fails the batch rather than guessing.
func resolveTransaction(tx model.Transaction, res model.ConflictResolution) (model.CreateTransaction, bool, error) {
	amount := tx.Amount
	items := append([]model.TransactionItemRef(nil), tx.Items...)

	switch res.Kind {
	case "":
		// no resolution supplied
	case model.ResolutionSkipTransaction:
		return model.CreateTransaction{}, true, nil
	case model.ResolutionAdjustAmount:
		amount = res.NewAmount
	case model.ResolutionMapItem:
		for i := range items {
			if items[i].ItemID == "" {
				items[i].ItemID = res.ItemID
			}
		}
	case model.ResolutionCreateNewItem:
		// unresolved item refs stay without an id; the pipeline's item sync
		// creates them as new catalog entries
	default:
		return model.CreateTransaction{}, false, fmt.Errorf("unknown resolution kind %q for transaction %s", res.Kind, tx.ID)
	}

	return model.CreateTransaction{
		Amount:         amount,
		Date:           tx.Date,
		Details:        tx.Details,
		Type:           tx.Type,
		AffectsBalance: tx.AffectsBalance,
		AccountID:      tx.AccountID,
		Category:       tx.Category,
		StoreName:      tx.StoreName,
		Items:          items,
		Job:            tx.Job,
		Employer:       tx.Employer,
		ExtraDetails:   tx.ExtraDetails,
		Client:         tx.Client,
		Project:        tx.Project,
	}, false, nil
}
