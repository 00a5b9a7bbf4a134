package syncer

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/orbitapp/orbit/internal/errs"
	"github.com/orbitapp/orbit/internal/ledger"
	"github.com/orbitapp/orbit/internal/model"
)

type fakePipeline struct {
	applied []model.CreateTransaction
	failOn  int // 1-based call index that fails; 0 = never
	calls   int
}

var _ ledger.Pipeline = (*fakePipeline)(nil)

func (f *fakePipeline) AddTransaction(req model.CreateTransaction) (*model.Transaction, error) {
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return nil, fmt.Errorf("apply: %w", errs.ErrInsufficientFunds)
	}
	f.applied = append(f.applied, req)
	tx := req.Build()
	return &tx, nil
}

func (f *fakePipeline) EditTransaction(string, model.EditTransaction) (*model.Transaction, error) {
	panic("not used")
}

func (f *fakePipeline) DeleteTransaction(string) (*model.Transaction, error) {
	panic("not used")
}

func enqueueBatch(p *PendingStore, txs ...model.Transaction) string {
	return p.Enqueue(model.SyncDataPayload{
		Transactions: txs,
		DeviceName:   "phone",
		Timestamp:    model.NowMillis(),
	}, nil)
}

func TestResolve_UnknownBatch(t *testing.T) {
	t.Parallel()

	a := NewApprover(NewPendingStore(), &fakePipeline{}, zap.NewNop())
	if _, err := a.Resolve("nope", true, nil); !errors.Is(err, errs.ErrBatchNotFound) {
		t.Fatalf("err=%v, want ErrBatchNotFound", err)
	}
}

func TestResolve_RejectConsumesWithoutApplying(t *testing.T) {
	t.Parallel()

	pending := NewPendingStore()
	pipe := &fakePipeline{}
	a := NewApprover(pending, pipe, zap.NewNop())

	id := enqueueBatch(pending, model.Transaction{ID: "tx1", Amount: 10, Type: model.TypeExpense})

	res, err := a.Resolve(id, false, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Applied) != 0 || pipe.calls != 0 {
		t.Fatalf("rejected batch touched the ledger: %+v calls=%d", res, pipe.calls)
	}
	if pending.Len() != 0 {
		t.Fatalf("rejected batch still pending")
	}
	// decisions are final: the batch is gone either way
	if _, err := a.Resolve(id, true, nil); !errors.Is(err, errs.ErrBatchNotFound) {
		t.Fatalf("consumed batch resolvable twice: %v", err)
	}
}

func TestResolve_ApproveAppliesResolutions(t *testing.T) {
	t.Parallel()

	pending := NewPendingStore()
	pipe := &fakePipeline{}
	a := NewApprover(pending, pipe, zap.NewNop())

	id := enqueueBatch(pending,
		model.Transaction{ID: "tx1", Amount: 150, Type: model.TypeExpense, AccountID: "acc1"},
		model.Transaction{ID: "tx2", Amount: 20, Type: model.TypeExpense},
		model.Transaction{ID: "tx3", Amount: 30, Type: model.TypeExpense,
			Items: []model.TransactionItemRef{{Name: "milk"}, {ItemID: "known", Name: "eggs"}}},
	)

	res, err := a.Resolve(id, true, map[string]model.ConflictResolution{
		"tx1": {Kind: model.ResolutionAdjustAmount, NewAmount: 90},
		"tx2": {Kind: model.ResolutionSkipTransaction},
		"tx3": {Kind: model.ResolutionMapItem, ItemID: "i1"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(res.Applied) != 2 || res.Applied[0] != "tx1" || res.Applied[1] != "tx3" {
		t.Fatalf("applied=%v, want [tx1 tx3]", res.Applied)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "tx2" {
		t.Fatalf("skipped=%v, want [tx2]", res.Skipped)
	}
	if res.FailedID != "" {
		t.Fatalf("unexpected failure: %+v", res)
	}

	if pipe.applied[0].Amount != 90 {
		t.Fatalf("adjusted amount not applied: %v", pipe.applied[0].Amount)
	}
	items := pipe.applied[1].Items
	if items[0].ItemID != "i1" {
		t.Fatalf("unresolved item not mapped: %+v", items[0])
	}
	if items[1].ItemID != "known" {
		t.Fatalf("resolved item overwritten: %+v", items[1])
	}
}

func TestResolve_StopsAtFirstFailureKeepingEarlierCommits(t *testing.T) {
	t.Parallel()

	pending := NewPendingStore()
	pipe := &fakePipeline{failOn: 2}
	a := NewApprover(pending, pipe, zap.NewNop())

	id := enqueueBatch(pending,
		model.Transaction{ID: "tx1", Amount: 10, Type: model.TypeExpense},
		model.Transaction{ID: "tx2", Amount: 20, Type: model.TypeExpense},
		model.Transaction{ID: "tx3", Amount: 30, Type: model.TypeExpense},
	)

	res, err := a.Resolve(id, true, nil)
	if err != nil {
		t.Fatalf("a partially applied batch is a defined outcome, got err: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0] != "tx1" {
		t.Fatalf("applied=%v, want [tx1]", res.Applied)
	}
	if res.FailedID != "tx2" || res.Error == "" {
		t.Fatalf("failure not reported: %+v", res)
	}
	if pipe.calls != 2 {
		t.Fatalf("processing continued past the failure: %d calls", pipe.calls)
	}
	if pending.Len() != 0 {
		t.Fatalf("failed batch should still be consumed")
	}
}

func TestResolve_UnknownResolutionKindFails(t *testing.T) {
	t.Parallel()

	pending := NewPendingStore()
	pipe := &fakePipeline{}
	a := NewApprover(pending, pipe, zap.NewNop())

	id := enqueueBatch(pending, model.Transaction{ID: "tx1", Amount: 10, Type: model.TypeExpense})

	res, err := a.Resolve(id, true, map[string]model.ConflictResolution{
		"tx1": {Kind: "mergeSomehow"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.FailedID != "tx1" || pipe.calls != 0 {
		t.Fatalf("unknown resolution kind must fail the batch: %+v calls=%d", res, pipe.calls)
	}
}
