package syncer

import (
	"sort"
	"sync"

	"github.com/orbitapp/orbit/internal/model"
)

// PendingStore queues received-but-unapplied batches. Batches are immutable
// once enqueued and are removed only by an approve-or-reject decision or by
// server shutdown. A single mutex guards the map against concurrent handler
// and watchdog access.
type PendingStore struct {
	mu      sync.Mutex
	batches map[string]model.PendingSyncData
}

// NewPendingStore returns an empty queue.
func NewPendingStore() *PendingStore {
	return &PendingStore{batches: map[string]model.PendingSyncData{}}
}

// Enqueue stores a batch under a fresh random id and returns that id. The id
// is not exposed on the push response; callers discover batches via List.
func (p *PendingStore) Enqueue(payload model.SyncDataPayload, conflicts []model.Conflict) string {
	batch := model.PendingSyncData{
		ID:         model.NewID(),
		Payload:    payload,
		Conflicts:  conflicts,
		ReceivedAt: model.NowMillis(),
		DeviceName: payload.DeviceName,
	}
	p.mu.Lock()
	p.batches[batch.ID] = batch
	p.mu.Unlock()
	return batch.ID
}

// List returns all pending batches ordered by receipt time.
func (p *PendingStore) List() []model.PendingSyncData {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.PendingSyncData, 0, len(p.batches))
	for _, b := range p.batches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReceivedAt != out[j].ReceivedAt {
			return out[i].ReceivedAt < out[j].ReceivedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Take removes and returns the batch with the given id.
func (p *PendingStore) Take(id string) (model.PendingSyncData, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.batches[id]
	if ok {
		delete(p.batches, id)
	}
	return b, ok
}

// Len reports the number of pending batches.
func (p *PendingStore) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

// Clear drops all pending batches. Called as part of server shutdown.
func (p *PendingStore) Clear() {
	p.mu.Lock()
	p.batches = map[string]model.PendingSyncData{}
	p.mu.Unlock()
}
