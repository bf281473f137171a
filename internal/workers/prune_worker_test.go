package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePruner struct {
	mu         sync.Mutex
	calls      int
	retentions []time.Duration
	err        error
}

func (p *fakePruner) PruneCreations(retention time.Duration) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.retentions = append(p.retentions, retention)
	return 1, p.err
}

func (p *fakePruner) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestPruneWorker(t *testing.T) {
	t.Run("Prunes on start and on every tick", func(t *testing.T) {
		pruner := &fakePruner{}
		manager := NewWorkerManager()
		worker := NewPruneWorker("journal-pruner-1", pruner, 24*time.Hour, 10*time.Millisecond)
		manager.Add(worker)

		assert.NoError(t, manager.StartAll())
		assert.Eventually(t, func() bool { return pruner.callCount() >= 3 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, map[string]bool{"journal-pruner-1": true}, manager.GetWorkerStatus())

		assert.NoError(t, manager.StopAll())
		assert.False(t, worker.IsRunning())
		assert.Equal(t, TaskJournalPrune, worker.GetTask())
		assert.Equal(t, 24*time.Hour, pruner.retentions[0])
	})

	t.Run("Keeps running after a failed prune", func(t *testing.T) {
		pruner := &fakePruner{err: errors.New("database is locked")}
		worker := NewPruneWorker("journal-pruner-2", pruner, time.Hour, 5*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)

		done := make(chan error, 1)
		go func() { done <- worker.Start(ctx) }()

		assert.Eventually(t, func() bool { return pruner.callCount() >= 2 }, time.Second, 5*time.Millisecond)
		assert.NoError(t, worker.Stop())
		assert.NoError(t, worker.Stop())
		assert.NoError(t, <-done)
	})
}
