package pipeline

import (
	"context"

	"github.com/couchcryptid/quake-report/internal/domain"
)

// Task is the pending result of a background load.
type Task struct {
	done   chan struct{}
	result domain.Result
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// Done is closed once the result is available.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the load completes or ctx is done. Load failures are
// reported through Result.Err, never as Wait's error.
func (t *Task) Wait(ctx context.Context) (domain.Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return domain.Result{}, ctx.Err()
	}
}

func (t *Task) complete() {
	close(t.done)
}
