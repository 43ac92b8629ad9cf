package archive

import "context"

// Task is the pending result of an asynchronous archive operation
type Task[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Start runs fn on its own goroutine
func Start[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.val, t.err = fn(ctx)
	}()
	return t
}

// Completed returns a task that is already finished
func Completed[T any](val T, err error) *Task[T] {
	t := &Task[T]{done: make(chan struct{}), val: val, err: err}
	close(t.done)
	return t
}

// Done is closed when the result is available
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx ends
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
