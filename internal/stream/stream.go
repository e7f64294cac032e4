// Package stream provides combinators over channels of probe results.
//
// Every combinator starts one goroutine that reads its input until the input
// is closed or ctx is done, and closes its output when it returns. A consumer
// that stops reading early, including after Take is satisfied, must cancel ctx
// so that upstream producers are released.
package stream

import (
	"context"
	"sync"

	"pingflow/internal/models"
)

func send[T any](ctx context.Context, out chan<- T, v T) bool {
	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// Take forwards at most n values and then stops reading in.
func Take[T any](ctx context.Context, in <-chan T, n int) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for taken := 0; taken < n; taken++ {
			select {
			case v, ok := <-in:
				if !ok || !send(ctx, out, v) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Filter forwards the values keep returns true for.
func Filter[T any](ctx context.Context, in <-chan T, keep func(T) bool) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			select {
			case v, ok := <-in:
				if !ok {
					return
				}
				if keep(v) && !send(ctx, out, v) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Map forwards fn applied to every value.
func Map[T, U any](ctx context.Context, in <-chan T, fn func(T) U) <-chan U {
	out := make(chan U)
	go func() {
		defer close(out)
		for {
			select {
			case v, ok := <-in:
				if !ok || !send(ctx, out, fn(v)) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// SkipFailures forwards successful results only.
func SkipFailures(ctx context.Context, in <-chan models.ProbeResult) <-chan models.ProbeResult {
	return Filter(ctx, in, models.ProbeResult.Succeeded)
}

// SkipSuccesses forwards failed results only.
func SkipSuccesses(ctx context.Context, in <-chan models.ProbeResult) <-chan models.ProbeResult {
	return Filter(ctx, in, func(r models.ProbeResult) bool { return !r.Succeeded() })
}

// Merge forwards the values of all inputs in the order they arrive. The output
// is closed once every input is closed or ctx is done.
func Merge[T any](ctx context.Context, ins ...<-chan T) <-chan T {
	out := make(chan T)
	var wg sync.WaitGroup
	wg.Add(len(ins))
	for _, in := range ins {
		go func(in <-chan T) {
			defer wg.Done()
			for {
				select {
				case v, ok := <-in:
					if !ok || !send(ctx, out, v) {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(in)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
