package stream

import (
	"context"
	"time"

	"github.com/gammazero/deque"
)

// Window sends the last size values as a new slice for every value once size
// values have been seen. Shorter windows are never sent.
func Window[T any](ctx context.Context, in <-chan T, size int) <-chan []T {
	if size < 1 {
		size = 1
	}
	out := make(chan []T)
	go func() {
		defer close(out)
		var q deque.Deque[T]
		for {
			select {
			case v, ok := <-in:
				if !ok {
					return
				}
				q.PushBack(v)
				if q.Len() > size {
					q.PopFront()
				}
				if q.Len() == size && !send(ctx, out, snapshot(&q)) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func snapshot[T any](q *deque.Deque[T]) []T {
	s := make([]T, q.Len())
	for i := range s {
		s[i] = q.At(i)
	}
	return s
}

// Batch groups values into slices of size. A shorter remainder is sent when
// in is closed.
func Batch[T any](ctx context.Context, in <-chan T, size int) <-chan []T {
	return BatchWithTimeout(ctx, in, size, 0)
}

// BatchWithTimeout is Batch that also sends a partial batch once timeout has
// passed since its first value arrived. A timeout of 0 waits for a full batch.
func BatchWithTimeout[T any](ctx context.Context, in <-chan T, size int, timeout time.Duration) <-chan []T {
	if size < 1 {
		size = 1
	}
	out := make(chan []T)
	go func() {
		defer close(out)

		var (
			buf     []T
			timer   *time.Timer
			expired <-chan time.Time
		)
		stopTimer := func() {
			if timer != nil {
				timer.Stop()
				timer, expired = nil, nil
			}
		}
		defer stopTimer()

		flush := func() bool {
			stopTimer()
			batch := buf
			buf = nil
			return send(ctx, out, batch)
		}

		for {
			select {
			case v, ok := <-in:
				if !ok {
					if len(buf) > 0 {
						flush()
					}
					return
				}
				buf = append(buf, v)
				if len(buf) == 1 && timeout > 0 {
					timer = time.NewTimer(timeout)
					expired = timer.C
				}
				if len(buf) >= size && !flush() {
					return
				}
			case <-expired:
				timer, expired = nil, nil
				if !flush() {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
