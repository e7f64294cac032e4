package ping

import (
	"context"
	"errors"
	"time"

	"github.com/gammazero/workerpool"

	"pingflow/internal/models"
)

// Sweep pings every host once with up to workers pings running at the same
// time. Results arrive in completion order; the channel is closed once all
// hosts are done or ctx is done. opts apply to every host; a count of 0 is
// treated as 1.
func Sweep(ctx context.Context, hosts []string, workers int, opts ...Option) <-chan models.ProbeResult {
	if workers < 1 {
		workers = 1
	}
	out := make(chan models.ProbeResult)
	wp := workerpool.New(workers)

	go func() {
		defer close(out)
		for _, host := range hosts {
			host := host
			wp.Submit(func() {
				if ctx.Err() != nil {
					return
				}
				p := New(host, opts...)
				if p.Config().Count == 0 {
					p.SetCount(1)
				}
				res, err := p.Run(ctx)
				if err != nil {
					if errors.Is(err, ErrAborted) || ctx.Err() != nil {
						return
					}
					res = FailureFromError(err, p.Config(), time.Now())
				}
				select {
				case out <- res:
				case <-ctx.Done():
				}
			})
		}
		wp.StopWait()
	}()

	return out
}
