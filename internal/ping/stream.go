package ping

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"pingflow/internal/models"
)

type streamState int

const (
	stateIdle streamState = iota
	stateEmitting
	stateWaiting
	stateTerminal
)

// Stream pings the host one attempt at a time and sends every result on the
// returned channel, waiting the configured interval between attempts. The
// channel is closed after Count attempts, or when ctx is done; with a Count of
// 0 it runs until ctx is done. Attempts that cannot be run are sent as
// failures and the stream carries on.
//
// The configuration is captured when Stream is called.
func (p *Pinger) Stream(ctx context.Context) <-chan models.ProbeResult {
	cfg := p.Config()
	out := make(chan models.ProbeResult)
	go p.stream(ctx, cfg, out)
	return out
}

func (p *Pinger) stream(ctx context.Context, cfg Config, out chan<- models.ProbeResult) {
	defer close(out)

	attempt := cfg
	attempt.Count = 1
	single := &Pinger{cfg: attempt, runner: p.runner, platform: p.platform}

	issued := 0
	state := stateIdle
	for state != stateTerminal {
		switch state {
		case stateIdle:
			state = stateEmitting
			if ctx.Err() != nil {
				state = stateTerminal
			}

		case stateEmitting:
			res, ok := single.attempt(ctx)
			if !ok {
				state = stateTerminal
				continue
			}
			issued++

			select {
			case out <- res:
			case <-ctx.Done():
				state = stateTerminal
				continue
			}

			switch {
			case cfg.Count > 0 && issued >= cfg.Count:
				state = stateTerminal
			case cfg.Interval > 0:
				state = stateWaiting
			}

		case stateWaiting:
			state = stateEmitting
			if !sleep(ctx, cfg.Interval) {
				state = stateTerminal
			}
		}
	}

	log.WithFields(log.Fields{"target": cfg.Host, "attempts": issued}).Debug("ping stream ended")
}

// attempt runs a single ping. It reports false when ctx was done, any other
// error becomes a failure result.
func (p *Pinger) attempt(ctx context.Context) (models.ProbeResult, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	a, err := p.RunAsync(ctx)
	var res models.ProbeResult
	if err == nil {
		res, err = a.Wait()
	}
	if err == nil {
		return res, true
	}
	if errors.Is(err, ErrAborted) || ctx.Err() != nil {
		return nil, false
	}

	log.WithError(err).WithField("target", p.cfg.Host).Debug("ping attempt failed")
	return FailureFromError(err, p.cfg, time.Now()), true
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
