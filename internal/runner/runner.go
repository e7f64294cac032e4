// Package runner executes a built ping command, either blocking or in the
// background, under a wall-clock deadline and an optional cancellation
// context. Both modes normalize what happened into an Outcome.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"
)

// SafetyBuffer is added to every computed deadline to absorb process start-up
// and teardown latency.
const SafetyBuffer = 5 * time.Second

var (
	// ErrAborted is returned when the context was done before or while the
	// command ran.
	ErrAborted = errors.New("ping aborted")
	// ErrTimeout is returned by the background mode when the deadline killed
	// the process.
	ErrTimeout = errors.New("ping timed out")
	// ErrEmptyCommand is returned for an empty argv.
	ErrEmptyCommand = errors.New("empty ping command")
)

// Outcome is the normalized result of one command execution
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode *int   // nil when the process did not exit on its own
	Signal   string // terminating signal, if any
	TimedOut bool   // the deadline expired and the process was terminated
}

// Combined returns stdout followed by stderr.
func (o Outcome) Combined() string {
	return o.Stdout + o.Stderr
}

// Timeout returns the deadline for a ping run of count attempts. A count
// below one (run forever) is computed as a single attempt.
func Timeout(count int, perAttempt, interval time.Duration) time.Duration {
	if count < 1 {
		count = 1
	}
	secs := math.Ceil(float64(count) * (perAttempt.Seconds() + interval.Seconds()))
	return time.Duration(secs)*time.Second + SafetyBuffer
}

// CommandFunc creates the command to run. It must return a command created
// with exec.CommandContext using the passed context.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Runner runs ping commands
type Runner struct {
	command   CommandFunc
	waitDelay time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithCommandFunc replaces how commands get created, mostly for tests.
func WithCommandFunc(fn CommandFunc) Option {
	return func(r *Runner) {
		r.command = fn
	}
}

// WithWaitDelay sets how long a terminated process gets before it is killed.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.waitDelay = d
	}
}

// New creates a new Runner
func New(opts ...Option) *Runner {
	r := &Runner{
		command:   exec.CommandContext,
		waitDelay: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunSync runs argv and blocks until it exits or the timeout elapses. A
// timeout is not an error here: the process is terminated and the returned
// Outcome has TimedOut set and no exit code.
func (r *Runner) RunSync(ctx context.Context, argv []string, timeout time.Duration) (Outcome, error) {
	p, err := r.RunAsync(ctx, argv, timeout)
	if err != nil {
		return Outcome{}, err
	}
	out, err := p.Wait()
	if errors.Is(err, ErrTimeout) {
		return out, nil
	}
	return out, err
}

// RunAsync starts argv and returns without waiting for it. It fails right
// away, without starting anything, if ctx is already done. Start failures
// such as a missing binary are returned as is.
func (r *Runner) RunAsync(ctx context.Context, argv []string, timeout time.Duration) (*Pending, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	cmd := r.command(runCtx, argv[0], argv[1:]...)
	p := &Pending{
		cmd:     cmd,
		ctx:     ctx,
		runCtx:  runCtx,
		cancel:  cancel,
		timeout: timeout,
		done:    make(chan struct{}),
	}
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr
	cmd.Cancel = func() error { return terminate(cmd.Process) }
	cmd.WaitDelay = r.waitDelay

	log.WithFields(log.Fields{"argv": argv, "timeout": timeout}).Debug("starting ping")
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}

	go p.wait()
	return p, nil
}

// Pending is a command running in the background
type Pending struct {
	cmd     *exec.Cmd
	ctx     context.Context
	runCtx  context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	stdout bytes.Buffer
	stderr bytes.Buffer

	done    chan struct{}
	outcome Outcome
	err     error
}

// Done is closed once the process has exited and its output is collected.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits. A non-zero exit status is not an
// error; cancellation yields ErrAborted and an expired deadline ErrTimeout,
// both together with whatever output was collected.
func (p *Pending) Wait() (Outcome, error) {
	<-p.done
	return p.outcome, p.err
}

func (p *Pending) wait() {
	defer close(p.done)
	defer p.cancel()

	err := p.cmd.Wait()
	p.outcome = Outcome{
		Stdout: p.stdout.String(),
		Stderr: p.stderr.String(),
	}
	setStatus(&p.outcome, p.cmd.ProcessState)

	switch {
	case p.ctx.Err() != nil:
		p.err = fmt.Errorf("%w: %w", ErrAborted, context.Cause(p.ctx))
	case errors.Is(p.runCtx.Err(), context.DeadlineExceeded):
		p.outcome.TimedOut = true
		p.err = fmt.Errorf("%w after %s", ErrTimeout, p.timeout)
	case err != nil:
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			p.err = err
		}
	}

	log.WithFields(log.Fields{
		"argv":      p.cmd.Args,
		"exit_code": p.outcome.ExitCode,
		"signal":    p.outcome.Signal,
		"err":       p.err,
	}).Debug("ping finished")
}

func setStatus(o *Outcome, ps *os.ProcessState) {
	if ps == nil {
		return
	}
	if code := ps.ExitCode(); code >= 0 {
		o.ExitCode = &code
		return
	}
	o.Signal = signalName(ps)
}
