package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"pingflow/internal/models"
	"pingflow/internal/stream"
)

type streamOptions struct {
	take         int
	sliding      bool
	batch        int
	batchTimeout time.Duration
	stats        bool
	skipFailures bool
}

func newStreamCmd(a *app) *cobra.Command {
	var opts streamOptions

	cmd := &cobra.Command{
		Use:   "stream HOST",
		Short: "ping a host repeatedly and print every result as it arrives",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(*cobra.Command, []string) error {
			modes := 0
			for _, on := range []bool{opts.sliding, opts.batch > 0, opts.stats} {
				if on {
					modes++
				}
			}
			if modes > 1 {
				return errors.New("--sliding, --batch and --stats are mutually exclusive")
			}
			if opts.batchTimeout > 0 && opts.batch == 0 {
				return errors.New("--batch-timeout requires --batch")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.signal(cmd.Context())
			defer cancel()

			host := args[0]
			cfg := a.cfg.PingConfig(host)
			if !cmd.Flags().Changed("count") {
				cfg.Count = 0
			}

			results := a.pinger(host, cfg).Stream(ctx)
			if opts.skipFailures {
				results = stream.SkipFailures(ctx, results)
			}
			if opts.take > 0 {
				results = stream.Take(ctx, results, opts.take)
			}

			out := cmd.OutOrStdout()
			switch {
			case opts.stats:
				return drain(stream.RollingStats(ctx, results, a.cfg.Window), func(s models.RollingStats) error {
					return printJSON(out, s)
				})
			case opts.sliding:
				return drain(stream.Window(ctx, results, a.cfg.Window), func(w []models.ProbeResult) error {
					return printJSON(out, w)
				})
			case opts.batch > 0:
				return drain(stream.BatchWithTimeout(ctx, results, opts.batch, opts.batchTimeout), func(b []models.ProbeResult) error {
					return printJSON(out, b)
				})
			default:
				return drain(results, func(r models.ProbeResult) error {
					return printJSON(out, r)
				})
			}
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&opts.take, "take", 0, "stop after this many results, 0 for no limit")
	fs.BoolVar(&opts.sliding, "sliding", false, "print sliding windows of --window results")
	fs.IntVar(&opts.batch, "batch", 0, "print results in batches of this size")
	fs.DurationVar(&opts.batchTimeout, "batch-timeout", 0, "flush a partial batch after this long")
	fs.BoolVar(&opts.stats, "stats", false, "print rolling statistics over --window results")
	fs.BoolVar(&opts.skipFailures, "skip-failures", false, "drop failed probes")
	return cmd
}

// drain hands every value of ch to fn until ch is closed or fn fails.
func drain[T any](ch <-chan T, fn func(T) error) error {
	for v := range ch {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}
