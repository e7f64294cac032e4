package main

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pingflow/internal/ping"
)

func newPingCmd(a *app) *cobra.Command {
	var async bool

	cmd := &cobra.Command{
		Use:   "ping HOST",
		Short: "run ping once and print the parsed result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.signal(cmd.Context())
			defer cancel()

			host := args[0]
			p := a.pinger(host, a.cfg.PingConfig(host))
			log.WithField("argv", p.Command()).Debug("running ping")

			if !async {
				res, err := p.Run(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			}

			pending, err := p.RunAsync(ctx)
			if err != nil {
				return err
			}
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-pending.Done():
					res, err := pending.Wait()
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), res)
				case <-ticker.C:
					log.WithField("host", host).Info("waiting for ping")
				}
			}
		},
	}
	cmd.Flags().BoolVar(&async, "async", false, "start ping in the background and report progress while waiting")
	return cmd
}

func newSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep [HOST...]",
		Short: "ping several hosts concurrently, the configured targets by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.signal(cmd.Context())
			defer cancel()

			hosts := args
			if len(hosts) == 0 {
				hosts = a.cfg.Targets
			}

			var failed int
			for res := range ping.Sweep(ctx, hosts, a.cfg.Workers, append([]ping.Option{ping.WithConfig(a.cfg.PingConfig(""))}, a.pingOpts...)...) {
				if !res.Succeeded() {
					failed++
				}
				if err := printJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if failed > 0 {
				log.WithFields(log.Fields{"failed": failed, "hosts": len(hosts)}).Warn("sweep finished with failures")
				return errors.New("not all hosts replied")
			}
			return nil
		},
	}
}
