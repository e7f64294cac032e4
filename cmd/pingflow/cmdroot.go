package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pingflow/internal/config"
	"pingflow/internal/logging"
	"pingflow/internal/ping"
)

// app carries the resolved configuration from the root command to its
// subcommands
type app struct {
	flags  config.Flags
	cfg    config.Config
	logs   io.Closer
	signal func(context.Context) (context.Context, context.CancelFunc)

	// pingOpts apply to every pinger the commands create
	pingOpts []ping.Option
}

func newRootCmd(pingOpts ...ping.Option) *cobra.Command {
	a := &app{signal: notifyContext, pingOpts: pingOpts}

	rootCmd := &cobra.Command{
		Use:          "pingflow",
		Short:        "pingflow pings hosts with the system ping and streams, stores and reports the results",
		Version:      "0.3",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.flags.Resolve(cmd)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logs, err = logging.Setup(logging.Config{
				Level:    cfg.Logging.Level,
				Dir:      cfg.Logging.Dir,
				MaxMB:    cfg.Logging.MaxMB,
				MaxFiles: cfg.Logging.MaxFiles,
			})
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logs != nil {
				return a.logs.Close()
			}
			return nil
		},
	}
	a.flags.Register(rootCmd)

	rootCmd.AddCommand(
		newPingCmd(a),
		newStreamCmd(a),
		newSweepCmd(a),
		newMonitorCmd(a),
		newReportCmd(a),
	)
	return rootCmd
}

func notifyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// pinger returns a pinger for host using cfg and the app's ping options.
func (a *app) pinger(host string, cfg ping.Config) *ping.Pinger {
	return ping.New(host, append([]ping.Option{ping.WithConfig(cfg)}, a.pingOpts...)...)
}

// printJSON writes v as a single JSON line.
func printJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
