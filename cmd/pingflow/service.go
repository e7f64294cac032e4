package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pingflow/internal/config"
	"pingflow/internal/database"
	"pingflow/internal/logging"
	"pingflow/internal/monitor"
	"pingflow/internal/report"
	"pingflow/internal/web"
)

func openDatabase(cfg config.Config) (*database.DB, error) {
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return db, nil
}

func newMonitorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "ping every target continuously, store the results and serve them over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.signal(cmd.Context())
			defer cancel()

			db, err := openDatabase(a.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			var rec *logging.Recorder
			if a.cfg.Logging.Results != "" {
				rec, err = logging.NewRecorder(a.cfg.Logging.Results, a.cfg.Logging.MaxMB, a.cfg.Logging.MaxFiles)
				if err != nil {
					return err
				}
				defer rec.Close()
			}

			mon := monitor.New(a.cfg, db, monitor.WithRecorder(rec), monitor.WithPingOptions(a.pingOpts...))
			srv := web.New(db, mon, a.cfg.Port)

			g, gctx := errgroup.WithContext(ctx)
			if err := mon.Start(); err != nil {
				return err
			}
			g.Go(func() error {
				return srv.Run(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				mon.Stop()
				mon.Wait()
				return nil
			})

			log.WithField("url", fmt.Sprintf("http://localhost:%d/api/live", a.cfg.Port)).Info("api available")
			return g.Wait()
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "write latency and packet loss charts plus a text summary of the stored results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(a.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			dir, err := report.NewGenerator(db).GenerateReport(a.cfg.Report.Dir, a.cfg.Report.Hours)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
