// Command pcpplots generates the porkchop plot data of an interplanetary transfer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cachemcclure/astrora"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type options struct {
	scenario    string
	cpus        int
	debug       bool
	metricsFile string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "pcpplots",
		Short: "Generate porkchop plot data from a scenario",
		Long: `Solves the Lambert problem of every launch and arrival date pair of a scenario
and writes the departure C3, arrival v-infinity and time of flight grids as
contour-<prefix>-{c3,tof,vinf,dates}.dat files.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "scenario TOML to generate the PCP from")
	cmd.Flags().IntVar(&opts.cpus, "cpus", 0, "number of workers (0 uses the scenario, then all CPUs)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "log every failed transfer")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write the solver metrics to this file in the Prometheus text format")
	cmd.MarkFlagRequired("scenario")
	return cmd
}

func newLogger(debug bool) kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	if debug {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

func run(ctx context.Context, opts *options) error {
	logger := newLogger(opts.debug)
	sc, err := loadScenario(opts.scenario)
	if err != nil {
		return err
	}
	if opts.cpus > 0 {
		sc.Lambert.Workers = opts.cpus
	}
	reg := prometheus.NewRegistry()
	metrics, err := astrora.NewMetrics(reg)
	if err != nil {
		return err
	}
	solver, err := astrora.NewSolver(sc.Lambert, logger, metrics)
	if err != nil {
		return err
	}

	pcp := sc.Porkchop
	level.Info(logger).Log("subsys", "pcpplots", "departure", pcp.Departure.Name, "arrival", pcp.Arrival.Name,
		"launch_from", pcp.LaunchFrom, "launch_until", pcp.LaunchUntil,
		"arrival_from", pcp.ArrivalFrom, "arrival_until", pcp.ArrivalUntil, "kind", pcp.Kind, "revs", pcp.Revs)
	start := time.Now()
	plot, err := astrora.GeneratePorkchop(ctx, solver, pcp)
	if err != nil {
		return err
	}
	if err := plot.WriteDat(sc.OutputDir, sc.Prefix); err != nil {
		return err
	}
	level.Info(logger).Log("subsys", "pcpplots", "status", "finished", "cells", len(plot.Launches)*len(plot.Arrivals),
		"failures", plot.Failures, "duration", time.Since(start))
	if i, j, c3, ok := plot.Best(); ok {
		level.Info(logger).Log("subsys", "pcpplots", "best_launch", plot.Launches[i], "best_arrival", plot.Arrivals[j],
			"c3(km^2/s^2)", c3, "vinf(km/s)", plot.VInfArrival[i][j], "tof(days)", plot.TOF[i][j])
	} else {
		level.Warn(logger).Log("subsys", "pcpplots", "message", "no feasible transfer in the windows")
	}
	fmt.Printf("=== MatLab ===\npcpplots('%s', '%s', '%s', '%s')\n", sc.Prefix, pcp.LaunchFrom.Format("2006-01-02"), pcp.ArrivalFrom.Format("2006-01-02"), pcp.Arrival.Name)

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pcpplots: %s\n", err)
		stop()
		os.Exit(1)
	}
}
