/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/friendsincode/crewrota/internal/rota"
	"github.com/friendsincode/crewrota/internal/sweep"
)

var (
	sweepTotals      []int
	sweepAll         bool
	sweepConcurrency int
	casesFile        string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Search the parameter grid for inputs that fail to generate",
	Long: `Try every N in [3,25], M in [3,10] and induction in [1,5] (skipping
N <= induction+1) for each total horizon, and report inputs where generation
fails. Stops at the first failure in scan order unless --all is given.
`,
	RunE: runSweep,
}

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Run the fixed regression cases",
	Long: `Generate and validate each case, printing the finding count and the
rest-day count of both flexible workers.

A case file lists parameters in YAML:

  cases:
    - {n: 14, m: 7, induction: 5, days: 90}
`,
	RunE: runCases,
}

func init() {
	sweepCmd.Flags().IntSliceVar(&sweepTotals, "totals", sweep.DefaultTotals, "Horizons to sweep")
	sweepCmd.Flags().BoolVar(&sweepAll, "all", false, "Report every failure instead of stopping at the first")
	sweepCmd.Flags().IntVar(&sweepConcurrency, "concurrency", 0, "Parallel solves (default GOMAXPROCS)")
	casesCmd.Flags().StringVar(&casesFile, "file", "", "YAML case list (default: the built-in cases)")
	casesCmd.Flags().IntVar(&sweepConcurrency, "concurrency", 0, "Parallel solves (default GOMAXPROCS)")
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(casesCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	if err := loadConfig(true); err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	opts := sweep.DefaultOptions()
	opts.Totals = sweepTotals
	opts.All = sweepAll
	opts.Concurrency = sweepConcurrency

	report, err := sweep.New(rota.NewGenerator(cfg.SolverConfig()), logger).Run(ctx, opts)
	if err != nil {
		return err
	}
	if len(report.Failures) == 0 {
		fmt.Printf("%s (%d inputs checked)\n", color.GreenString("No FAIL found in searched range."), report.Checked)
		return nil
	}
	for _, f := range report.Failures {
		fmt.Println(color.RedString(f.String()))
	}
	return nil
}

func runCases(cmd *cobra.Command, args []string) error {
	if err := loadConfig(true); err != nil {
		return err
	}

	cases := sweep.DefaultCases
	if casesFile != "" {
		f, err := os.Open(casesFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", casesFile, err)
		}
		defer f.Close()
		if cases, err = sweep.LoadCases(f); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := sweep.New(rota.NewGenerator(cfg.SolverConfig()), logger).RunCases(ctx, cases, sweepConcurrency)
	if err != nil {
		return err
	}
	for _, r := range results {
		line := r.String()
		if r.Err != nil {
			line = color.RedString(line)
		}
		fmt.Println(line)
	}
	return nil
}
