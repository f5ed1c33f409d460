/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/friendsincode/crewrota/internal/export"
	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/rota"
)

// cycleFlags are the rotation parameters shared by generate and report.
type cycleFlags struct {
	duty      int
	rest      int
	induction int
	days      int
}

func (f *cycleFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.duty, "duty", "n", 0, "Duty cycle length N in days")
	cmd.Flags().IntVarP(&f.rest, "rest", "m", 0, "Rest cycle length M in days")
	cmd.Flags().IntVarP(&f.induction, "induction", "i", 0, "Induction length in days (1-5)")
	cmd.Flags().IntVar(&f.days, "days", 0, "Horizon in days")
	_ = cmd.MarkFlagRequired("duty")
	_ = cmd.MarkFlagRequired("rest")
	_ = cmd.MarkFlagRequired("induction")
}

func (f *cycleFlags) params() rota.Params {
	return rota.Params{
		DutyCycleLength: f.duty,
		RestCycleLength: f.rest,
		InductionLength: f.induction,
		HorizonDays:     f.days,
	}
}

var (
	genCycle     cycleFlags
	genRequired  int
	genFormat    string
	genFallback  bool
	genStartDate string
	genOut       string
	genWidth     int
	genNoColor   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a rotation schedule",
	Long: `Generate a rotation schedule for one anchor and two flexible workers.

Either a fixed horizon (--days) or a number of covered duty days
(--required-duty-days) must be given.

Examples:
  # 45-day schedule for a 14/7 rotation with a 5-day induction
  crewrota generate -n 14 -m 7 -i 5 --days 45

  # Grow the horizon until 90 days are covered, as CSV
  crewrota generate -n 14 -m 7 -i 5 --required-duty-days 90 --format csv

  # Fall back to the unsolved baseline instead of failing
  crewrota generate -n 14 -m 7 -i 5 --days 45 --fallback
`,
	RunE: runGenerate,
}

func init() {
	genCycle.register(generateCmd)
	generateCmd.Flags().IntVar(&genRequired, "required-duty-days", 0, "Covered duty days to reach; the horizon grows to fit")
	generateCmd.Flags().StringVarP(&genFormat, "format", "f", "grid", "Output format: grid, json, yaml, csv, ical or html")
	generateCmd.Flags().BoolVar(&genFallback, "fallback", false, "Return the degraded baseline when no schedule is found")
	generateCmd.Flags().StringVar(&genStartDate, "start-date", "", "Calendar date of day 0 (YYYY-MM-DD, default today)")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "Write to this file instead of stdout")
	generateCmd.Flags().IntVar(&genWidth, "width", export.DefaultGridWidth, "Days per grid band")
	generateCmd.Flags().BoolVar(&genNoColor, "no-color", false, "Disable coloured grid output")
	generateCmd.MarkFlagsMutuallyExclusive("days", "required-duty-days")
	generateCmd.MarkFlagsOneRequired("days", "required-duty-days")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(true); err != nil {
		return err
	}
	opts, err := exportOptions(genStartDate, genWidth)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	svc, release := newPlanner()
	defer release()

	var plan *planner.Plan
	if genRequired > 0 {
		p := genCycle.params()
		p.RequiredDutyDays = genRequired
		plan, err = svc.PlanRequiredDutyDays(ctx, p, genFallback)
	} else {
		plan, err = svc.Plan(ctx, genCycle.params(), genFallback)
	}
	if err != nil {
		return err
	}
	if plan.Degraded {
		fmt.Fprintln(os.Stderr, color.YellowString("warning: no feasible schedule found, showing the unsolved baseline"))
	}

	out, closeOut, err := openOutput(genOut)
	if err != nil {
		return err
	}
	defer closeOut()

	format := strings.ToLower(genFormat)
	if format == "grid" {
		opts.Color = genOut == "" && !genNoColor && !color.NoColor
		return writeGridReport(out, plan, opts)
	}
	res, err := export.Export(plan, format, opts)
	if err != nil {
		return err
	}
	_, err = out.Write(res.Data)
	return err
}

// writeGridReport prints the grid followed by the findings.
func writeGridReport(w io.Writer, plan *planner.Plan, opts export.Options) error {
	fmt.Fprintf(w, "N=%d M=%d induction=%d horizon=%d coverage from day %d, duty ceiling %d\n\n",
		plan.Params.DutyCycleLength, plan.Params.RestCycleLength, plan.Params.InductionLength,
		plan.HorizonDays, plan.CoverageStartDay, plan.DutyCeiling)
	if err := export.WriteGrid(w, plan, opts); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return export.WriteFindings(w, plan.Findings, opts)
}

func exportOptions(startDate string, width int) (export.Options, error) {
	opts := export.Options{GridWidth: width}
	if startDate != "" {
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return opts, fmt.Errorf("invalid --start-date %q: want YYYY-MM-DD", startDate)
		}
		opts.StartDate = start
	}
	return opts, nil
}

// openOutput returns stdout for an empty path.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// writeFile writes data to path, or stdout when path is "-".
func writeFile(path string, data []byte) error {
	if path == "-" {
		_, err := io.Copy(os.Stdout, bytes.NewReader(data))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
