/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/crewrota/internal/export"
)

var (
	reportCycle    cycleFlags
	reportOut      string
	reportFallback bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a printable schedule report",
	Long: `Write the schedule report as HTML, or rasterize it to PDF or PNG with a
headless browser. The format follows the --out extension.

Examples:
  crewrota report -n 14 -m 7 -i 5 --days 45 --out rota.html
  crewrota report -n 14 -m 7 -i 5 --days 45 --out rota.pdf
`,
	RunE: runReport,
}

func init() {
	reportCycle.register(reportCmd)
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Output file: .html, .pdf or .png")
	reportCmd.Flags().BoolVar(&reportFallback, "fallback", false, "Report the degraded baseline when no schedule is found")
	_ = reportCmd.MarkFlagRequired("days")
	_ = reportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := loadConfig(true); err != nil {
		return err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(reportOut)), ".")
	var rendered export.Format
	if ext != "html" {
		f, err := export.ParseFormat(ext)
		if err != nil {
			return fmt.Errorf("--out %s: %w", reportOut, err)
		}
		rendered = f
	}

	ctx, cancel := signalContext()
	defer cancel()
	svc, release := newPlanner()
	defer release()

	plan, err := svc.Plan(ctx, reportCycle.params(), reportFallback)
	if err != nil {
		return err
	}

	var res *export.Result
	if rendered == "" {
		res, err = export.ExportHTML(plan)
	} else {
		res, err = export.NewRenderer(cfg.BrowserBin, logger).RenderPlan(ctx, plan, rendered)
	}
	if err != nil {
		return err
	}
	if err := writeFile(reportOut, res.Data); err != nil {
		return err
	}
	logger.Info().Str("path", reportOut).Int("bytes", len(res.Data)).Msg("report written")
	return nil
}
