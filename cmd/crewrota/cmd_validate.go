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

	"github.com/friendsincode/crewrota/internal/export"
	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/rota"
)

var (
	validateFile    string
	validateGrace   int
	validateHorizon int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a schedule file for pattern and coverage violations",
	Long: `Check a schedule written by "crewrota generate --format json|yaml".

Under-coverage before the grace day is ignored; three workers on duty is
reported on any day. The grace day defaults to the file's coverage start day.
Exits non-zero when any finding is reported.
`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFile, "file", "", "Schedule document (JSON or YAML)")
	validateCmd.Flags().IntVar(&validateGrace, "grace", -1, "Grace days before coverage is enforced (default: the file's coverage start day)")
	validateCmd.Flags().IntVar(&validateHorizon, "horizon", 0, "Days to check (default: the whole schedule)")
	_ = validateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(true); err != nil {
		return err
	}

	f, err := os.Open(validateFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", validateFile, err)
	}
	defer f.Close()

	doc, err := export.ReadDocument(f)
	if err != nil {
		return err
	}

	grace := validateGrace
	if grace < 0 {
		grace = doc.CoverageStartDay
		if grace == 0 {
			grace = rota.CoverageStartDay(doc.Params)
		}
	}

	svc := planner.New(cfg.SolverConfig(), cfg.SolverTimeout, logger)
	findings := svc.Validate(cmd.Context(), doc.Schedule, validateHorizon, grace)

	opts := export.Options{Color: !color.NoColor}
	if err := export.WriteFindings(os.Stdout, findings, opts); err != nil {
		return err
	}
	if len(findings) > 0 {
		return fmt.Errorf("%s: %d findings", validateFile, len(findings))
	}
	return nil
}
