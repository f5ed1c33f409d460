package main

import (
	"strings"
	"testing"
	"time"
)

func TestExportOptions(t *testing.T) {
	opts, err := exportOptions("2026-03-02", 14)
	if err != nil {
		t.Fatalf("exportOptions: %v", err)
	}
	if !opts.StartDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) || opts.GridWidth != 14 {
		t.Fatalf("unexpected options %+v", opts)
	}

	if _, err := exportOptions("02/03/2026", 0); err == nil || !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Fatalf("expected date format error, got %v", err)
	}
}

func TestGenerateRequiresExactlyOneHorizon(t *testing.T) {
	rootCmd.SetArgs([]string{"generate", "-n", "14", "-m", "7", "-i", "5", "--days", "45", "--required-duty-days", "30"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "days") {
		t.Fatalf("expected mutually exclusive flag error, got %v", err)
	}
}
