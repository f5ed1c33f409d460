/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package export renders plans as text grids, CSV, YAML, iCalendar and
// printable HTML, and rasterizes the HTML report to PNG or PDF.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/rota"
)

// DefaultGridWidth is how many days one grid band shows before wrapping.
const DefaultGridWidth = 30

// Options controls the presentation shared by all formats.
type Options struct {
	// StartDate anchors day 0 on the calendar. Zero means today (UTC).
	StartDate time.Time
	// GridWidth is the number of day columns per grid band.
	GridWidth int
	// Color enables ANSI colouring of the text grid.
	Color bool
}

func (o Options) startDate() time.Time {
	d := o.StartDate
	if d.IsZero() {
		d = time.Now().UTC()
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// DayLabel returns the column heading of a day. Days inside the grace period
// are labelled S (the ascent day) and I1, I2, ...; the rest are counted D1,
// D2, ... from the coverage-start day. A non-positive grace numbers every day
// from 1.
func DayLabel(day, grace int) string {
	if grace <= 0 {
		return strconv.Itoa(day + 1)
	}
	if day < grace {
		if day == 0 {
			return "S"
		}
		return "I" + strconv.Itoa(day)
	}
	return "D" + strconv.Itoa(day-grace+1)
}

var stateColors = map[rota.DayState]*color.Color{
	rota.Ascent:    color.New(color.FgCyan),
	rota.Induction: color.New(color.FgYellow),
	rota.Duty:      color.New(color.FgGreen, color.Bold),
	rota.Descent:   color.New(color.FgMagenta),
	rota.Rest:      color.New(color.FgBlue),
	rota.Wait:      color.New(color.FgHiBlack),
}

var (
	okCount  = color.New(color.FgGreen)
	badCount = color.New(color.FgRed, color.Bold)
)

// WriteGrid writes the plan as a text grid: a day-label header, one row per
// worker and a row counting the workers on duty each day. Counts other than 2
// are marked with '!' (or red when colour is enabled).
func WriteGrid(w io.Writer, plan *planner.Plan, opts Options) error {
	width := opts.GridWidth
	if width <= 0 {
		width = DefaultGridWidth
	}
	bw := bufio.NewWriter(w)
	s := plan.Schedule
	grace := plan.CoverageStartDay

	paint := func(c *color.Color, text string) string {
		if !opts.Color {
			return text
		}
		return c.Sprint(text)
	}

	for from := 0; from < s.Days(); from += width {
		to := min(from+width, s.Days())
		if from > 0 {
			fmt.Fprintln(bw)
		}

		fmt.Fprintf(bw, "%-8s", "day")
		for day := from; day < to; day++ {
			fmt.Fprintf(bw, "%4s", DayLabel(day, grace))
		}
		fmt.Fprintln(bw)

		for _, id := range rota.Workers {
			fmt.Fprintf(bw, "%-8s", id)
			for day := from; day < to; day++ {
				st := s.At(id, day)
				fmt.Fprintf(bw, "   %s", paint(stateColors[st], string(st.Code())))
			}
			fmt.Fprintln(bw)
		}

		fmt.Fprintf(bw, "%-8s", "on duty")
		for day := from; day < to; day++ {
			n := s.DutyCount(day)
			if n == 2 {
				fmt.Fprintf(bw, "   %s", paint(okCount, "2"))
				continue
			}
			if opts.Color {
				fmt.Fprintf(bw, "   %s", badCount.Sprint(n))
				continue
			}
			fmt.Fprintf(bw, "%4s", strconv.Itoa(n)+"!")
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// WriteFindings lists findings one per line, or a single success line.
func WriteFindings(w io.Writer, findings []rota.Finding, opts Options) error {
	bw := bufio.NewWriter(w)
	if len(findings) == 0 {
		line := "no findings: coverage and patterns are valid"
		if opts.Color {
			line = okCount.Sprint(line)
		}
		fmt.Fprintln(bw, line)
		return bw.Flush()
	}

	header := fmt.Sprintf("%d findings", len(findings))
	if opts.Color {
		header = badCount.Sprint(header)
	}
	fmt.Fprintln(bw, header)
	for _, f := range findings {
		fmt.Fprintf(bw, "  %s\n", f)
	}
	return bw.Flush()
}
