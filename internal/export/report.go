/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/rota"
)

// MaxGridDays is the longest horizon whose grid is drawn in the report; longer
// plans get a note pointing at the CSV and PNG exports instead.
const MaxGridDays = 100

type reportRow struct {
	Worker rota.WorkerID
	Cells  []reportCell
}

type reportCell struct {
	Code  string
	Class string
}

type reportCount struct {
	Count int
	Bad   bool
}

type reportView struct {
	Title       string
	Params      rota.Params
	HorizonDays int
	DutyCeiling int
	Degraded    bool
	Findings    []rota.Finding
	ShowGrid    bool
	Labels      []string
	Rows        []reportRow
	Counts      []reportCount
	GeneratedAt string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        @page { size: A4 landscape; margin: 1cm; }
        body { font-family: Arial, sans-serif; font-size: 10pt; line-height: 1.4; color: #2c3e50; }
        h1 { font-size: 16pt; background: #2c3e50; color: #fff; padding: 4mm 5mm; margin: 0 0 5mm; }
        h2 { font-size: 12pt; margin: 6mm 0 3mm; border-bottom: 2px solid #2c3e50; }
        .params { background: #f8f9fa; border: 1px solid #ccc; padding: 3mm 5mm; }
        .params span { margin-right: 10mm; }
        .banner { padding: 2mm 5mm; color: #fff; font-weight: bold; margin-top: 5mm; }
        .banner.ok { background: #28a745; }
        .banner.bad { background: #dc3545; }
        .banner.degraded { background: #856404; }
        ul.findings { columns: 3; font-size: 8pt; }
        table.grid { border-collapse: collapse; font-family: monospace; font-size: 8pt; }
        table.grid th, table.grid td { border: 1px solid #ddd; width: 6mm; text-align: center; padding: 0.5mm; }
        table.grid th.worker { width: auto; text-align: left; padding-right: 2mm; }
        td.ascent { background: #9ad0ec; }
        td.induction { background: #ffe08a; }
        td.duty { background: #7bc67b; }
        td.descent { background: #d6a2e8; }
        td.rest { background: #c8d6e5; }
        td.wait { background: #f1f2f6; }
        td.bad { background: #dc3545; color: #fff; font-weight: bold; }
        .note { background: #fff3cd; border: 1px solid #ffc107; color: #856404; padding: 3mm 5mm; }
        .footer { margin-top: 8mm; font-size: 8pt; color: #666; text-align: center; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="params">
        <span>N (duty): {{.Params.DutyCycleLength}}</span>
        <span>M (rest): {{.Params.RestCycleLength}}</span>
        <span>Induction: {{.Params.InductionLength}}</span>
        <span>Days: {{.HorizonDays}}</span>
        {{if .DutyCeiling}}<span>Duty ceiling: {{.DutyCeiling}}</span>{{end}}
    </div>
{{if .Degraded}}    <div class="banner degraded">No feasible rotation was found; showing the unsolved baseline</div>
{{end}}{{if .Findings}}    <div class="banner bad">{{len .Findings}} findings</div>
    <ul class="findings">
{{range .Findings}}        <li>{{.}}</li>
{{end}}    </ul>
{{else}}    <div class="banner ok">Validation passed: coverage and patterns are valid</div>
{{end}}
    <h2>Schedule</h2>
{{if .ShowGrid}}    <table class="grid">
        <tr><th class="worker">day</th>{{range .Labels}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}        <tr><th class="worker">{{.Worker}}</th>{{range .Cells}}<td class="{{.Class}}">{{.Code}}</td>{{end}}</tr>
{{end}}        <tr><th class="worker">on duty</th>{{range .Counts}}<td{{if .Bad}} class="bad"{{end}}>{{.Count}}</td>{{end}}</tr>
    </table>
{{else}}    <div class="note">The {{.HorizonDays}}-day schedule is too long to draw here. Export it as CSV or PNG to inspect it day by day.</div>
{{end}}
    <div class="footer">Generated by crewrota on {{.GeneratedAt}}</div>
</body>
</html>
`))

// ExportHTML renders the printable report.
func ExportHTML(plan *planner.Plan) (*Result, error) {
	s := plan.Schedule
	view := reportView{
		Title:       planTitle(plan),
		Params:      plan.Params,
		HorizonDays: plan.HorizonDays,
		DutyCeiling: plan.DutyCeiling,
		Degraded:    plan.Degraded,
		Findings:    plan.Findings,
		ShowGrid:    s.Days() <= MaxGridDays,
		GeneratedAt: time.Now().Format("January 2, 2006 at 3:04 PM"),
	}

	if view.ShowGrid {
		for day := 0; day < s.Days(); day++ {
			view.Labels = append(view.Labels, DayLabel(day, plan.CoverageStartDay))
			n := s.DutyCount(day)
			view.Counts = append(view.Counts, reportCount{Count: n, Bad: n != 2})
		}
		for _, id := range rota.Workers {
			row := reportRow{Worker: id}
			for _, st := range s.Worker(id) {
				row.Cells = append(row.Cells, reportCell{Code: string(st.Code()), Class: st.String()})
			}
			view.Rows = append(view.Rows, row)
		}
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return &Result{
		Data:        buf.Bytes(),
		Filename:    planSlug(plan) + ".html",
		ContentType: "text/html; charset=utf-8",
	}, nil
}
