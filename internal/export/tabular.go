/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/rota"
)

// ErrUnknownFormat is returned for export formats this package cannot produce.
var ErrUnknownFormat = errors.New("unknown export format")

// Result is a rendered export ready to be served or written to disk.
type Result struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Document is the serialized form of a plan used by the JSON and YAML
// exports and accepted back by `crewrota validate`.
type Document struct {
	ID               string         `json:"id,omitempty" yaml:"id,omitempty"`
	Params           rota.Params    `json:"params" yaml:"params"`
	CoverageStartDay int            `json:"coverage_start_day" yaml:"coverage_start_day"`
	HorizonDays      int            `json:"horizon_days" yaml:"horizon_days"`
	DutyCeiling      int            `json:"duty_ceiling" yaml:"duty_ceiling"`
	Degraded         bool           `json:"degraded" yaml:"degraded"`
	Findings         []rota.Finding `json:"findings" yaml:"findings"`
	Schedule         rota.Schedule  `json:"schedule" yaml:"schedule"`
}

// NewDocument captures a plan.
func NewDocument(plan *planner.Plan) Document {
	return Document{
		ID:               plan.ID,
		Params:           plan.Params,
		CoverageStartDay: plan.CoverageStartDay,
		HorizonDays:      plan.HorizonDays,
		DutyCeiling:      plan.DutyCeiling,
		Degraded:         plan.Degraded,
		Findings:         plan.Findings,
		Schedule:         plan.Schedule,
	}
}

// Plan turns a decoded document back into a plan without re-solving it.
func (d Document) Plan() *planner.Plan {
	horizon := d.HorizonDays
	if horizon <= 0 {
		horizon = d.Schedule.Days()
	}
	return &planner.Plan{
		ID:               d.ID,
		Params:           d.Params,
		Schedule:         d.Schedule,
		CoverageStartDay: d.CoverageStartDay,
		HorizonDays:      horizon,
		Findings:         d.Findings,
		DutyCeiling:      d.Schedule.DutyCeiling(),
		Degraded:         d.Degraded,
	}
}

// csvHeader is the first record of a CSV export.
var csvHeader = []string{"day", "label", "date", "anchor", "flex-a", "flex-b", "on_duty"}

// WriteCSV writes one record per day with the one-letter state codes.
func WriteCSV(w io.Writer, plan *planner.Plan, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	start := opts.startDate()
	s := plan.Schedule
	for day := 0; day < s.Days(); day++ {
		record := []string{
			strconv.Itoa(day),
			DayLabel(day, plan.CoverageStartDay),
			start.AddDate(0, 0, day).Format("2006-01-02"),
		}
		for _, id := range rota.Workers {
			record = append(record, string(s.At(id, day).Code()))
		}
		record = append(record, strconv.Itoa(s.DutyCount(day)))
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteYAML writes the plan document as YAML.
func WriteYAML(w io.Writer, plan *planner.Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(plan)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes the plan document as indented JSON.
func WriteJSON(w io.Writer, plan *planner.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(plan))
}

// ReadDocument decodes a JSON or YAML plan document. Params use different
// keys in the two encodings, so the format is sniffed rather than letting the
// YAML decoder read JSON.
func ReadDocument(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read plan document: %w", err)
	}

	var doc Document
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return Document{}, fmt.Errorf("decode plan document: %w", err)
	}
	if doc.Schedule.Days() == 0 {
		return Document{}, fmt.Errorf("decode plan document: schedule is empty")
	}
	return doc, nil
}

// Export renders plan in one of the byte-oriented formats: csv, json, yaml,
// ical or html.
func Export(plan *planner.Plan, format string, opts Options) (*Result, error) {
	var buf bytes.Buffer
	slug := planSlug(plan)

	switch strings.ToLower(format) {
	case "csv":
		if err := WriteCSV(&buf, plan, opts); err != nil {
			return nil, err
		}
		return &Result{Data: buf.Bytes(), Filename: slug + ".csv", ContentType: "text/csv; charset=utf-8"}, nil
	case "json":
		if err := WriteJSON(&buf, plan); err != nil {
			return nil, err
		}
		return &Result{Data: buf.Bytes(), Filename: slug + ".json", ContentType: "application/json"}, nil
	case "yaml", "yml":
		if err := WriteYAML(&buf, plan); err != nil {
			return nil, err
		}
		return &Result{Data: buf.Bytes(), Filename: slug + ".yaml", ContentType: "application/yaml"}, nil
	case "ical", "ics":
		return ExportICal(plan, opts), nil
	case "html":
		return ExportHTML(plan)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
