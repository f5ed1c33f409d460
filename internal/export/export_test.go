package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/crewrota/internal/planner"
	"github.com/friendsincode/crewrota/internal/rota"
)

func testPlan(t *testing.T) *planner.Plan {
	t.Helper()
	seqs := make([]rota.Sequence, 3)
	for i, codes := range []string{"AIDDDDER", "AIDDERRA", "---AIDDD"} {
		seq, err := rota.ParseSequence(codes)
		if err != nil {
			t.Fatalf("ParseSequence(%q): %v", codes, err)
		}
		seqs[i] = seq
	}
	s, err := rota.NewSchedule(seqs[0], seqs[1], seqs[2], 4)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	p := rota.Params{DutyCycleLength: 6, RestCycleLength: 3, InductionLength: 1, HorizonDays: 8}
	return &planner.Plan{
		ID:               "plan-1",
		Params:           p,
		Schedule:         s,
		CoverageStartDay: rota.CoverageStartDay(p),
		HorizonDays:      8,
		Findings:         rota.Validate(s, 8, rota.CoverageStartDay(p)),
		DutyCeiling:      4,
	}
}

var fixedStart = Options{StartDate: time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)}

func TestDayLabel(t *testing.T) {
	tests := []struct {
		day, grace int
		want       string
	}{
		{0, 6, "S"},
		{1, 6, "I1"},
		{5, 6, "I5"},
		{6, 6, "D1"},
		{10, 6, "D5"},
		{0, 0, "1"},
		{9, 0, "10"},
	}
	for _, tt := range tests {
		if got := DayLabel(tt.day, tt.grace); got != tt.want {
			t.Errorf("DayLabel(%d, %d) = %q, want %q", tt.day, tt.grace, got, tt.want)
		}
	}
}

func TestWriteGrid(t *testing.T) {
	plan := testPlan(t)
	var buf bytes.Buffer
	if err := WriteGrid(&buf, plan, Options{GridWidth: 5}); err != nil {
		t.Fatalf("WriteGrid: %v", err)
	}
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// two bands of header + 3 workers + count, separated by a blank line
	if len(lines) != 11 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "day") || !strings.Contains(lines[0], "   S  I1  D1  D2  D3") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "anchor     A   I   D   D   D" {
		t.Fatalf("unexpected anchor row %q", lines[1])
	}
	// day 0: nobody on duty, day 2: anchor and flex-a
	if !strings.HasPrefix(lines[4], "on duty   0!  0!   2") {
		t.Fatalf("unexpected count row %q", lines[4])
	}
}

func TestWriteFindings(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFindings(&buf, nil, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "no findings") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	buf.Reset()
	findings := []rota.Finding{{Day: 3, Kind: rota.FindingCoverage, Message: "no worker on duty"}}
	if err := WriteFindings(&buf, findings, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "1 findings") || !strings.Contains(buf.String(), "day 3: no worker on duty") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	plan := testPlan(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, plan, fixedStart); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 9 {
		t.Fatalf("got %d records, want header + 8", len(records))
	}
	if strings.Join(records[0], ",") != "day,label,date,anchor,flex-a,flex-b,on_duty" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if got := strings.Join(records[3], ","); got != "2,D1,2026-03-04,D,D,-,2" {
		t.Fatalf("unexpected day 2 record %q", got)
	}
}

func TestExportICalOneEventPerDutyBlock(t *testing.T) {
	plan := testPlan(t)
	res := ExportICal(plan, fixedStart)
	ics := string(res.Data)

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != len(DutyBlocks(plan.Schedule)) || got != 3 {
		t.Fatalf("got %d events, want 3", got)
	}
	// anchor duty runs days 2..5 → 2026-03-04 up to (exclusive) 2026-03-08
	if !strings.Contains(ics, "DTSTART;VALUE=DATE:20260304\r\nDTEND;VALUE=DATE:20260308\r\nSUMMARY:anchor on duty") {
		t.Fatalf("anchor event missing:\n%s", ics)
	}
	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Fatal("calendar not terminated")
	}
	if res.ContentType != "text/calendar; charset=utf-8" || !strings.HasSuffix(res.Filename, "2026-03-02.ics") {
		t.Fatalf("unexpected result metadata %q %q", res.ContentType, res.Filename)
	}
}

func TestExportHTML(t *testing.T) {
	plan := testPlan(t)
	res, err := ExportHTML(plan)
	if err != nil {
		t.Fatalf("ExportHTML: %v", err)
	}
	html := string(res.Data)
	if !strings.Contains(html, `<table class="grid">`) {
		t.Fatal("expected grid table for a short plan")
	}
	if !strings.Contains(html, `<td class="duty">D</td>`) {
		t.Fatal("expected duty cells")
	}
	if !strings.Contains(html, "findings</div>") {
		t.Fatal("expected findings banner")
	}
}

func TestExportHTMLLongPlanShowsNote(t *testing.T) {
	p := rota.Params{DutyCycleLength: 6, RestCycleLength: 3, InductionLength: 1, HorizonDays: 120}
	base, err := rota.Baseline(p)
	if err != nil {
		t.Fatalf("Baseline: %v", err)
	}
	plan := &planner.Plan{Params: p, Schedule: base, CoverageStartDay: 2, HorizonDays: 120}

	res, err := ExportHTML(plan)
	if err != nil {
		t.Fatalf("ExportHTML: %v", err)
	}
	if strings.Contains(string(res.Data), `<table class="grid">`) {
		t.Fatal("long plan should not draw the grid")
	}
	if !strings.Contains(string(res.Data), "120-day schedule is too long") {
		t.Fatal("expected the long-plan note")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	plan := testPlan(t)

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			res, err := Export(plan, format, fixedStart)
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			doc, err := ReadDocument(bytes.NewReader(res.Data))
			if err != nil {
				t.Fatalf("ReadDocument: %v", err)
			}
			back := doc.Plan()
			if back.Params != plan.Params || back.DutyCeiling != 4 {
				t.Fatalf("params lost: %+v", back)
			}
			for _, id := range rota.Workers {
				if back.Schedule.Worker(id).Codes() != plan.Schedule.Worker(id).Codes() {
					t.Fatalf("%s differs after round trip", id)
				}
			}
		})
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if _, err := Export(testPlan(t), "xlsx", Options{}); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PDF "); err != nil || f != FormatPDF {
		t.Fatalf("ParseFormat(PDF) = %q, %v", f, err)
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatal("expected error for gif")
	}
}

func TestRendererProducesPNG(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser rendering in short mode")
	}
	if _, err := exec.LookPath("chromium"); err != nil {
		if _, err := exec.LookPath("google-chrome"); err != nil {
			t.Skip("no local browser available")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := NewRenderer("", zerolog.Nop()).RenderPlan(ctx, testPlan(t), FormatPNG)
	if err != nil {
		t.Fatalf("RenderPlan: %v", err)
	}
	if !bytes.HasPrefix(res.Data, []byte("\x89PNG")) {
		t.Fatal("output is not a PNG")
	}
}
